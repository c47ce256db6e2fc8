package lesson

import "sort"

// Sort fields. The backend only accepts the server fields; title sorting is
// compensated client-side.
const (
	SortTitle        = "title"
	SortStartTime    = "start_time"
	SortPrice        = "price"
	SortLocation     = "location"
	SortMaxAttendees = "max_attendees"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var serverSortFields = map[string]bool{
	SortStartTime:    true,
	SortPrice:        true,
	SortLocation:     true,
	SortMaxAttendees: true,
}

func isServerSortField(field string) bool { return serverSortFields[field] }

// sortLessons returns a sorted copy. Text fields compare locale-aware,
// numeric/date fields by value; ties keep the original list order.
func (svc *Service) sortLessons(lessons []Lesson, sortBy, order string) []Lesson {
	sorted := make([]Lesson, len(lessons))
	copy(sorted, lessons)

	sign := 1
	if order == OrderDesc {
		sign = -1
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sign*svc.compare(sorted[i], sorted[j], sortBy) < 0
	})
	return sorted
}

func (svc *Service) compare(a, b Lesson, sortBy string) int {
	switch sortBy {
	case SortTitle:
		return svc.collator.CompareString(a.Title, b.Title)
	case SortLocation:
		return svc.collator.CompareString(a.Location, b.Location)
	case SortPrice:
		return compareFloat(a.Price.Float64, b.Price.Float64)
	case SortMaxAttendees:
		return a.MaxAttendees.Int - b.MaxAttendees.Int
	case SortStartTime:
		return compareTimeAsInt(a, b)
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTimeAsInt(a, b Lesson) int {
	switch {
	case a.StartTime.Before(b.StartTime):
		return -1
	case a.StartTime.After(b.StartTime):
		return 1
	}
	return 0
}

// SortParamsFromValue maps a UI sort value to (sort field, order).
func SortParamsFromValue(sortValue string) (string, string) {
	switch sortValue {
	case "A-Z":
		return SortTitle, OrderAsc
	case "Z-A":
		return SortTitle, OrderDesc
	case "price_low":
		return SortPrice, OrderAsc
	case "price_high":
		return SortPrice, OrderDesc
	case "newest":
		return SortStartTime, OrderAsc
	case "oldest":
		return SortStartTime, OrderDesc
	case "location":
		return SortLocation, OrderAsc
	case "capacity":
		return SortMaxAttendees, OrderDesc
	default:
		return SortStartTime, OrderAsc
	}
}

// SortValueFromParams is the reverse mapping, for rebuilding UI state from
// query parameters.
func SortValueFromParams(sortBy, order string) string {
	switch {
	case sortBy == SortTitle && order == OrderAsc:
		return "A-Z"
	case sortBy == SortTitle && order == OrderDesc:
		return "Z-A"
	case sortBy == SortPrice && order == OrderAsc:
		return "price_low"
	case sortBy == SortPrice && order == OrderDesc:
		return "price_high"
	case sortBy == SortStartTime && order == OrderAsc:
		return "newest"
	case sortBy == SortStartTime && order == OrderDesc:
		return "oldest"
	case sortBy == SortLocation:
		return "location"
	case sortBy == SortMaxAttendees:
		return "capacity"
	}
	return "newest"
}
