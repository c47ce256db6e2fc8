package lesson

import (
	"context"
	"strings"
	"sync"
	"time"
)

// SearchOptions carry the filter/sort applied on top of the text match, so
// search results line up with the server-driven view.
type SearchOptions struct {
	Subject   string
	SortBy    string
	SortOrder string
}

// Search is the client-side compensating path for free-text queries the
// backend has no endpoint for: fetch one large page, substring-match
// case-insensitively across title/description/location, then apply the same
// subject filter and sort as the server path would. Bounded by the fetched
// page size; not guaranteed complete for large catalogs.
func (svc *Service) Search(ctx context.Context, query string, opts SearchOptions) ([]Lesson, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	res, err := svc.backend.ListLessons(ctx, ListParams{
		SortBy: SortStartTime,
		Order:  OrderAsc,
		Limit:  svc.searchPageSize,
		Page:   1,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Lesson, 0, len(res.Lessons))
	for _, l := range res.Lessons {
		if !matchesQuery(l, query) {
			continue
		}
		if opts.Subject != "" && opts.Subject != "All" && l.Subject != opts.Subject {
			continue
		}
		results = append(results, l)
	}

	if opts.SortBy != "" && opts.SortOrder != "" {
		results = svc.sortLessons(results, opts.SortBy, opts.SortOrder)
	}
	return results, nil
}

func matchesQuery(l Lesson, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(l.Title), loweredQuery) ||
		strings.Contains(strings.ToLower(l.Description), loweredQuery) ||
		strings.Contains(strings.ToLower(l.Location), loweredQuery)
}

// SearchResult is one settled search delivery. Searching is false when the
// query went empty and the caller should revert to the paginated
// server-driven view.
type SearchResult struct {
	Query     string
	Lessons   []Lesson
	Err       error
	Searching bool
}

// Searcher debounces free-text input: rapid SetQuery calls collapse into one
// backend fetch once the input settles.
type Searcher struct {
	svc   *Service
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	results chan SearchResult
}

func NewSearcher(svc *Service, delay time.Duration) *Searcher {
	return &Searcher{
		svc:     svc,
		delay:   delay,
		results: make(chan SearchResult, 1),
	}
}

// Results delivers at most the latest settled result; stale deliveries are
// dropped in favor of newer ones.
func (s *Searcher) Results() <-chan SearchResult { return s.results }

// SetQuery registers new input. An empty query cancels any pending search
// and immediately clears search-mode state.
func (s *Searcher) SetQuery(ctx context.Context, query string, opts SearchOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if strings.TrimSpace(query) == "" {
		s.deliver(SearchResult{Searching: false})
		return
	}

	s.timer = time.AfterFunc(s.delay, func() {
		lessons, err := s.svc.Search(ctx, query, opts)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.deliver(SearchResult{Query: query, Lessons: lessons, Err: err, Searching: true})
	})
}

// Stop cancels any pending search.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// deliver replaces any undelivered result with the latest one. Callers must
// hold s.mu.
func (s *Searcher) deliver(res SearchResult) {
	select {
	case <-s.results:
	default:
	}
	s.results <- res
}
