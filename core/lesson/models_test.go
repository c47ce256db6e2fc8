package lesson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/mathstutor/mathstutor-go/core"
)

func TestCreateParamsValidate(t *testing.T) {
	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		params    CreateParams
		wantField string
	}{
		{
			name:   "valid",
			params: CreateParams{Title: "Algebra", StartTime: start, EndTime: start.Add(time.Hour)},
		},
		{
			name:      "missing title",
			params:    CreateParams{StartTime: start, EndTime: start.Add(time.Hour)},
			wantField: "title",
		},
		{
			name:      "end before start",
			params:    CreateParams{Title: "Algebra", StartTime: start, EndTime: start.Add(-time.Hour)},
			wantField: "end_time",
		},
		{
			name:      "end equals start",
			params:    CreateParams{Title: "Algebra", StartTime: start, EndTime: start},
			wantField: "end_time",
		},
		{
			name:      "negative price",
			params:    CreateParams{Title: "Algebra", StartTime: start, EndTime: start.Add(time.Hour), Price: null.Float64From(-5)},
			wantField: "price",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.NotEmpty(t, vErr.Fields)
			fields := make([]string, len(vErr.Fields))
			for i, f := range vErr.Fields {
				fields[i] = f.Field
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestUpdateParamsValidate(t *testing.T) {
	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	err := UpdateParams{
		StartTime: null.TimeFrom(start),
		EndTime:   null.TimeFrom(start.Add(-time.Minute)),
	}.Validate()
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.NoError(t, UpdateParams{Title: "Renamed"}.Validate())
	assert.Error(t, UpdateParams{Status: null.StringFrom("archived")}.Validate())
	assert.NoError(t, UpdateParams{Status: null.StringFrom(StatusPublished)}.Validate())
}

func TestSortValueRoundTrip(t *testing.T) {
	for _, v := range []string{"A-Z", "Z-A", "price_low", "price_high", "newest", "oldest", "location", "capacity"} {
		sortBy, order := SortParamsFromValue(v)
		assert.Equal(t, v, SortValueFromParams(sortBy, order), "value %q", v)
	}

	// unknown values settle on the default
	sortBy, order := SortParamsFromValue("banana")
	assert.Equal(t, SortStartTime, sortBy)
	assert.Equal(t, OrderAsc, order)
}
