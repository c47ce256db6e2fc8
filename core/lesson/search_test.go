package lesson

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchLessons() []Lesson {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return []Lesson{
		{ID: 1, Title: "Algebra Basics", Description: "intro", Location: "London", Subject: "Algebra", StartTime: base},
		{ID: 2, Title: "Geometry", Description: "shapes and ALGEBRA recap", Location: "Leeds", Subject: "Geometry", StartTime: base.Add(time.Hour)},
		{ID: 3, Title: "Statistics", Description: "data", Location: "Algebra House, York", Subject: "Statistics", StartTime: base.Add(2 * time.Hour)},
		{ID: 4, Title: "Calculus", Description: "limits", Location: "Bath", Subject: "Calculus", StartTime: base.Add(3 * time.Hour)},
	}
}

func TestService_searchMatchesAcrossFields(t *testing.T) {
	env := newTestService(t)
	env.backend.lessons = searchLessons()
	ctx := context.Background()

	results, err := env.svc.Search(ctx, "  AlGeBrA ", SearchOptions{})
	require.NoError(t, err)

	// title, description and location all match, case-insensitively
	require.Len(t, results, 3)
	assert.Equal(t, []string{"Algebra Basics", "Geometry", "Statistics"}, titles(results))

	// subject filter narrows further
	results, err = env.svc.Search(ctx, "algebra", SearchOptions{Subject: "Geometry"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Geometry", results[0].Title)
}

func TestService_searchEmptyQueryFetchesNothing(t *testing.T) {
	env := newTestService(t)
	env.backend.lessons = searchLessons()

	results, err := env.svc.Search(context.Background(), "   ", SearchOptions{})
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, env.backend.listCalls)
}

func TestSearcher_debounceCollapsesRapidQueries(t *testing.T) {
	env := newTestService(t)
	env.backend.lessons = searchLessons()
	ctx := context.Background()

	s := NewSearcher(env.svc, 30*time.Millisecond)
	defer s.Stop()

	// keystrokes arriving faster than the debounce window
	s.SetQuery(ctx, "a", SearchOptions{})
	s.SetQuery(ctx, "al", SearchOptions{})
	s.SetQuery(ctx, "algebra", SearchOptions{})

	select {
	case res := <-s.Results():
		require.NoError(t, res.Err)
		assert.True(t, res.Searching)
		assert.Equal(t, "algebra", res.Query)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search result")
	}

	// only the settled query hit the backend
	assert.Len(t, env.backend.listCalls, 1)
}

func TestSearcher_emptyQueryRevertsSearchMode(t *testing.T) {
	env := newTestService(t)
	env.backend.lessons = searchLessons()
	ctx := context.Background()

	s := NewSearcher(env.svc, 30*time.Millisecond)
	defer s.Stop()

	// a pending search is cancelled by clearing the input
	s.SetQuery(ctx, "algebra", SearchOptions{})
	s.SetQuery(ctx, "", SearchOptions{})

	select {
	case res := <-s.Results():
		assert.False(t, res.Searching)
		assert.Empty(t, res.Query)
		assert.Nil(t, res.Lessons)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for revert delivery")
	}

	// give the cancelled timer a chance to misfire before asserting
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, env.backend.listCalls)
}
