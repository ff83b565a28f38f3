package githubapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/require"

	"github.com/prsweep/prsweep/internal/githubapi"
)

func TestNewPageIteratorRequiresFetcher(testInstance *testing.T) {
	iterator, creationError := githubapi.NewPageIterator[string](nil)
	require.Nil(testInstance, iterator)
	require.ErrorIs(testInstance, creationError, githubapi.ErrPageFetcherNotConfigured)
}

func TestPageIteratorYieldsAllItemsInOrder(testInstance *testing.T) {
	pages := []githubapi.Page[string]{
		{Items: []string{"alpha", "beta"}, EndCursor: githubv4.String("cursor-1"), HasNextPage: true},
		{Items: []string{"gamma"}, EndCursor: githubv4.String("cursor-2"), HasNextPage: true},
		{Items: []string{"delta"}, HasNextPage: false},
	}

	fetchCount := 0
	observedCursors := []*githubv4.String{}
	fetcher := func(_ context.Context, cursor *githubv4.String) (githubapi.Page[string], error) {
		observedCursors = append(observedCursors, cursor)
		page := pages[fetchCount]
		fetchCount++
		return page, nil
	}

	iterator, creationError := githubapi.NewPageIterator(fetcher)
	require.NoError(testInstance, creationError)

	collectedItems := []string{}
	for {
		item, hasMore, iterationError := iterator.Next(context.Background())
		require.NoError(testInstance, iterationError)
		if !hasMore {
			break
		}
		collectedItems = append(collectedItems, item)
	}

	require.Equal(testInstance, []string{"alpha", "beta", "gamma", "delta"}, collectedItems)
	require.Equal(testInstance, len(pages), fetchCount)

	require.Len(testInstance, observedCursors, 3)
	require.Nil(testInstance, observedCursors[0])
	require.Equal(testInstance, githubv4.String("cursor-1"), *observedCursors[1])
	require.Equal(testInstance, githubv4.String("cursor-2"), *observedCursors[2])
}

func TestPageIteratorFetchesEachPageOnce(testInstance *testing.T) {
	fetchCount := 0
	fetcher := func(_ context.Context, _ *githubv4.String) (githubapi.Page[int], error) {
		fetchCount++
		return githubapi.Page[int]{Items: []int{1, 2, 3}, HasNextPage: false}, nil
	}

	iterator, creationError := githubapi.NewPageIterator(fetcher)
	require.NoError(testInstance, creationError)

	for expectedItem := 1; expectedItem <= 3; expectedItem++ {
		item, hasMore, iterationError := iterator.Next(context.Background())
		require.NoError(testInstance, iterationError)
		require.True(testInstance, hasMore)
		require.Equal(testInstance, expectedItem, item)
	}

	_, hasMore, iterationError := iterator.Next(context.Background())
	require.NoError(testInstance, iterationError)
	require.False(testInstance, hasMore)
	require.Equal(testInstance, 1, fetchCount)
}

func TestPageIteratorRemainsExhaustedAfterCompletion(testInstance *testing.T) {
	fetcher := func(_ context.Context, _ *githubv4.String) (githubapi.Page[int], error) {
		return githubapi.Page[int]{HasNextPage: false}, nil
	}

	iterator, creationError := githubapi.NewPageIterator(fetcher)
	require.NoError(testInstance, creationError)

	for attempt := 0; attempt < 3; attempt++ {
		_, hasMore, iterationError := iterator.Next(context.Background())
		require.NoError(testInstance, iterationError)
		require.False(testInstance, hasMore)
	}
}

func TestPageIteratorPropagatesFetchErrors(testInstance *testing.T) {
	fetchFailure := errors.New("query rejected")
	fetcher := func(_ context.Context, _ *githubv4.String) (githubapi.Page[int], error) {
		return githubapi.Page[int]{}, fetchFailure
	}

	iterator, creationError := githubapi.NewPageIterator(fetcher)
	require.NoError(testInstance, creationError)

	_, hasMore, iterationError := iterator.Next(context.Background())
	require.False(testInstance, hasMore)
	require.ErrorIs(testInstance, iterationError, fetchFailure)

	_, hasMore, iterationError = iterator.Next(context.Background())
	require.NoError(testInstance, iterationError)
	require.False(testInstance, hasMore)
}
