package githubapi

import (
	"context"
	"errors"

	"github.com/shurcooL/githubv4"
)

const pageFetcherMissingMessageConstant = "page fetcher not configured"

// ErrPageFetcherNotConfigured indicates an iterator was constructed without a fetcher.
var ErrPageFetcherNotConfigured = errors.New(pageFetcherMissingMessageConstant)

// Page holds one page of a GraphQL connection together with its pagination state.
type Page[T any] struct {
	Items       []T
	EndCursor   githubv4.String
	HasNextPage bool
}

// PageFetcher retrieves the page following the provided cursor. A nil cursor
// requests the first page.
type PageFetcher[T any] func(executionContext context.Context, cursor *githubv4.String) (Page[T], error)

// PageIterator walks a paginated GraphQL connection lazily, fetching each page
// exactly once and yielding items in order. The iterator is single pass.
type PageIterator[T any] struct {
	fetchPage PageFetcher[T]
	buffered  []T
	cursor    *githubv4.String
	exhausted bool
}

// NewPageIterator constructs an iterator over the connection served by fetchPage.
func NewPageIterator[T any](fetchPage PageFetcher[T]) (*PageIterator[T], error) {
	if fetchPage == nil {
		return nil, ErrPageFetcherNotConfigured
	}
	return &PageIterator[T]{fetchPage: fetchPage}, nil
}

// Next returns the next item in the connection. The second return value is
// false once the connection is exhausted. A fetch error ends iteration.
func (iterator *PageIterator[T]) Next(executionContext context.Context) (T, bool, error) {
	var zeroItem T

	for len(iterator.buffered) == 0 {
		if iterator.exhausted {
			return zeroItem, false, nil
		}

		fetchedPage, fetchError := iterator.fetchPage(executionContext, iterator.cursor)
		if fetchError != nil {
			iterator.exhausted = true
			return zeroItem, false, fetchError
		}

		iterator.buffered = append(iterator.buffered, fetchedPage.Items...)
		if fetchedPage.HasNextPage {
			iterator.cursor = githubv4.NewString(fetchedPage.EndCursor)
		} else {
			iterator.exhausted = true
		}
	}

	nextItem := iterator.buffered[0]
	iterator.buffered = iterator.buffered[1:]
	return nextItem, true, nil
}
