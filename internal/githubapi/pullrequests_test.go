package githubapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prsweep/prsweep/internal/githubapi"
)

const (
	firstPullRequestPageConstant = `{
	"data": {
		"repository": {
			"pullRequests": {
				"pageInfo": {"hasNextPage": true, "endCursor": "cursor-1"},
				"nodes": [
					{
						"number": 20,
						"title": "Recent change",
						"createdAt": "2026-08-18T09:00:00Z",
						"closedAt": "2026-08-19T10:00:00Z",
						"updatedAt": "2026-08-19T10:00:00Z",
						"headRefName": "feature-x",
						"headRepositoryOwner": {"login": "octocat"}
					},
					{
						"number": 18,
						"title": "Fork contribution",
						"createdAt": "2026-08-15T09:00:00Z",
						"closedAt": "2026-08-16T10:00:00Z",
						"updatedAt": "2026-08-16T10:00:00Z",
						"headRefName": "fork-feature",
						"headRepositoryOwner": {"login": "someone-else"}
					},
					{
						"number": 12,
						"title": "Ancient change",
						"createdAt": "2026-06-01T09:00:00Z",
						"closedAt": "2026-06-02T10:00:00Z",
						"updatedAt": "2026-06-02T10:00:00Z",
						"headRefName": "stale-branch",
						"headRepositoryOwner": {"login": "octocat"}
					}
				]
			}
		}
	}
}`
	secondPullRequestPageConstant = `{
	"data": {
		"repository": {
			"pullRequests": {
				"pageInfo": {"hasNextPage": false, "endCursor": "cursor-2"},
				"nodes": [
					{
						"number": 5,
						"title": "Even older change",
						"createdAt": "2026-01-01T09:00:00Z",
						"closedAt": "2026-01-02T10:00:00Z",
						"updatedAt": "2026-01-02T10:00:00Z",
						"headRefName": "archive-branch",
						"headRepositoryOwner": {"login": "octocat"}
					}
				]
			}
		}
	}
}`
)

func pullRequestPageHandler(testInstance *testing.T, requestCount *int) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		*requestCount++
		require.Equal(testInstance, http.MethodPost, request.Method)
		responseWriter.WriteHeader(http.StatusOK)
		if *requestCount == 1 {
			fmt.Fprint(responseWriter, firstPullRequestPageConstant)
			return
		}
		fmt.Fprint(responseWriter, secondPullRequestPageConstant)
	})
}

func TestListMergedPullRequestsStopsAtAgeCutoff(testInstance *testing.T) {
	requestCount := 0
	clock := stubClock{currentTime: time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)}
	client, _ := newTestClient(testInstance, pullRequestPageHandler(testInstance, &requestCount), clock)

	pullRequests, listError := client.ListMergedPullRequests(context.Background(), githubapi.MergedPullRequestQuery{
		Owner:      "octocat",
		Repository: "example",
		MaxAgeDays: 30,
	})
	require.NoError(testInstance, listError)

	// Pull request 12 closed before the cutoff, so the scan ends there and
	// the second page is never requested.
	require.Equal(testInstance, 1, requestCount)
	require.Len(testInstance, pullRequests, 2)
	require.Equal(testInstance, 20, pullRequests[0].Number)
	require.Equal(testInstance, 18, pullRequests[1].Number)
}

func TestListMergedPullRequestsAuthorMismatchSkipsWithoutTerminating(testInstance *testing.T) {
	requestCount := 0
	clock := stubClock{currentTime: time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)}
	client, _ := newTestClient(testInstance, pullRequestPageHandler(testInstance, &requestCount), clock)

	pullRequests, listError := client.ListMergedPullRequests(context.Background(), githubapi.MergedPullRequestQuery{
		Owner:      "octocat",
		Repository: "example",
		Author:     "octocat",
	})
	require.NoError(testInstance, listError)

	// No cutoff, so both pages are scanned and only the fork pull request
	// from another owner is skipped.
	require.Equal(testInstance, 2, requestCount)
	require.Len(testInstance, pullRequests, 3)
	require.Equal(testInstance, 20, pullRequests[0].Number)
	require.Equal(testInstance, 12, pullRequests[1].Number)
	require.Equal(testInstance, 5, pullRequests[2].Number)
}

func TestListMergedPullRequestsZeroMaxAgeDisablesCutoff(testInstance *testing.T) {
	requestCount := 0
	clock := stubClock{currentTime: time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)}
	client, _ := newTestClient(testInstance, pullRequestPageHandler(testInstance, &requestCount), clock)

	pullRequests, listError := client.ListMergedPullRequests(context.Background(), githubapi.MergedPullRequestQuery{
		Owner:      "octocat",
		Repository: "example",
		MaxAgeDays: 0,
	})
	require.NoError(testInstance, listError)
	require.Equal(testInstance, 2, requestCount)
	require.Len(testInstance, pullRequests, 4)
}

func TestListMergedPullRequestsWrapsQueryFailures(testInstance *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.WriteHeader(http.StatusOK)
		fmt.Fprint(responseWriter, `{"errors": [{"message": "Something went wrong"}]}`)
	})

	client, _ := newTestClient(testInstance, handler, nil)

	pullRequests, listError := client.ListMergedPullRequests(context.Background(), githubapi.MergedPullRequestQuery{
		Owner:      "octocat",
		Repository: "example",
	})
	require.Nil(testInstance, pullRequests)

	var queryError githubapi.QueryError
	require.ErrorAs(testInstance, listError, &queryError)
}
