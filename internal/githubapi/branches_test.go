package githubapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prsweep/prsweep/internal/githubapi"
)

const mergedBranchResponseConstant = `{
	"data": {
		"repository": {
			"refs": {
				"pageInfo": {"hasNextPage": false, "endCursor": "cursor-end"},
				"nodes": [
					{
						"name": "feature-x",
						"associatedPullRequests": {
							"totalCount": 1,
							"nodes": [
								{
									"number": 12,
									"title": "Add widget pipeline",
									"closedAt": "2026-08-19T10:00:00Z",
									"baseRefName": "main",
									"repository": {"name": "example", "owner": {"login": "octocat"}}
								}
							]
						}
					},
					{
						"name": "main",
						"associatedPullRequests": {"totalCount": 0, "nodes": []}
					},
					{
						"name": "experiment",
						"associatedPullRequests": {"totalCount": 0, "nodes": []}
					}
				]
			}
		}
	}
}`

func TestListMergedBranchesDropsBranchesWithoutMergedPullRequests(testInstance *testing.T) {
	requestCount := 0
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		requestCount++
		require.Equal(testInstance, http.MethodPost, request.Method)
		responseWriter.WriteHeader(http.StatusOK)
		fmt.Fprint(responseWriter, mergedBranchResponseConstant)
	})

	client, _ := newTestClient(testInstance, handler, nil)

	mergedBranches, listError := client.ListMergedBranches(context.Background(), "octocat", "example")
	require.NoError(testInstance, listError)
	require.Equal(testInstance, 1, requestCount)

	require.Len(testInstance, mergedBranches, 1)
	require.Equal(testInstance, "feature-x", mergedBranches[0].Name)
	require.Len(testInstance, mergedBranches[0].PullRequests, 1)

	pullRequestReference := mergedBranches[0].PullRequests[0]
	require.Equal(testInstance, 12, pullRequestReference.Number)
	require.Equal(testInstance, "Add widget pipeline", pullRequestReference.Title)
	require.Equal(testInstance, "main", pullRequestReference.BaseRefName)
	require.Equal(testInstance, "octocat", pullRequestReference.RepositoryOwner)
	require.Equal(testInstance, "example", pullRequestReference.RepositoryName)
}

func TestListMergedBranchesWrapsQueryFailures(testInstance *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.WriteHeader(http.StatusOK)
		fmt.Fprint(responseWriter, `{"errors": [{"message": "Could not resolve to a Repository"}]}`)
	})

	client, _ := newTestClient(testInstance, handler, nil)

	mergedBranches, listError := client.ListMergedBranches(context.Background(), "octocat", "missing")
	require.Nil(testInstance, mergedBranches)
	require.Error(testInstance, listError)

	var queryError githubapi.QueryError
	require.ErrorAs(testInstance, listError, &queryError)
}
