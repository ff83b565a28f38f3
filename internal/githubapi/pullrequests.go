package githubapi

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
)

const (
	pullRequestListingOperationConstant   = "merged pull request listing"
	pullRequestPageFetchedMessageConstant = "Fetched pull request page"
	pullRequestPageSizeLogFieldConstant   = "pull_requests"
	pullRequestCutoffMessageConstant      = "Reached pull request age cutoff"
	pullRequestNumberLogFieldConstant     = "number"
	pullRequestClosedAtLogFieldConstant   = "closed_at"
	hoursPerDayConstant                   = 24
)

// PullRequest describes a merged pull request relevant to branch cleanup.
type PullRequest struct {
	Number              int
	Title               string
	CreatedAt           time.Time
	ClosedAt            time.Time
	UpdatedAt           time.Time
	HeadRefName         string
	HeadRepositoryOwner string
}

// MergedPullRequestQuery bounds a merged pull request scan.
type MergedPullRequestQuery struct {
	Owner      string
	Repository string
	// Author restricts results to pull requests whose head repository owner
	// matches. Pull requests from other authors are skipped without ending
	// the scan. Empty disables the filter.
	Author string
	// MaxAgeDays ends the scan at the first pull request closed earlier than
	// this many days before now. Zero disables the cutoff.
	MaxAgeDays int
}

type mergedPullRequestQueryDocument struct {
	Repository struct {
		PullRequests struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Number              githubv4.Int
				Title               githubv4.String
				CreatedAt           githubv4.DateTime
				ClosedAt            githubv4.DateTime
				UpdatedAt           githubv4.DateTime
				HeadRefName         githubv4.String
				HeadRepositoryOwner struct {
					Login githubv4.String
				}
			}
		} `graphql:"pullRequests(states: [MERGED], first: 100, orderBy: {field: CREATED_AT, direction: DESC}, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ListMergedPullRequests scans merged pull requests newest first and returns
// those matching the query bounds. The scan stops at the age cutoff, so older
// pages are never fetched.
func (client *Client) ListMergedPullRequests(executionContext context.Context, query MergedPullRequestQuery) ([]PullRequest, error) {
	pullRequestIterator, iteratorError := NewPageIterator(client.fetchMergedPullRequestPage(query.Owner, query.Repository))
	if iteratorError != nil {
		return nil, iteratorError
	}

	cutoffEnabled := query.MaxAgeDays > 0
	cutoffInstant := client.clock.Now().Add(-time.Duration(query.MaxAgeDays) * hoursPerDayConstant * time.Hour)

	matchingPullRequests := []PullRequest{}
	for {
		candidatePullRequest, hasMore, iterationError := pullRequestIterator.Next(executionContext)
		if iterationError != nil {
			return nil, iterationError
		}
		if !hasMore {
			break
		}

		if cutoffEnabled && candidatePullRequest.ClosedAt.Before(cutoffInstant) {
			client.logger.Debug(
				pullRequestCutoffMessageConstant,
				zap.Int(pullRequestNumberLogFieldConstant, candidatePullRequest.Number),
				zap.Time(pullRequestClosedAtLogFieldConstant, candidatePullRequest.ClosedAt),
			)
			break
		}

		if len(query.Author) > 0 && candidatePullRequest.HeadRepositoryOwner != query.Author {
			continue
		}

		matchingPullRequests = append(matchingPullRequests, candidatePullRequest)
	}

	return matchingPullRequests, nil
}

func (client *Client) fetchMergedPullRequestPage(owner string, repository string) PageFetcher[PullRequest] {
	return func(executionContext context.Context, cursor *githubv4.String) (Page[PullRequest], error) {
		queryVariables := map[string]interface{}{
			graphQLOwnerVariableConstant:      githubv4.String(owner),
			graphQLRepositoryVariableConstant: githubv4.String(repository),
			graphQLCursorVariableConstant:     cursor,
		}

		var queryDocument mergedPullRequestQueryDocument
		if queryError := client.graphqlClient.Query(executionContext, &queryDocument, queryVariables); queryError != nil {
			return Page[PullRequest]{}, QueryError{Operation: pullRequestListingOperationConstant, Cause: queryError}
		}

		pageItems := make([]PullRequest, 0, len(queryDocument.Repository.PullRequests.Nodes))
		for _, pullRequestNode := range queryDocument.Repository.PullRequests.Nodes {
			pageItems = append(pageItems, PullRequest{
				Number:              int(pullRequestNode.Number),
				Title:               string(pullRequestNode.Title),
				CreatedAt:           pullRequestNode.CreatedAt.Time,
				ClosedAt:            pullRequestNode.ClosedAt.Time,
				UpdatedAt:           pullRequestNode.UpdatedAt.Time,
				HeadRefName:         string(pullRequestNode.HeadRefName),
				HeadRepositoryOwner: string(pullRequestNode.HeadRepositoryOwner.Login),
			})
		}

		client.logger.Debug(
			pullRequestPageFetchedMessageConstant,
			zap.Int(pullRequestPageSizeLogFieldConstant, len(pageItems)),
			zap.String(branchPageCursorLogFieldConstant, describeCursor(cursor)),
		)

		return Page[PullRequest]{
			Items:       pageItems,
			EndCursor:   queryDocument.Repository.PullRequests.PageInfo.EndCursor,
			HasNextPage: queryDocument.Repository.PullRequests.PageInfo.HasNextPage,
		}, nil
	}
}
