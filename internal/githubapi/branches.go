package githubapi

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
)

const (
	branchListingOperationConstant     = "merged branch listing"
	branchPageFetchedMessageConstant   = "Fetched branch page"
	branchPageSizeLogFieldConstant     = "branches"
	branchPageCursorLogFieldConstant   = "cursor"
	graphQLOwnerVariableConstant       = "owner"
	graphQLRepositoryVariableConstant  = "name"
	graphQLCursorVariableConstant      = "cursor"
	emptyCursorPlaceholderConstant     = "<start>"
)

// MergedPullRequestReference identifies a merged pull request associated with a branch.
type MergedPullRequestReference struct {
	Number          int
	Title           string
	ClosedAt        time.Time
	BaseRefName     string
	RepositoryName  string
	RepositoryOwner string
}

// MergedBranch is a remote branch with at least one merged pull request.
type MergedBranch struct {
	Name         string
	PullRequests []MergedPullRequestReference
}

type mergedBranchQuery struct {
	Repository struct {
		Refs struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name                   githubv4.String
				AssociatedPullRequests struct {
					TotalCount githubv4.Int
					Nodes      []struct {
						Number      githubv4.Int
						Title       githubv4.String
						ClosedAt    githubv4.DateTime
						BaseRefName githubv4.String
						Repository  struct {
							Name  githubv4.String
							Owner struct {
								Login githubv4.String
							}
						}
					}
				} `graphql:"associatedPullRequests(states: [MERGED], first: 5)"`
			}
		} `graphql:"refs(refPrefix: \"refs/heads/\", first: 50, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ListMergedBranches walks all branch references of the repository and returns
// those carrying at least one merged pull request. Branches without merged
// pull requests are dropped.
func (client *Client) ListMergedBranches(executionContext context.Context, owner string, repository string) ([]MergedBranch, error) {
	branchIterator, iteratorError := NewPageIterator(client.fetchMergedBranchPage(owner, repository))
	if iteratorError != nil {
		return nil, iteratorError
	}

	mergedBranches := []MergedBranch{}
	for {
		candidateBranch, hasMore, iterationError := branchIterator.Next(executionContext)
		if iterationError != nil {
			return nil, iterationError
		}
		if !hasMore {
			break
		}
		if len(candidateBranch.PullRequests) == 0 {
			continue
		}
		mergedBranches = append(mergedBranches, candidateBranch)
	}

	return mergedBranches, nil
}

func (client *Client) fetchMergedBranchPage(owner string, repository string) PageFetcher[MergedBranch] {
	return func(executionContext context.Context, cursor *githubv4.String) (Page[MergedBranch], error) {
		queryVariables := map[string]interface{}{
			graphQLOwnerVariableConstant:      githubv4.String(owner),
			graphQLRepositoryVariableConstant: githubv4.String(repository),
			graphQLCursorVariableConstant:     cursor,
		}

		var branchQuery mergedBranchQuery
		if queryError := client.graphqlClient.Query(executionContext, &branchQuery, queryVariables); queryError != nil {
			return Page[MergedBranch]{}, QueryError{Operation: branchListingOperationConstant, Cause: queryError}
		}

		pageItems := make([]MergedBranch, 0, len(branchQuery.Repository.Refs.Nodes))
		for _, branchNode := range branchQuery.Repository.Refs.Nodes {
			mergedBranch := MergedBranch{Name: string(branchNode.Name)}
			for _, pullRequestNode := range branchNode.AssociatedPullRequests.Nodes {
				mergedBranch.PullRequests = append(mergedBranch.PullRequests, MergedPullRequestReference{
					Number:          int(pullRequestNode.Number),
					Title:           string(pullRequestNode.Title),
					ClosedAt:        pullRequestNode.ClosedAt.Time,
					BaseRefName:     string(pullRequestNode.BaseRefName),
					RepositoryName:  string(pullRequestNode.Repository.Name),
					RepositoryOwner: string(pullRequestNode.Repository.Owner.Login),
				})
			}
			pageItems = append(pageItems, mergedBranch)
		}

		client.logger.Debug(
			branchPageFetchedMessageConstant,
			zap.Int(branchPageSizeLogFieldConstant, len(pageItems)),
			zap.String(branchPageCursorLogFieldConstant, describeCursor(cursor)),
		)

		return Page[MergedBranch]{
			Items:       pageItems,
			EndCursor:   branchQuery.Repository.Refs.PageInfo.EndCursor,
			HasNextPage: branchQuery.Repository.Refs.PageInfo.HasNextPage,
		}, nil
	}
}

func describeCursor(cursor *githubv4.String) string {
	if cursor == nil {
		return emptyCursorPlaceholderConstant
	}
	return string(*cursor)
}
