package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prsweep/prsweep/internal/githubapi"
	"github.com/prsweep/prsweep/internal/gitrepo"
)

const (
	repositoryManagerMissingMessageConstant  = "repository manager not configured"
	pullRequestListerMissingMessageConstant  = "merged pull request lister not configured"
	remoteNameRequiredMessageConstant        = "remote name must be provided"
	remoteInferenceFailureTemplateConstant   = "cannot infer owner and repository from remote %q: %w"
	staleLocalBranchMessageConstant          = "Stale local branch"
	localDeletionFailedMessageConstant       = "Failed to delete local branch"
	branchWithoutUpstreamMessageConstant     = "Branch has no usable upstream"
	branchOnOtherRemoteMessageConstant       = "Branch tracks a different remote"
	upstreamLogFieldConstant                 = "upstream"
	pullRequestNumberLogFieldConstant        = "pull_request"
	pullRequestTitleLogFieldConstant         = "title"
	pullRequestClosedAtLogFieldConstant      = "closed_at"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrPullRequestListerNotConfigured indicates the pull request lister dependency was missing.
var ErrPullRequestListerNotConfigured = errors.New(pullRequestListerMissingMessageConstant)

// ErrRemoteNameRequired indicates the remote name option was empty.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// GitRepositoryManager exposes the repository operations needed for local cleanup.
type GitRepositoryManager interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	ListBranches(executionContext context.Context, repositoryPath string) ([]gitrepo.LocalBranch, error)
	DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error
}

// MergedPullRequestLister enumerates merged pull requests for a repository.
type MergedPullRequestLister interface {
	ListMergedPullRequests(executionContext context.Context, query githubapi.MergedPullRequestQuery) ([]githubapi.PullRequest, error)
}

// LocalDependencies enumerates collaborators required for local cleanup.
type LocalDependencies struct {
	Logger            *zap.Logger
	RepositoryManager GitRepositoryManager
	PullRequestLister MergedPullRequestLister
}

// LocalCleanupOptions configures a local branch cleanup run.
type LocalCleanupOptions struct {
	RepositoryPath string
	RemoteName     string
	// Owner and Repository identify the GitHub repository. Both are inferred
	// from the remote URL when empty.
	Owner      string
	Repository string
	// Author restricts merged pull requests to the given head repository owner.
	Author string
	// MaxAgeDays bounds the merged pull request scan. Zero disables the cutoff.
	MaxAgeDays int
	// Limit caps the number of deletions. Zero means unlimited.
	Limit int
	// DryRun reports stale branches without deleting them.
	DryRun bool
}

// LocalCleanupService removes local branches whose upstream tracks the
// configured remote and whose name matches a merged pull request head.
type LocalCleanupService struct {
	logger            *zap.Logger
	repositoryManager GitRepositoryManager
	pullRequestLister MergedPullRequestLister
}

// NewLocalCleanupService constructs a LocalCleanupService from the provided dependencies.
func NewLocalCleanupService(dependencies LocalDependencies) (*LocalCleanupService, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.PullRequestLister == nil {
		return nil, ErrPullRequestListerNotConfigured
	}
	return &LocalCleanupService{
		logger:            dependencies.Logger,
		repositoryManager: dependencies.RepositoryManager,
		pullRequestLister: dependencies.PullRequestLister,
	}, nil
}

// Cleanup deletes local branches confirmed merged through GitHub records.
// A missing remote ends the run; individual deletion failures are logged and
// tallied without ending it.
func (service *LocalCleanupService) Cleanup(executionContext context.Context, options LocalCleanupOptions) (LocalCleanupStats, error) {
	trimmedRemoteName := strings.TrimSpace(options.RemoteName)
	if len(trimmedRemoteName) == 0 {
		return LocalCleanupStats{}, ErrRemoteNameRequired
	}

	remoteURL, remoteError := service.repositoryManager.GetRemoteURL(executionContext, options.RepositoryPath, trimmedRemoteName)
	if remoteError != nil {
		return LocalCleanupStats{}, remoteError
	}

	owner, repository, identityError := resolveRepositoryIdentity(options, trimmedRemoteName, remoteURL)
	if identityError != nil {
		return LocalCleanupStats{}, identityError
	}

	localBranches, listError := service.repositoryManager.ListBranches(executionContext, options.RepositoryPath)
	if listError != nil {
		return LocalCleanupStats{}, listError
	}

	cleanupStats := LocalCleanupStats{}
	matchedBranches := make([]gitrepo.LocalBranch, 0, len(localBranches))
	for _, classifiedBranch := range ClassifyBranches(localBranches, trimmedRemoteName) {
		cleanupStats.Total++
		switch classifiedBranch.Disposition {
		case BranchMatched:
			cleanupStats.Matched++
			matchedBranches = append(matchedBranches, classifiedBranch.Branch)
		case BranchSkipped:
			cleanupStats.Skipped++
			service.logger.Debug(
				branchOnOtherRemoteMessageConstant,
				zap.String(branchLogFieldConstant, classifiedBranch.Branch.Name),
				zap.String(upstreamLogFieldConstant, classifiedBranch.Branch.UpstreamRefName),
			)
		case BranchErrored:
			cleanupStats.Errors++
			service.logger.Warn(
				branchWithoutUpstreamMessageConstant,
				zap.String(branchLogFieldConstant, classifiedBranch.Branch.Name),
				zap.String(upstreamLogFieldConstant, classifiedBranch.Branch.UpstreamRefName),
			)
		}
	}

	mergedPullRequests, pullRequestError := service.pullRequestLister.ListMergedPullRequests(executionContext, githubapi.MergedPullRequestQuery{
		Owner:      owner,
		Repository: repository,
		Author:     options.Author,
		MaxAgeDays: options.MaxAgeDays,
	})
	if pullRequestError != nil {
		return LocalCleanupStats{}, pullRequestError
	}
	cleanupStats.MergedPullRequests = len(mergedPullRequests)

	pullRequestsByHead := make(map[string]githubapi.PullRequest, len(mergedPullRequests))
	for _, mergedPullRequest := range mergedPullRequests {
		if _, exists := pullRequestsByHead[mergedPullRequest.HeadRefName]; exists {
			continue
		}
		pullRequestsByHead[mergedPullRequest.HeadRefName] = mergedPullRequest
	}

	deletionAttempts := 0
	for _, matchedBranch := range matchedBranches {
		mergedPullRequest, merged := pullRequestsByHead[matchedBranch.Name]
		if !merged {
			continue
		}
		cleanupStats.Stale++

		// Every stale branch is reported, including those past the deletion limit.
		service.logger.Info(
			staleLocalBranchMessageConstant,
			zap.String(branchLogFieldConstant, matchedBranch.Name),
			zap.Int(pullRequestNumberLogFieldConstant, mergedPullRequest.Number),
			zap.String(pullRequestTitleLogFieldConstant, mergedPullRequest.Title),
			zap.Time(pullRequestClosedAtLogFieldConstant, mergedPullRequest.ClosedAt),
			zap.Bool(dryRunLogFieldConstant, options.DryRun),
		)

		if options.Limit > 0 && deletionAttempts >= options.Limit {
			continue
		}
		deletionAttempts++

		if options.DryRun {
			continue
		}

		if deletionError := service.repositoryManager.DeleteBranch(executionContext, options.RepositoryPath, matchedBranch.Name); deletionError != nil {
			cleanupStats.Failed++
			service.logger.Error(
				localDeletionFailedMessageConstant,
				zap.String(branchLogFieldConstant, matchedBranch.Name),
				zap.Error(deletionError),
			)
		}
	}

	return cleanupStats, nil
}

func resolveRepositoryIdentity(options LocalCleanupOptions, remoteName string, remoteURL string) (string, string, error) {
	owner := strings.TrimSpace(options.Owner)
	repository := strings.TrimSpace(options.Repository)
	if len(owner) > 0 && len(repository) > 0 {
		return owner, repository, nil
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", "", fmt.Errorf(remoteInferenceFailureTemplateConstant, remoteName, parseError)
	}
	if len(owner) == 0 {
		owner = parsedRemote.Owner
	}
	if len(repository) == 0 {
		repository = parsedRemote.Repository
	}
	return owner, repository, nil
}
