package branches

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/prsweep/prsweep/internal/githubapi"
)

const (
	loggerMissingMessageConstant            = "logger not configured"
	branchListerMissingMessageConstant      = "merged branch lister not configured"
	branchDeleterMissingMessageConstant     = "branch deleter not configured"
	ownerRequiredMessageConstant            = "repository owner must be provided"
	repositoryRequiredMessageConstant       = "repository name must be provided"
	staleRemoteBranchMessageConstant        = "Stale remote branch"
	remoteDeletionFailedMessageConstant     = "Failed to delete remote branch"
	branchLogFieldConstant                  = "branch"
	pullRequestNumbersLogFieldConstant      = "pull_requests"
	dryRunLogFieldConstant                  = "dry_run"
)

// ErrLoggerNotConfigured indicates a cleanup service was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrBranchListerNotConfigured indicates the merged branch lister dependency was missing.
var ErrBranchListerNotConfigured = errors.New(branchListerMissingMessageConstant)

// ErrBranchDeleterNotConfigured indicates the branch deleter dependency was missing.
var ErrBranchDeleterNotConfigured = errors.New(branchDeleterMissingMessageConstant)

// ErrOwnerRequired indicates the repository owner option was empty.
var ErrOwnerRequired = errors.New(ownerRequiredMessageConstant)

// ErrRepositoryRequired indicates the repository name option was empty.
var ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)

// MergedBranchLister enumerates remote branches carrying merged pull requests.
type MergedBranchLister interface {
	ListMergedBranches(executionContext context.Context, owner string, repository string) ([]githubapi.MergedBranch, error)
}

// RemoteBranchDeleter removes a remote branch reference.
type RemoteBranchDeleter interface {
	DeleteBranchRef(executionContext context.Context, owner string, repository string, branchName string) error
}

// RemoteDependencies enumerates collaborators required for remote cleanup.
type RemoteDependencies struct {
	Logger        *zap.Logger
	BranchLister  MergedBranchLister
	BranchDeleter RemoteBranchDeleter
}

// RemoteCleanupOptions configures a remote branch cleanup run.
type RemoteCleanupOptions struct {
	Owner      string
	Repository string
	// DryRun reports stale branches without deleting them. Logging and
	// statistics are identical to a live run.
	DryRun bool
	// Limit caps the number of deletions. Zero means unlimited. Branches past
	// the limit still count as stale.
	Limit int
}

// RemoteCleanupService removes remote branches whose pull requests merged.
type RemoteCleanupService struct {
	logger        *zap.Logger
	branchLister  MergedBranchLister
	branchDeleter RemoteBranchDeleter
}

// NewRemoteCleanupService constructs a RemoteCleanupService from the provided dependencies.
func NewRemoteCleanupService(dependencies RemoteDependencies) (*RemoteCleanupService, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.BranchLister == nil {
		return nil, ErrBranchListerNotConfigured
	}
	if dependencies.BranchDeleter == nil {
		return nil, ErrBranchDeleterNotConfigured
	}
	return &RemoteCleanupService{
		logger:        dependencies.Logger,
		branchLister:  dependencies.BranchLister,
		branchDeleter: dependencies.BranchDeleter,
	}, nil
}

// Cleanup deletes remote branches confirmed merged through GitHub records.
// Individual deletion failures are logged and tallied without ending the run.
func (service *RemoteCleanupService) Cleanup(executionContext context.Context, options RemoteCleanupOptions) (RemoteCleanupStats, error) {
	trimmedOwner := strings.TrimSpace(options.Owner)
	if len(trimmedOwner) == 0 {
		return RemoteCleanupStats{}, ErrOwnerRequired
	}
	trimmedRepository := strings.TrimSpace(options.Repository)
	if len(trimmedRepository) == 0 {
		return RemoteCleanupStats{}, ErrRepositoryRequired
	}

	mergedBranches, listError := service.branchLister.ListMergedBranches(executionContext, trimmedOwner, trimmedRepository)
	if listError != nil {
		return RemoteCleanupStats{}, listError
	}

	cleanupStats := RemoteCleanupStats{}
	deletionAttempts := 0
	for _, mergedBranch := range mergedBranches {
		cleanupStats.Stale++

		// Every stale branch is reported, including those past the deletion limit.
		service.logger.Info(
			staleRemoteBranchMessageConstant,
			zap.String(branchLogFieldConstant, mergedBranch.Name),
			zap.Ints(pullRequestNumbersLogFieldConstant, pullRequestNumbers(mergedBranch)),
			zap.Bool(dryRunLogFieldConstant, options.DryRun),
		)

		if options.Limit > 0 && deletionAttempts >= options.Limit {
			continue
		}
		deletionAttempts++

		if options.DryRun {
			cleanupStats.Deleted++
			continue
		}

		deletionError := service.branchDeleter.DeleteBranchRef(executionContext, trimmedOwner, trimmedRepository, mergedBranch.Name)
		if deletionError != nil {
			cleanupStats.Failed++
			service.logger.Error(
				remoteDeletionFailedMessageConstant,
				zap.String(branchLogFieldConstant, mergedBranch.Name),
				zap.Error(deletionError),
			)
			continue
		}

		cleanupStats.Deleted++
	}

	return cleanupStats, nil
}

func pullRequestNumbers(mergedBranch githubapi.MergedBranch) []int {
	numbers := make([]int, 0, len(mergedBranch.PullRequests))
	for _, pullRequestReference := range mergedBranch.PullRequests {
		numbers = append(numbers, pullRequestReference.Number)
	}
	return numbers
}
