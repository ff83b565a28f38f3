package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prsweep/prsweep/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	remoteNameRequiredMessageConstant        = "remote name must be provided"
	branchNameRequiredMessageConstant        = "branch name must be provided"
	remoteLookupFailureTemplateConstant      = "remote %q is not configured in %s: %w"
	branchListingFailureTemplateConstant     = "failed to list branches in %s: %w"
	branchDeletionFailureTemplateConstant    = "failed to delete branch %q in %s: %w"
	gitRemoteSubcommandConstant              = "remote"
	gitRemoteGetURLSubcommandConstant        = "get-url"
	gitForEachRefSubcommandConstant          = "for-each-ref"
	gitBranchSubcommandConstant              = "branch"
	gitDeleteFlagConstant                    = "--delete"
	gitForceFlagConstant                     = "--force"
	gitFormatFlagConstant                    = "--format=%(refname)%09%(upstream)"
	branchReferencePrefixConstant            = "refs/heads/"
	forEachRefFieldSeparatorConstant         = "\t"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentOffConstant  = "0"
	defaultRepositoryPathLabelConstant       = "current directory"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRemoteNameRequired indicates an empty remote name was supplied.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// ErrBranchNameRequired indicates an empty branch name was supplied.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// LocalBranch describes a local branch together with its upstream tracking reference.
type LocalBranch struct {
	// RefName holds the full reference name, for example refs/heads/feature-x.
	RefName string
	// Name holds the short branch name with the refs/heads/ prefix removed.
	Name string
	// UpstreamRefName holds the full tracking reference, for example
	// refs/remotes/origin/feature-x, or the empty string when no upstream
	// is configured.
	UpstreamRefName string
}

// RepositoryManager performs repository-level git operations through a GitExecutor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager from the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetRemoteURL resolves the URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return "", ErrRemoteNameRequired
	}

	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{
		gitRemoteSubcommandConstant,
		gitRemoteGetURLSubcommandConstant,
		trimmedRemoteName,
	})
	if executionError != nil {
		return "", fmt.Errorf(remoteLookupFailureTemplateConstant, trimmedRemoteName, manager.describePath(repositoryPath), executionError)
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ListBranches enumerates local branches with their upstream tracking references.
func (manager *RepositoryManager) ListBranches(executionContext context.Context, repositoryPath string) ([]LocalBranch, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{
		gitForEachRefSubcommandConstant,
		gitFormatFlagConstant,
		branchReferencePrefixConstant,
	})
	if executionError != nil {
		return nil, fmt.Errorf(branchListingFailureTemplateConstant, manager.describePath(repositoryPath), executionError)
	}

	return parseBranchListing(executionResult.StandardOutput), nil
}

// DeleteBranch force-deletes the named local branch.
func (manager *RepositoryManager) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	_, executionError := manager.executeGit(executionContext, repositoryPath, []string{
		gitBranchSubcommandConstant,
		gitDeleteFlagConstant,
		gitForceFlagConstant,
		trimmedBranchName,
	})
	if executionError != nil {
		return fmt.Errorf(branchDeletionFailureTemplateConstant, trimmedBranchName, manager.describePath(repositoryPath), executionError)
	}

	return nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments []string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: strings.TrimSpace(repositoryPath),
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentOffConstant,
		},
	})
}

func (manager *RepositoryManager) describePath(repositoryPath string) string {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return defaultRepositoryPathLabelConstant
	}
	return trimmedPath
}

func parseBranchListing(listingOutput string) []LocalBranch {
	outputLines := strings.Split(listingOutput, "\n")
	localBranches := make([]LocalBranch, 0, len(outputLines))

	for _, outputLine := range outputLines {
		trimmedLine := strings.TrimRight(outputLine, "\r")
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}

		referenceName, upstreamName, _ := strings.Cut(trimmedLine, forEachRefFieldSeparatorConstant)
		referenceName = strings.TrimSpace(referenceName)
		if !strings.HasPrefix(referenceName, branchReferencePrefixConstant) {
			continue
		}

		localBranches = append(localBranches, LocalBranch{
			RefName:         referenceName,
			Name:            strings.TrimPrefix(referenceName, branchReferencePrefixConstant),
			UpstreamRefName: strings.TrimSpace(upstreamName),
		})
	}

	return localBranches
}
