package branches

import (
	"errors"
	"fmt"
	"os/user"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prsweep/prsweep/internal/githubapi"
	"github.com/prsweep/prsweep/internal/githubauth"
)

const (
	remoteCommandUseConstant              = "github"
	remoteCommandShortDescriptionConstant = "Delete remote branches whose pull requests merged"
	remoteCommandLongDescriptionConstant  = "github scans the repository's branches for associated merged pull requests and deletes the branches GitHub confirms as merged."
	githubURLFlagNameConstant             = "github-url"
	githubURLFlagDescriptionConstant      = "GitHub GraphQL endpoint (empty uses the public API)"
	githubTokenFlagNameConstant           = "github-token"
	githubTokenFlagDescriptionConstant    = "GitHub API token (defaults to GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN)"
	repositoryFlagNameConstant            = "repo"
	repositoryFlagDescriptionConstant     = "Repository name, optionally owner/name"
	authorFlagNameConstant                = "author"
	authorFlagDescriptionConstant         = "Repository owner (defaults to the current OS user)"
	dryRunFlagNameConstant                = "dry-run"
	dryRunFlagDescriptionConstant         = "Report stale branches without deleting them"
	limitFlagNameConstant                 = "limit"
	limitFlagDescriptionConstant          = "Maximum number of deletions (0 = unlimited)"
	missingRepositoryMessageConstant      = "repository name is required; supply --repo"
	missingTokenMessageConstant           = "github token is required; supply --github-token or set GH_TOKEN"
	currentUserFailureTemplateConstant    = "cannot determine current user for --author default: %w"
	ownerRepositorySeparatorConstant      = "/"
	remoteSummaryTemplateConstant         = "stale: %d, deleted: %d, failed: %d\n"
	graphQLPathSuffixConstant             = "/graphql"
	apiPathSuffixConstant                 = "/api"
	trailingSlashConstant                 = "/"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CurrentUserProvider yields the login name of the invoking OS user.
type CurrentUserProvider func() (string, error)

func systemCurrentUser() (string, error) {
	currentUser, lookupError := user.Current()
	if lookupError != nil {
		return "", lookupError
	}
	return currentUser.Username, nil
}

// RemoteCommandBuilder assembles the github cleanup command.
type RemoteCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() RemoteCommandConfiguration
	BranchLister          MergedBranchLister
	BranchDeleter         RemoteBranchDeleter
	CurrentUserProvider   CurrentUserProvider
}

// Build constructs the github cleanup command.
func (builder *RemoteCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   remoteCommandUseConstant,
		Short: remoteCommandShortDescriptionConstant,
		Long:  remoteCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(githubURLFlagNameConstant, "", githubURLFlagDescriptionConstant)
	command.Flags().String(githubTokenFlagNameConstant, "", githubTokenFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)
	command.Flags().String(authorFlagNameConstant, "", authorFlagDescriptionConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().Int(limitFlagNameConstant, 0, limitFlagDescriptionConstant)

	return command, nil
}

func (builder *RemoteCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	if overrideError := applyRemoteFlagOverrides(command, &configuration); overrideError != nil {
		return overrideError
	}

	if len(configuration.Repository) == 0 {
		return errors.New(missingRepositoryMessageConstant)
	}

	author := configuration.Author
	if len(author) == 0 {
		resolvedAuthor, authorError := builder.resolveCurrentUser()
		if authorError != nil {
			return fmt.Errorf(currentUserFailureTemplateConstant, authorError)
		}
		author = resolvedAuthor
	}

	owner, repository := splitRepositoryIdentifier(configuration.Repository, author)

	logger := builder.resolveLogger()
	branchLister, branchDeleter, clientError := builder.resolveGitHubDependencies(logger, configuration)
	if clientError != nil {
		return clientError
	}

	service, serviceCreationError := NewRemoteCleanupService(RemoteDependencies{
		Logger:        logger,
		BranchLister:  branchLister,
		BranchDeleter: branchDeleter,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	cleanupStats, cleanupError := service.Cleanup(command.Context(), RemoteCleanupOptions{
		Owner:      owner,
		Repository: repository,
		DryRun:     configuration.DryRun,
		Limit:      configuration.Limit,
	})
	if cleanupError != nil {
		return cleanupError
	}

	fmt.Fprintf(command.OutOrStdout(), remoteSummaryTemplateConstant, cleanupStats.Stale, cleanupStats.Deleted, cleanupStats.Failed)
	return nil
}

func applyRemoteFlagOverrides(command *cobra.Command, configuration *RemoteCommandConfiguration) error {
	commandFlags := command.Flags()

	if commandFlags.Changed(githubURLFlagNameConstant) {
		flagValue, flagError := commandFlags.GetString(githubURLFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.GitHubBaseURL = flagValue
	}
	if commandFlags.Changed(githubTokenFlagNameConstant) {
		flagValue, flagError := commandFlags.GetString(githubTokenFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.GitHubToken = flagValue
	}
	if commandFlags.Changed(repositoryFlagNameConstant) {
		flagValue, flagError := commandFlags.GetString(repositoryFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.Repository = flagValue
	}
	if commandFlags.Changed(authorFlagNameConstant) {
		flagValue, flagError := commandFlags.GetString(authorFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.Author = flagValue
	}
	if commandFlags.Changed(dryRunFlagNameConstant) {
		flagValue, flagError := commandFlags.GetBool(dryRunFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.DryRun = flagValue
	}
	if commandFlags.Changed(limitFlagNameConstant) {
		flagValue, flagError := commandFlags.GetInt(limitFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.Limit = flagValue
	}

	*configuration = configuration.Sanitize()
	return nil
}

func splitRepositoryIdentifier(repositoryIdentifier string, fallbackOwner string) (string, string) {
	owner, repository, found := strings.Cut(repositoryIdentifier, ownerRepositorySeparatorConstant)
	if !found {
		return fallbackOwner, repositoryIdentifier
	}
	return owner, repository
}

func (builder *RemoteCommandBuilder) resolveGitHubDependencies(logger *zap.Logger, configuration RemoteCommandConfiguration) (MergedBranchLister, RemoteBranchDeleter, error) {
	if builder.BranchLister != nil && builder.BranchDeleter != nil {
		return builder.BranchLister, builder.BranchDeleter, nil
	}

	client, clientError := newGitHubClient(logger, configuration.GitHubToken, configuration.GitHubBaseURL)
	if clientError != nil {
		return nil, nil, clientError
	}

	branchLister := MergedBranchLister(client)
	if builder.BranchLister != nil {
		branchLister = builder.BranchLister
	}
	branchDeleter := RemoteBranchDeleter(client)
	if builder.BranchDeleter != nil {
		branchDeleter = builder.BranchDeleter
	}
	return branchLister, branchDeleter, nil
}

func newGitHubClient(logger *zap.Logger, configuredToken string, graphQLEndpoint string) (*githubapi.Client, error) {
	token := configuredToken
	if len(token) == 0 {
		resolvedToken, found := githubauth.ResolveToken(nil)
		if !found {
			return nil, errors.New(missingTokenMessageConstant)
		}
		token = resolvedToken
	}

	return githubapi.NewClient(logger, githubapi.ClientOptions{
		Token:           token,
		GraphQLEndpoint: graphQLEndpoint,
		RESTEndpoint:    deriveRESTEndpoint(graphQLEndpoint),
	})
}

// deriveRESTEndpoint maps a configured GraphQL endpoint to the REST base URL on
// the same host. An enterprise GraphQL endpoint like
// https://github.example.com/api/graphql reduces to https://github.example.com,
// which the REST client extends with its api/v3 prefix. An empty endpoint keeps
// the public REST API.
func deriveRESTEndpoint(graphQLEndpoint string) string {
	if len(graphQLEndpoint) == 0 {
		return ""
	}
	restEndpoint := strings.TrimSuffix(graphQLEndpoint, trailingSlashConstant)
	restEndpoint = strings.TrimSuffix(restEndpoint, graphQLPathSuffixConstant)
	restEndpoint = strings.TrimSuffix(restEndpoint, apiPathSuffixConstant)
	return restEndpoint
}

func (builder *RemoteCommandBuilder) resolveConfiguration() RemoteCommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultRemoteCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *RemoteCommandBuilder) resolveCurrentUser() (string, error) {
	if builder.CurrentUserProvider == nil {
		return systemCurrentUser()
	}
	return builder.CurrentUserProvider()
}

func (builder *RemoteCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
