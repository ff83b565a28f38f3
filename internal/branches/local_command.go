package branches

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prsweep/prsweep/internal/execshell"
	"github.com/prsweep/prsweep/internal/gitrepo"
	pathutils "github.com/prsweep/prsweep/internal/utils/path"
)

const (
	localCommandUseConstant                = "local"
	localCommandShortDescriptionConstant   = "Delete local branches whose pull requests merged"
	localCommandLongDescriptionConstant    = "local matches local branches tracking the configured remote against recently merged pull requests and deletes the branches GitHub confirms as merged."
	remoteFlagNameConstant                 = "remote"
	remoteFlagDescriptionConstant          = "Remote whose tracking branches are eligible for cleanup"
	pathFlagNameConstant                   = "path"
	pathFlagDescriptionConstant            = "Repository path (defaults to the current working directory)"
	ownerFlagNameConstant                  = "owner"
	ownerFlagDescriptionConstant           = "Repository owner (defaults to the owner in the remote URL)"
	localRepositoryFlagDescriptionConstant = "Repository name (defaults to the name in the remote URL)"
	maxDaysFlagNameConstant                = "max-days"
	maxDaysFlagDescriptionConstant         = "Only consider pull requests closed within this many days (0 = unlimited)"
	localSummaryTemplateConstant           = "total: %d, matched: %d, skipped: %d, errors: %d, stale: %d, failed: %d, merged-prs: %d\n"
)

// LocalCommandBuilder assembles the local cleanup command.
type LocalCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() LocalCommandConfiguration
	RepositoryManager     GitRepositoryManager
	PullRequestLister     MergedPullRequestLister
	CurrentUserProvider   CurrentUserProvider
}

// Build constructs the local cleanup command.
func (builder *LocalCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   localCommandUseConstant,
		Short: localCommandShortDescriptionConstant,
		Long:  localCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(remoteFlagNameConstant, defaultRemoteNameConstant, remoteFlagDescriptionConstant)
	command.Flags().String(pathFlagNameConstant, "", pathFlagDescriptionConstant)
	command.Flags().String(ownerFlagNameConstant, "", ownerFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, "", localRepositoryFlagDescriptionConstant)
	command.Flags().String(authorFlagNameConstant, "", authorFlagDescriptionConstant)
	command.Flags().Int(limitFlagNameConstant, 0, limitFlagDescriptionConstant)
	command.Flags().Int(maxDaysFlagNameConstant, defaultPullRequestAgeDaysConstant, maxDaysFlagDescriptionConstant)
	command.Flags().String(githubURLFlagNameConstant, "", githubURLFlagDescriptionConstant)
	command.Flags().String(githubTokenFlagNameConstant, "", githubTokenFlagDescriptionConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)

	return command, nil
}

func (builder *LocalCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	if overrideError := applyLocalFlagOverrides(command, &configuration); overrideError != nil {
		return overrideError
	}
	configuration.RepositoryPath = pathutils.NewHomeExpander().Expand(configuration.RepositoryPath)

	author := configuration.Author
	if len(author) == 0 {
		resolvedAuthor, authorError := builder.resolveCurrentUser()
		if authorError != nil {
			return fmt.Errorf(currentUserFailureTemplateConstant, authorError)
		}
		author = resolvedAuthor
	}

	logger := builder.resolveLogger()

	repositoryManager, managerError := builder.resolveRepositoryManager(logger)
	if managerError != nil {
		return managerError
	}

	pullRequestLister, listerError := builder.resolvePullRequestLister(logger, configuration)
	if listerError != nil {
		return listerError
	}

	service, serviceCreationError := NewLocalCleanupService(LocalDependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		PullRequestLister: pullRequestLister,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	cleanupStats, cleanupError := service.Cleanup(command.Context(), LocalCleanupOptions{
		RepositoryPath: configuration.RepositoryPath,
		RemoteName:     configuration.RemoteName,
		Owner:          configuration.Owner,
		Repository:     configuration.Repository,
		Author:         author,
		MaxAgeDays:     configuration.MaxAgeDays,
		Limit:          configuration.Limit,
		DryRun:         configuration.DryRun,
	})
	if cleanupError != nil {
		return cleanupError
	}

	fmt.Fprintf(
		command.OutOrStdout(),
		localSummaryTemplateConstant,
		cleanupStats.Total,
		cleanupStats.Matched,
		cleanupStats.Skipped,
		cleanupStats.Errors,
		cleanupStats.Stale,
		cleanupStats.Failed,
		cleanupStats.MergedPullRequests,
	)
	return nil
}

func applyLocalFlagOverrides(command *cobra.Command, configuration *LocalCommandConfiguration) error {
	commandFlags := command.Flags()

	stringOverrides := []struct {
		flagName string
		target   *string
	}{
		{flagName: remoteFlagNameConstant, target: &configuration.RemoteName},
		{flagName: pathFlagNameConstant, target: &configuration.RepositoryPath},
		{flagName: ownerFlagNameConstant, target: &configuration.Owner},
		{flagName: repositoryFlagNameConstant, target: &configuration.Repository},
		{flagName: authorFlagNameConstant, target: &configuration.Author},
		{flagName: githubURLFlagNameConstant, target: &configuration.GitHubBaseURL},
		{flagName: githubTokenFlagNameConstant, target: &configuration.GitHubToken},
	}
	for _, stringOverride := range stringOverrides {
		if !commandFlags.Changed(stringOverride.flagName) {
			continue
		}
		flagValue, flagError := commandFlags.GetString(stringOverride.flagName)
		if flagError != nil {
			return flagError
		}
		*stringOverride.target = flagValue
	}

	integerOverrides := []struct {
		flagName string
		target   *int
	}{
		{flagName: limitFlagNameConstant, target: &configuration.Limit},
		{flagName: maxDaysFlagNameConstant, target: &configuration.MaxAgeDays},
	}
	for _, integerOverride := range integerOverrides {
		if !commandFlags.Changed(integerOverride.flagName) {
			continue
		}
		flagValue, flagError := commandFlags.GetInt(integerOverride.flagName)
		if flagError != nil {
			return flagError
		}
		*integerOverride.target = flagValue
	}

	if commandFlags.Changed(dryRunFlagNameConstant) {
		flagValue, flagError := commandFlags.GetBool(dryRunFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.DryRun = flagValue
	}

	*configuration = configuration.Sanitize()
	return nil
}

func (builder *LocalCommandBuilder) resolveRepositoryManager(logger *zap.Logger) (GitRepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}
	return gitrepo.NewRepositoryManager(shellExecutor)
}

func (builder *LocalCommandBuilder) resolvePullRequestLister(logger *zap.Logger, configuration LocalCommandConfiguration) (MergedPullRequestLister, error) {
	if builder.PullRequestLister != nil {
		return builder.PullRequestLister, nil
	}
	return newGitHubClient(logger, configuration.GitHubToken, configuration.GitHubBaseURL)
}

func (builder *LocalCommandBuilder) resolveConfiguration() LocalCommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultLocalCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *LocalCommandBuilder) resolveCurrentUser() (string, error) {
	if builder.CurrentUserProvider == nil {
		return systemCurrentUser()
	}
	return builder.CurrentUserProvider()
}

func (builder *LocalCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
