package branches

import "strings"

const defaultRemoteNameConstant = "origin"

// defaultPullRequestAgeDaysConstant bounds the merged pull request scan. Zero
// would scan the full history of large repositories.
const defaultPullRequestAgeDaysConstant = 30

const (
	limitConfigurationKeySuffixConstant   = ".limit"
	dryRunConfigurationKeySuffixConstant  = ".dry_run"
	remoteConfigurationKeySuffixConstant  = ".remote"
	maxDaysConfigurationKeySuffixConstant = ".max_days"
)

// RemoteDefaultConfigurationValues exposes viper defaults for the github command.
func RemoteDefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + limitConfigurationKeySuffixConstant:  0,
		configurationKeyPrefix + dryRunConfigurationKeySuffixConstant: false,
	}
}

// LocalDefaultConfigurationValues exposes viper defaults for the local command.
func LocalDefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + remoteConfigurationKeySuffixConstant:  defaultRemoteNameConstant,
		configurationKeyPrefix + maxDaysConfigurationKeySuffixConstant: defaultPullRequestAgeDaysConstant,
		configurationKeyPrefix + limitConfigurationKeySuffixConstant:   0,
		configurationKeyPrefix + dryRunConfigurationKeySuffixConstant:  false,
	}
}

// RemoteCommandConfiguration captures configuration values for remote branch cleanup.
type RemoteCommandConfiguration struct {
	Repository    string `mapstructure:"repo"`
	Author        string `mapstructure:"author"`
	GitHubBaseURL string `mapstructure:"github_url"`
	GitHubToken   string `mapstructure:"github_token"`
	DryRun        bool   `mapstructure:"dry_run"`
	Limit         int    `mapstructure:"limit"`
}

// DefaultRemoteCommandConfiguration provides baseline remote cleanup values.
func DefaultRemoteCommandConfiguration() RemoteCommandConfiguration {
	return RemoteCommandConfiguration{}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration RemoteCommandConfiguration) Sanitize() RemoteCommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Author = strings.TrimSpace(configuration.Author)
	sanitized.GitHubBaseURL = strings.TrimSpace(configuration.GitHubBaseURL)
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	return sanitized
}

// LocalCommandConfiguration captures configuration values for local branch cleanup.
type LocalCommandConfiguration struct {
	RemoteName     string `mapstructure:"remote"`
	RepositoryPath string `mapstructure:"path"`
	Owner          string `mapstructure:"owner"`
	Repository     string `mapstructure:"repo"`
	Author         string `mapstructure:"author"`
	Limit          int    `mapstructure:"limit"`
	MaxAgeDays     int    `mapstructure:"max_days"`
	GitHubBaseURL  string `mapstructure:"github_url"`
	GitHubToken    string `mapstructure:"github_token"`
	DryRun         bool   `mapstructure:"dry_run"`
}

// DefaultLocalCommandConfiguration provides baseline local cleanup values.
func DefaultLocalCommandConfiguration() LocalCommandConfiguration {
	return LocalCommandConfiguration{
		RemoteName: defaultRemoteNameConstant,
		MaxAgeDays: defaultPullRequestAgeDaysConstant,
	}
}

// Sanitize trims configuration values and restores the default remote name
// when the configured one is blank.
func (configuration LocalCommandConfiguration) Sanitize() LocalCommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Author = strings.TrimSpace(configuration.Author)
	sanitized.GitHubBaseURL = strings.TrimSpace(configuration.GitHubBaseURL)
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	return sanitized
}
