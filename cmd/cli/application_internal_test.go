package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: debug\ntools:\n  local:\n    remote: upstream\n    max_days: 7\n  github:\n    limit: 3\n"
)

func TestNewApplicationRegistersCleanupCommands(testInstance *testing.T) {
	application := NewApplication()

	commandNames := []string{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		commandNames = append(commandNames, registeredCommand.Name())
	}

	require.Contains(testInstance, commandNames, "github")
	require.Contains(testInstance, commandNames, "local")
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "origin", application.configuration.Tools.Local.RemoteName)
	require.Equal(testInstance, 30, application.configuration.Tools.Local.MaxAgeDays)
	require.Equal(testInstance, 0, application.configuration.Tools.GitHub.Limit)
}

func TestInitializeConfigurationReadsConfigurationFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testConfigurationContentConstant), 0o600))

	application := NewApplication()
	application.configurationFilePath = configurationFilePath

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "upstream", application.configuration.Tools.Local.RemoteName)
	require.Equal(testInstance, 7, application.configuration.Tools.Local.MaxAgeDays)
	require.Equal(testInstance, 3, application.configuration.Tools.GitHub.Limit)
	require.Equal(testInstance, configurationFilePath, application.configurationMetadata.ConfigFileUsed)
}

func TestLogLevelFlagOverridesConfiguration(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "error"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)
	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
}

func TestRootCommandWithoutArgumentsShowsHelp(testInstance *testing.T) {
	application := NewApplication()

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{})

	executionError := application.Execute()
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, outputBuffer.String(), applicationNameConstant)
}

func TestExecuteReportsUnknownCommand(testInstance *testing.T) {
	application := NewApplication()

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{"unknown-subcommand"})

	executionError := application.Execute()
	require.Error(testInstance, executionError)
}
