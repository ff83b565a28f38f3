package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/prsweep/prsweep/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedCommands []execshell.ShellCommand
	failedCommands    []execshell.ShellCommand
}

func (observerInstance *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observerInstance.startedCommands = append(observerInstance.startedCommands, command)
}

func (observerInstance *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, _ execshell.ExecutionResult) {
	observerInstance.completedCommands = append(observerInstance.completedCommands, command)
}

func (observerInstance *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, _ error) {
	observerInstance.failedCommands = append(observerInstance.failedCommands, command)
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedLogCount int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount: 2,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			runner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			executor, creationError := execshell.NewShellExecutor(logger, runner)
			require.NoError(testInstance, creationError)

			executionResult, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{
				Arguments: []string{testCommandArgumentConstant},
			})

			require.Len(testInstance, runner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, runner.recordedCommands[0].Name)
			require.Equal(testInstance, testCase.expectedLogCount, observerLogs.Len())

			switch testCase.expectErrorType.(type) {
			case execshell.CommandFailedError:
				require.Error(testInstance, executionError)
				var failedError execshell.CommandFailedError
				require.ErrorAs(testInstance, executionError, &failedError)
				require.Equal(testInstance, testCase.runnerResult.ExitCode, executionResult.ExitCode)
			case execshell.CommandExecutionError:
				require.Error(testInstance, executionError)
				var commandExecutionError execshell.CommandExecutionError
				require.ErrorAs(testInstance, executionError, &commandExecutionError)
			default:
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult, executionResult)
			}
		})
	}
}

func TestShellExecutorNotifiesObserver(testInstance *testing.T) {
	runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 0}}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), runner)
	require.NoError(testInstance, creationError)

	eventObserver := &recordingEventObserver{}
	executor.SetCommandEventObserver(eventObserver)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments: []string{testCommandArgumentConstant},
	})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, eventObserver.startedCommands, 1)
	require.Len(testInstance, eventObserver.completedCommands, 1)
	require.Empty(testInstance, eventObserver.failedCommands)
}
