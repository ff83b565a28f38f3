package utils_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prsweep/prsweep/internal/utils"
)

const (
	testLoggerFactorySupportedCaseTemplateConstant = "supported_log_level_%s_format_%s"
	testLoggerFactoryUnsupportedLevelCaseConstant  = "unsupported_log_level"
	testLoggerFactoryUnsupportedFormatCaseConstant = "unsupported_log_format"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectError        bool
	}{
		{
			name:               fmt.Sprintf(testLoggerFactorySupportedCaseTemplateConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:  utils.LogLevelDebug,
			requestedLogFormat: utils.LogFormatStructured,
		},
		{
			name:               fmt.Sprintf(testLoggerFactorySupportedCaseTemplateConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormatConsole,
		},
		{
			name:               fmt.Sprintf(testLoggerFactorySupportedCaseTemplateConstant, utils.LogLevelWarn, utils.LogFormatStructured),
			requestedLogLevel:  utils.LogLevelWarn,
			requestedLogFormat: utils.LogFormatStructured,
		},
		{
			name:               fmt.Sprintf(testLoggerFactorySupportedCaseTemplateConstant, utils.LogLevelError, utils.LogFormatConsole),
			requestedLogLevel:  utils.LogLevelError,
			requestedLogFormat: utils.LogFormatConsole,
		},
		{
			name:               testLoggerFactoryUnsupportedLevelCaseConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryUnsupportedFormatCaseConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	factory := utils.NewLoggerFactory()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := factory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		})
	}
}
