package branches

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveRESTEndpoint(testInstance *testing.T) {
	testCases := []struct {
		name             string
		graphQLEndpoint  string
		expectedEndpoint string
	}{
		{
			name:             "empty_keeps_public_api",
			graphQLEndpoint:  "",
			expectedEndpoint: "",
		},
		{
			name:             "enterprise_graphql_path",
			graphQLEndpoint:  "https://github.example.com/api/graphql",
			expectedEndpoint: "https://github.example.com",
		},
		{
			name:             "enterprise_graphql_path_trailing_slash",
			graphQLEndpoint:  "https://github.example.com/api/graphql/",
			expectedEndpoint: "https://github.example.com",
		},
		{
			name:             "host_root_unchanged",
			graphQLEndpoint:  "https://github.example.com",
			expectedEndpoint: "https://github.example.com",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedEndpoint, deriveRESTEndpoint(testCase.graphQLEndpoint))
		})
	}
}
