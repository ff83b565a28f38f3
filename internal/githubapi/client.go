package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	loggerMissingMessageConstant            = "logger not configured"
	tokenMissingMessageConstant             = "github token not configured"
	rateLimiterFailureTemplateConstant      = "failed to create rate limit transport: %w"
	enterpriseClientFailureTemplateConstant = "failed to configure REST endpoint %s: %w"
	queryErrorTemplateConstant              = "%s query failed: %s"
	branchDeletionErrorTemplateConstant     = "failed to delete %s/%s branch %s (status %d): %s"
	branchReferencePrefixConstant           = "heads/"
	rateLimitSleepCeilingConstant           = time.Hour
	deletedBranchLogFieldConstant           = "branch"
	deletionStatusLogFieldConstant          = "status"
	remoteBranchDeletedMessageConstant      = "Deleted remote branch"
)

// ErrLoggerNotConfigured indicates the client was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrTokenNotConfigured indicates no authentication token was supplied.
var ErrTokenNotConfigured = errors.New(tokenMissingMessageConstant)

// QueryError wraps a GraphQL query failure with the failed operation name.
type QueryError struct {
	Operation string
	Cause     error
}

// Error describes the failed query.
func (queryError QueryError) Error() string {
	return fmt.Sprintf(queryErrorTemplateConstant, queryError.Operation, queryError.Cause)
}

// Unwrap exposes the underlying query failure.
func (queryError QueryError) Unwrap() error {
	return queryError.Cause
}

// BranchDeletionError indicates a remote branch deletion did not complete.
type BranchDeletionError struct {
	Owner      string
	Repository string
	BranchName string
	StatusCode int
	Detail     string
}

// Error describes the failed deletion.
func (deletionError BranchDeletionError) Error() string {
	return fmt.Sprintf(
		branchDeletionErrorTemplateConstant,
		deletionError.Owner,
		deletionError.Repository,
		deletionError.BranchName,
		deletionError.StatusCode,
		deletionError.Detail,
	)
}

// Clock supplies the current time to cutoff calculations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}

// ClientOptions configures a GitHub API client.
type ClientOptions struct {
	// Token authenticates both the GraphQL and REST clients.
	Token string
	// GraphQLEndpoint overrides the public GraphQL endpoint when set, for
	// example for GitHub Enterprise installations.
	GraphQLEndpoint string
	// RESTEndpoint overrides the public REST base URL when set.
	RESTEndpoint string
	// HTTPClient replaces the default rate limit aware transport when set.
	HTTPClient *http.Client
	// Clock replaces the system clock when set.
	Clock Clock
}

// Client issues GraphQL queries and REST mutations against the GitHub API.
type Client struct {
	graphqlClient *githubv4.Client
	restClient    *github.Client
	logger        *zap.Logger
	clock         Clock
}

// NewClient constructs an authenticated Client from the provided options.
func NewClient(logger *zap.Logger, options ClientOptions) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		if len(options.Token) == 0 {
			return nil, ErrTokenNotConfigured
		}

		rateLimitTransport, transportError := github_ratelimit.NewRateLimitWaiter(
			nil,
			github_ratelimit.WithSingleSleepLimit(rateLimitSleepCeilingConstant, nil),
		)
		if transportError != nil {
			return nil, fmt.Errorf(rateLimiterFailureTemplateConstant, transportError)
		}

		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: options.Token})
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Base:   rateLimitTransport,
				Source: tokenSource,
			},
		}
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if len(options.GraphQLEndpoint) > 0 {
		graphqlClient = githubv4.NewEnterpriseClient(options.GraphQLEndpoint, httpClient)
	}

	restClient := github.NewClient(httpClient)
	if len(options.RESTEndpoint) > 0 {
		enterpriseClient, enterpriseError := restClient.WithEnterpriseURLs(options.RESTEndpoint, options.RESTEndpoint)
		if enterpriseError != nil {
			return nil, fmt.Errorf(enterpriseClientFailureTemplateConstant, options.RESTEndpoint, enterpriseError)
		}
		restClient = enterpriseClient
	}

	clock := options.Clock
	if clock == nil {
		clock = NewSystemClock()
	}

	return &Client{
		graphqlClient: graphqlClient,
		restClient:    restClient,
		logger:        logger,
		clock:         clock,
	}, nil
}

// DeleteBranchRef removes the remote branch reference through the REST API.
// Only an HTTP 204 response counts as success.
func (client *Client) DeleteBranchRef(executionContext context.Context, owner string, repository string, branchName string) error {
	response, deletionError := client.restClient.Git.DeleteRef(
		executionContext,
		owner,
		repository,
		branchReferencePrefixConstant+branchName,
	)
	if deletionError != nil {
		statusCode := 0
		detail := deletionError.Error()
		var errorResponse *github.ErrorResponse
		if errors.As(deletionError, &errorResponse) && errorResponse.Response != nil {
			statusCode = errorResponse.Response.StatusCode
			detail = errorResponse.Message
		}
		return BranchDeletionError{
			Owner:      owner,
			Repository: repository,
			BranchName: branchName,
			StatusCode: statusCode,
			Detail:     detail,
		}
	}

	if response == nil || response.StatusCode != http.StatusNoContent {
		statusCode := 0
		if response != nil {
			statusCode = response.StatusCode
		}
		return BranchDeletionError{
			Owner:      owner,
			Repository: repository,
			BranchName: branchName,
			StatusCode: statusCode,
			Detail:     http.StatusText(statusCode),
		}
	}

	client.logger.Debug(
		remoteBranchDeletedMessageConstant,
		zap.String(deletedBranchLogFieldConstant, branchName),
		zap.Int(deletionStatusLogFieldConstant, response.StatusCode),
	)
	return nil
}
