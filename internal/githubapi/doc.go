// Package githubapi wraps the GitHub GraphQL and REST APIs for branch cleanup.
//
// It provides an authenticated Client with rate limit aware transport, a
// generic cursor-based page iterator for GraphQL connections, and locators
// for merged branches and merged pull requests.
package githubapi
