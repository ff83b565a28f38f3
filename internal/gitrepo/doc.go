// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for enumerating local branches with their
// upstream tracking references, resolving remote URLs, and deleting branches,
// along with remote URL parsing utilities consumed by the cleanup services.
package gitrepo
