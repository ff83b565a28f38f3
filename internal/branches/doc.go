// Package branches reconciles git branches against GitHub merged pull request
// records and removes branches confirmed merged.
//
// Squash merges leave no ancestry trail, so merge detection relies on GitHub
// metadata instead of git history. The package offers two cleanup services:
// RemoteCleanupService removes remote branches whose merged pull requests are
// recorded on GitHub, and LocalCleanupService removes local branches whose
// upstream tracks the configured remote and whose name matches a merged pull
// request head.
package branches
