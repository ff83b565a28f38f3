package branches

// RemoteCleanupStats summarizes a remote branch cleanup run.
type RemoteCleanupStats struct {
	// Stale counts remote branches with at least one merged pull request.
	Stale int
	// Deleted counts branches removed, or that would be removed in dry run mode.
	Deleted int
	// Failed counts deletion attempts that did not complete.
	Failed int
}

// LocalCleanupStats summarizes a local branch cleanup run.
type LocalCleanupStats struct {
	// Total counts every local branch inspected.
	Total int
	// Matched counts branches tracking the configured remote.
	Matched int
	// Skipped counts branches tracking a different remote.
	Skipped int
	// Errors counts branches without a usable upstream. Together with Matched
	// and Skipped it partitions Total.
	Errors int
	// Stale counts matched branches whose name corresponds to a merged pull request head.
	Stale int
	// Failed counts deletion attempts that did not complete.
	Failed int
	// MergedPullRequests counts the merged pull requests considered for matching.
	MergedPullRequests int
}
