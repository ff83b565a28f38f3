package branches

import (
	"strings"

	"github.com/prsweep/prsweep/internal/gitrepo"
)

const (
	remoteTrackingPrefixConstant = "refs/remotes/"
	referenceSeparatorConstant   = "/"
)

// BranchDisposition classifies a local branch relative to the configured remote.
type BranchDisposition int

// Branch dispositions.
const (
	// BranchMatched tracks the configured remote.
	BranchMatched BranchDisposition = iota
	// BranchSkipped tracks a different remote.
	BranchSkipped
	// BranchErrored has no upstream or an upstream that is not a remote tracking reference.
	BranchErrored
)

// ClassifiedBranch pairs a local branch with its disposition.
type ClassifiedBranch struct {
	Branch      gitrepo.LocalBranch
	Disposition BranchDisposition
}

// ClassifyBranches partitions local branches by how their upstream relates to
// the named remote. Output order follows input order.
func ClassifyBranches(localBranches []gitrepo.LocalBranch, remoteName string) []ClassifiedBranch {
	matchedPrefix := remoteTrackingPrefixConstant + remoteName + referenceSeparatorConstant

	classifiedBranches := make([]ClassifiedBranch, 0, len(localBranches))
	for _, localBranch := range localBranches {
		classifiedBranches = append(classifiedBranches, ClassifiedBranch{
			Branch:      localBranch,
			Disposition: classifyUpstream(localBranch.UpstreamRefName, matchedPrefix),
		})
	}
	return classifiedBranches
}

func classifyUpstream(upstreamRefName string, matchedPrefix string) BranchDisposition {
	trimmedUpstream := strings.TrimSpace(upstreamRefName)
	if len(trimmedUpstream) == 0 {
		return BranchErrored
	}
	if !strings.HasPrefix(trimmedUpstream, remoteTrackingPrefixConstant) {
		return BranchErrored
	}
	if !strings.HasPrefix(trimmedUpstream, matchedPrefix) {
		return BranchSkipped
	}
	return BranchMatched
}
