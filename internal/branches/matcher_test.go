package branches_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prsweep/prsweep/internal/branches"
	"github.com/prsweep/prsweep/internal/gitrepo"
)

func TestClassifyBranches(testInstance *testing.T) {
	testCases := []struct {
		name                string
		upstreamRefName     string
		expectedDisposition branches.BranchDisposition
	}{
		{
			name:                "configured_remote_matches",
			upstreamRefName:     "refs/remotes/origin/feature-x",
			expectedDisposition: branches.BranchMatched,
		},
		{
			name:                "other_remote_is_skipped",
			upstreamRefName:     "refs/remotes/fork/feature-x",
			expectedDisposition: branches.BranchSkipped,
		},
		{
			name:                "missing_upstream_is_errored",
			upstreamRefName:     "",
			expectedDisposition: branches.BranchErrored,
		},
		{
			name:                "non_remote_upstream_is_errored",
			upstreamRefName:     "refs/heads/main",
			expectedDisposition: branches.BranchErrored,
		},
		{
			name:                "remote_name_prefix_collision_is_skipped",
			upstreamRefName:     "refs/remotes/origin-backup/feature-x",
			expectedDisposition: branches.BranchSkipped,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			classifiedBranches := branches.ClassifyBranches([]gitrepo.LocalBranch{
				{RefName: "refs/heads/feature-x", Name: "feature-x", UpstreamRefName: testCase.upstreamRefName},
			}, "origin")

			require.Len(testInstance, classifiedBranches, 1)
			require.Equal(testInstance, testCase.expectedDisposition, classifiedBranches[0].Disposition)
		})
	}
}

func TestClassifyBranchesPreservesInputOrder(testInstance *testing.T) {
	localBranches := []gitrepo.LocalBranch{
		{Name: "alpha", UpstreamRefName: "refs/remotes/origin/alpha"},
		{Name: "beta", UpstreamRefName: ""},
		{Name: "gamma", UpstreamRefName: "refs/remotes/fork/gamma"},
	}

	classifiedBranches := branches.ClassifyBranches(localBranches, "origin")
	require.Len(testInstance, classifiedBranches, 3)
	require.Equal(testInstance, "alpha", classifiedBranches[0].Branch.Name)
	require.Equal(testInstance, "beta", classifiedBranches[1].Branch.Name)
	require.Equal(testInstance, "gamma", classifiedBranches[2].Branch.Name)
}
