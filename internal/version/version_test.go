package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringAppendsShortCommit(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = "abcdef1234567890"
	assert.Equal(t, Version+"-abcdef12", String())
}

func TestStringFullOmitsUnknownFields(t *testing.T) {
	origCommit, origBranch, origBuild := GitCommit, GitBranch, BuildTime
	defer func() { GitCommit, GitBranch, BuildTime = origCommit, origBranch, origBuild }()

	GitCommit, GitBranch, BuildTime = "unknown", "unknown", "unknown"
	assert.Equal(t, "Version="+Version, StringFull())
}
