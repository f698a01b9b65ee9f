package build

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewBuildFallsBackToVCS(t *testing.T) {
	b := newBuild("", "", "dev", "https://example.com/repo", settings{
		revision:  "0123456789abcdef",
		time:      "2024-05-01T10:00:00Z",
		modified:  true,
		goVersion: "go1.22.3",
	})

	require.Equal(t, "0123456789abcdef", b.Commit)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), b.Date)
	require.Equal(t, "https://example.com/repo/tree/0123456789abcdef", b.CommitURL)
	require.Equal(t, "dev (0123456-dirty)", b.String())
}

func TestNewBuildPrefersStamped(t *testing.T) {
	b := newBuild("abc", "", "v1.0.0", "", settings{revision: "def"})

	require.Equal(t, "abc", b.Commit)
	require.Empty(t, b.CommitURL)
	require.True(t, b.Date.IsZero())
	require.Equal(t, "v1.0.0 (abc)", b.String())
}

func TestNewBuildWithoutCommit(t *testing.T) {
	require.Equal(t, "dev", newBuild("", "", "dev", "", settings{}).String())
}
