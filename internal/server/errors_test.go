package server

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kong/mcp-konnect/internal/konnect"
)

func TestMCP_Server_FormatToolError(t *testing.T) {
	t.Parallel()

	t.Run("generic error keeps category tips", func(t *testing.T) {
		t.Parallel()

		got := formatToolError(categoryInventory, errors.New("boom"))
		lines := strings.Split(got, "\n")
		require.Equal(t, "Error: boom", lines[0])
		require.Equal(t, "", lines[1])
		require.Equal(t, "Troubleshooting tips:", lines[2])
		require.Len(t, lines, 3+len(troubleshootingTips[categoryInventory]))
		require.False(t, strings.HasSuffix(got, "\n"))
	})

	t.Run("wrapped auth error adds credential tip", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("failed to query requests: %w", &konnect.APIError{StatusCode: 403})
		got := formatToolError(categoryAnalytics, err)
		require.Contains(t, got, "Error: failed to query requests: API error (status 403)")
		require.Contains(t, got, "- The Konnect API rejected the credentials.")
	})

	t.Run("server errors do not blame credentials", func(t *testing.T) {
		t.Parallel()

		got := formatToolError(categoryAnalytics, &konnect.APIError{StatusCode: 502, Detail: "bad gateway"})
		require.NotContains(t, got, "rejected the credentials")
		require.Len(t, strings.Split(got, "\n"), 3+len(troubleshootingTips[categoryAnalytics]))
	})

	t.Run("tips are not shared between calls", func(t *testing.T) {
		t.Parallel()

		_ = tipsFor(categoryControlPlanes, &konnect.NetworkError{Err: errors.New("timeout")})
		require.Len(t, troubleshootingTips[categoryControlPlanes], 3)
	})
}
