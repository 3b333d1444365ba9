package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMCP_FormatRFC3339Millis(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2025, 3, 4, 7, 8, 9, 45_678_000, loc)
	require.Equal(t, "2025-03-04T05:08:09.045Z", formatRFC3339Millis(ts))
}
