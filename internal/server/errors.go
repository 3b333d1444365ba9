package server

import (
	"errors"
	"strings"

	"github.com/kong/mcp-konnect/internal/analytics"
	"github.com/kong/mcp-konnect/internal/konnect"
)

type toolCategory string

const (
	categoryAnalytics     toolCategory = "analytics"
	categoryInventory     toolCategory = "inventory"
	categoryControlPlanes toolCategory = "controlPlanes"
)

var troubleshootingTips = map[toolCategory][]string{
	categoryAnalytics: {
		"Verify that your API key is valid and has permission to read API request analytics.",
		"Check that the time range, status codes and entity IDs are valid.",
		"Analytics data may take a few minutes to appear after traffic is proxied.",
		"Confirm that the configured region matches the region of your organization.",
	},
	categoryInventory: {
		"Verify that your API key is valid and has read access to the control plane.",
		"Check that the control plane ID exists (use list_control_planes to find it).",
		"Check that pageSize and offset come from a previous response.",
		"Confirm that the configured region matches the region of the control plane.",
	},
	categoryControlPlanes: {
		"Verify that your API key is valid and has permission to list control planes.",
		"Check that pageSize and pageNumber are positive.",
		"Confirm that the configured region matches the region of your organization.",
	},
}

// formatToolError renders a tool failure as the text payload of an error
// result.
func formatToolError(category toolCategory, err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())
	b.WriteString("\n\nTroubleshooting tips:\n")
	for _, tip := range tipsFor(category, err) {
		b.WriteString("- ")
		b.WriteString(tip)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func tipsFor(category toolCategory, err error) []string {
	var (
		apiErr *konnect.APIError
		netErr *konnect.NetworkError
	)
	tips := troubleshootingTips[category]
	switch {
	case errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403):
		return append([]string{"The Konnect API rejected the credentials. Set KONNECT_ACCESS_TOKEN to a valid personal or system access token."}, tips...)
	case errors.As(err, &netErr):
		return append([]string{"The Konnect API could not be reached. Check network connectivity and the configured base URL."}, tips...)
	case errors.Is(err, analytics.ErrConflictingOutcome):
		return append([]string{"Set at most one of successOnly and failureOnly."}, tips...)
	}
	return tips
}
