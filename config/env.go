package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	RegionUS = "us"
	RegionEU = "eu"
	RegionAU = "au"
	RegionME = "me"
	RegionIN = "in"

	DefaultRegion = RegionUS
)

var (
	ErrInvalidRegion = fmt.Errorf("invalid region")
)

type RegionConfig struct {
	Region  string
	BaseURL string
}

// Regions returns the supported Konnect regions.
func Regions() []string {
	return []string{RegionUS, RegionEU, RegionAU, RegionME, RegionIN}
}

// RegionConfigForRegion resolves the API base URL of a region. An empty
// region means DefaultRegion. KONNECT_BASE_URL overrides the resolved URL.
func RegionConfigForRegion(region string) (*RegionConfig, error) {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}

	var config *RegionConfig
	switch region {
	case RegionUS, RegionEU, RegionAU, RegionME, RegionIN:
		config = &RegionConfig{
			Region:  region,
			BaseURL: fmt.Sprintf("https://%s.api.konghq.com/v2", region),
		}
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidRegion, region, strings.Join(Regions(), ", "))
	}

	baseURL := os.Getenv("KONNECT_BASE_URL")
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return config, nil
}
