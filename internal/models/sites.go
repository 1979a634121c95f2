package models

import (
	"fmt"
	"strings"
)

// Site identifies a stock marketplace
type Site string

const (
	SiteAdobeStock   Site = "adobe"
	SiteShutterstock Site = "shutterstock"
	SiteVecteezy     Site = "vecteezy"
	Site123RF        Site = "123rf"
	SiteDreamstime   Site = "dreamstime"
)

// Sites lists every supported marketplace in display order
var Sites = []Site{SiteAdobeStock, SiteShutterstock, SiteVecteezy, Site123RF, SiteDreamstime}

// DisplayName is the human readable marketplace name
func (s Site) DisplayName() string {
	switch s {
	case SiteAdobeStock:
		return "Adobe Stock"
	case SiteShutterstock:
		return "Shutterstock"
	case SiteVecteezy:
		return "Vecteezy"
	case Site123RF:
		return "123RF"
	case SiteDreamstime:
		return "Dreamstime"
	}
	return string(s)
}

// FileLabel is the marketplace name as used in exported CSV filenames
func (s Site) FileLabel() string {
	return strings.ReplaceAll(s.DisplayName(), " ", "_")
}

// ParseSite resolves a site from its key or display name, case-insensitively
func ParseSite(value string) (Site, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, s := range Sites {
		if v == string(s) || v == strings.ToLower(s.DisplayName()) || v == strings.ToLower(s.FileLabel()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown site: %s", value)
}
