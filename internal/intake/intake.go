// Package intake filters raw file picks down to the assets the queue accepts.
package intake

import (
	"strings"

	"github.com/zepiy/stockmeta/internal/models"
)

var (
	validExtensions = []string{".ai", ".eps"}
	validMIMETypes  = []string{"image/", "video/"}
)

// Candidate is a file picked by the user before validation
type Candidate struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsAcceptable reports whether a file with the given name and MIME type may be queued
func IsAcceptable(name, mimeType string) bool {
	lower := strings.ToLower(name)
	for _, ext := range validExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, prefix := range validMIMETypes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// Accept returns the acceptable candidates, preserving input order.
// Rejected files are dropped silently.
func Accept(candidates []Candidate) []Candidate {
	accepted, _ := Partition(candidates)
	return accepted
}

// Partition splits candidates into accepted and rejected, both in input order
func Partition(candidates []Candidate) (accepted, rejected []Candidate) {
	for _, c := range candidates {
		if IsAcceptable(c.Name, c.MIMEType) {
			accepted = append(accepted, c)
		} else {
			rejected = append(rejected, c)
		}
	}
	return accepted, rejected
}

// ToAssets converts accepted candidates into queue assets
func ToAssets(candidates []Candidate) []models.Asset {
	assets := make([]models.Asset, 0, len(candidates))
	for _, c := range candidates {
		assets = append(assets, models.NewAsset(c.Name, c.MIMEType, c.Data))
	}
	return assets
}
