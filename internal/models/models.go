package models

import (
	"strings"
)

// Kind classifies an uploaded asset
type Kind string

const (
	KindImage  Kind = "image"
	KindVideo  Kind = "video"
	KindVector Kind = "vector"
)

// DefaultExtension is used when the source filename carries no extension
const DefaultExtension = "jpg"

// vectorExtensions have no renderable preview and are described from their filename alone
var vectorExtensions = []string{".ai", ".eps"}

// Asset represents one uploaded item in the processing queue.
// Assets are immutable once queued.
type Asset struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Kind     Kind   `json:"kind"`
	Data     []byte `json:"-"`
}

// NewAsset builds an asset and derives its kind from the name and MIME type
func NewAsset(name, mimeType string, data []byte) Asset {
	return Asset{
		Name:     name,
		MIMEType: mimeType,
		Kind:     Classify(name, mimeType),
		Data:     data,
	}
}

// IsVector reports whether the asset must be described from its filename
func (a Asset) IsVector() bool {
	return IsVectorName(a.Name)
}

// Extension returns the original extension without the dot, or DefaultExtension
func (a Asset) Extension() string {
	return Extension(a.Name)
}

// IsVectorName reports whether the filename has a vector-reference extension
func IsVectorName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range vectorExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Classify derives the display kind for an asset
func Classify(name, mimeType string) Kind {
	switch {
	case IsVectorName(name):
		return KindVector
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	default:
		return KindVector
	}
}

// Extension returns the text after the last dot of name, or DefaultExtension if there is none
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return DefaultExtension
	}
	return name[i+1:]
}

// DeriveFilename builds the export filename from a generated title
func DeriveFilename(title, sourceName string) string {
	return title + "." + Extension(sourceName)
}

// GenerationResult is the AI-produced metadata for one asset.
// A result is replaced wholesale, never edited in place.
type GenerationResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Filename    string   `json:"filename"`

	AdobeStockCategory   string `json:"adobeStockCategory,omitempty"`
	ShutterstockCategory string `json:"shutterstockCategory,omitempty"`
	VecteezyCategory     string `json:"vecteezyCategory,omitempty"`
	One23RFCategory      string `json:"one23rfCategory,omitempty"`
	DreamstimeCategory   string `json:"dreamstimeCategory,omitempty"`
}

// Category returns the suggested category for a marketplace, empty when none was suggested
func (r *GenerationResult) Category(site Site) string {
	if r == nil {
		return ""
	}
	switch site {
	case SiteAdobeStock:
		return r.AdobeStockCategory
	case SiteShutterstock:
		return r.ShutterstockCategory
	case SiteVecteezy:
		return r.VecteezyCategory
	case Site123RF:
		return r.One23RFCategory
	case SiteDreamstime:
		return r.DreamstimeCategory
	}
	return ""
}
