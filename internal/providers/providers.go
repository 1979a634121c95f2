package providers

import (
	"context"
)

// InlineData is binary content sent alongside the prompt
type InlineData struct {
	MIMEType string
	Data     []byte
}

// Schema describes the JSON shape requested from the model.
// It marshals as a JSON Schema fragment.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Schema types
const (
	TypeObject = "object"
	TypeString = "string"
	TypeArray  = "array"
)

// Config represents one generation request for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string

	// Inline is nil for text-only requests
	Inline *InlineData

	// Schema constrains the response to JSON of this shape when set
	Schema *Schema
}

// Provider defines the interface for an LLM provider.
// Generate performs exactly one outbound request and returns the raw response text.
type Provider interface {
	Generate(ctx context.Context, config Config) (string, error)
}
