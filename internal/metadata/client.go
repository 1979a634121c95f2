// Package metadata turns one queued asset into stock marketplace metadata by
// sending a single structured-output request to an LLM provider.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/providers"
)

// Client generates metadata through a provider
type Client struct {
	provider    providers.Provider
	model       string
	temperature float64
	validate    *validator.Validate
}

// NewClient returns a client that sends requests for model to provider
func NewClient(provider providers.Provider, model string, temperature float64) *Client {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Client{
		provider:    provider,
		model:       model,
		temperature: temperature,
		validate:    v,
	}
}

// response is the schema-bound shape returned by the model
type response struct {
	Title                string   `json:"title" validate:"required"`
	Description          string   `json:"description" validate:"required"`
	Keywords             []string `json:"keywords" validate:"required"`
	AdobeStockCategory   *string  `json:"adobeStockCategory"`
	ShutterstockCategory *string  `json:"shutterstockCategory"`
	VecteezyCategory     *string  `json:"vecteezyCategory"`
	One23RFCategory      *string  `json:"one23rfCategory"`
	DreamstimeCategory   *string  `json:"dreamstimeCategory"`
}

// BuildRequest builds the provider request for an asset. Vector-reference
// assets are sent as text only; everything else carries the asset inline.
func (c *Client) BuildRequest(asset models.Asset) providers.Config {
	config := providers.Config{
		Model:       c.model,
		Temperature: c.temperature,
		Schema:      ResponseSchema(),
	}
	if asset.IsVector() {
		config.Prompt = buildVectorPrompt(asset.Name)
		return config
	}
	config.Prompt = buildVisualPrompt()
	config.Inline = &providers.InlineData{MIMEType: asset.MIMEType, Data: asset.Data}
	return config
}

// Generate performs exactly one provider request for the asset and returns
// the parsed result with its filename derived from the generated title.
// Failures are returned as *GenerationError.
func (c *Client) Generate(ctx context.Context, asset models.Asset) (*models.GenerationResult, error) {
	slog.Debug("Generating metadata", "asset", asset.Name, "kind", asset.Kind, "vector", asset.IsVector())

	text, err := c.provider.Generate(ctx, c.BuildRequest(asset))
	if err != nil {
		return nil, &GenerationError{Asset: asset.Name, Reason: "remote call failed", Err: err}
	}

	result, err := c.Parse(text)
	if err != nil {
		return nil, &GenerationError{Asset: asset.Name, Reason: "invalid response", Err: err}
	}

	result.Filename = models.DeriveFilename(result.Title, asset.Name)
	slog.Info("Metadata generated", "asset", asset.Name, "filename", result.Filename, "keywords", len(result.Keywords))
	return result, nil
}

// Parse decodes and validates a model response. The returned result has no filename.
func (c *Client) Parse(text string) (*models.GenerationResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, err
	}
	resp.Title = strings.TrimSpace(resp.Title)
	resp.Description = strings.TrimSpace(resp.Description)

	if err := c.validate.Struct(resp); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			return nil, &MissingFieldsError{Fields: missing}
		}
		return nil, err
	}

	keywords := make([]string, 0, len(resp.Keywords))
	for _, kw := range resp.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return &models.GenerationResult{
		Title:                resp.Title,
		Description:          resp.Description,
		Keywords:             keywords,
		AdobeStockCategory:   deref(resp.AdobeStockCategory),
		ShutterstockCategory: deref(resp.ShutterstockCategory),
		VecteezyCategory:     deref(resp.VecteezyCategory),
		One23RFCategory:      deref(resp.One23RFCategory),
		DreamstimeCategory:   deref(resp.DreamstimeCategory),
	}, nil
}

// MissingFieldsError lists required response fields that were absent or empty
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
