package metadata

import (
	"fmt"

	"github.com/zepiy/stockmeta/internal/providers"
)

const siteInstructions = `Provide a title (in title case), a detailed description, a list of keywords, and also suggest the best category for this asset on each of the following stock websites: Adobe Stock, Shutterstock, Vecteezy, 123RF, and Dreamstime.`

// buildVisualPrompt is sent together with the inline asset
func buildVisualPrompt() string {
	return `Analyze this visual asset (image or video frame) and generate metadata for it as a stock asset (suitable for formats like AI, EPS, SVG, JPEG, PNG, MP4).
` + siteInstructions
}

// buildVectorPrompt describes an asset that can only be judged by its filename
func buildVectorPrompt(filename string) string {
	return fmt.Sprintf(`The user has uploaded a vector file named "%s".
Based on this filename, generate metadata for it as a stock asset (suitable for formats like AI, EPS, SVG).
Infer the content from the filename. For example, if the name is 'business-team-meeting.ai', the content is about a business meeting.
%s`, filename, siteInstructions)
}

// Response field names
const (
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldKeywords     = "keywords"
	fieldAdobeStock   = "adobeStockCategory"
	fieldShutterstock = "shutterstockCategory"
	fieldVecteezy     = "vecteezyCategory"
	field123RF        = "one23rfCategory"
	fieldDreamstime   = "dreamstimeCategory"
)

// ResponseSchema is the structured output requested from every provider.
// The five category fields are optional.
func ResponseSchema() *providers.Schema {
	str := func(desc string) *providers.Schema {
		return &providers.Schema{Type: providers.TypeString, Description: desc}
	}
	return &providers.Schema{
		Type: providers.TypeObject,
		Properties: map[string]*providers.Schema{
			fieldTitle:       str("A short, catchy, and descriptive title for the asset (5-10 words), in title case. For example: 'Majestic Ornamental Tiger Walking Through Stylized Jungle'."),
			fieldDescription: str("A detailed paragraph describing the asset's content, style, and mood. Suitable for stock photo websites."),
			fieldKeywords: {
				Type:        providers.TypeArray,
				Items:       &providers.Schema{Type: providers.TypeString},
				Description: "An array of 10-15 relevant keywords or tags, including concepts, objects, and style. For example: 'illustration', 'vector', 'business', 'teamwork'.",
			},
			fieldAdobeStock:   str("Suggest a single, best-fitting category for this asset if it were uploaded to Adobe Stock. E.g., 'Business', 'Animals', 'Technology'."),
			fieldShutterstock: str("Suggest a single, best-fitting category for this asset if it were uploaded to Shutterstock. E.g., 'Abstract', 'Beauty/Fashion', 'Industrial'."),
			fieldVecteezy:     str("Suggest a single, best-fitting category for this asset if it were uploaded to Vecteezy. E.g., 'Backgrounds', 'Icons', 'Nature'."),
			field123RF:        str("Suggest a single, best-fitting category for this asset if it were uploaded to 123RF. E.g., 'Lifestyle', 'Healthcare/Medical', 'Sports/Recreation'."),
			fieldDreamstime:   str("Suggest a single, best-fitting category for this asset if it were uploaded to Dreamstime. E.g., 'Editorial', 'Travel', 'Objects'."),
		},
		Required: []string{fieldTitle, fieldDescription, fieldKeywords},
	}
}
