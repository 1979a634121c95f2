package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zepiy/stockmeta/internal/models"
)

// ManifestHeader is the consolidated manifest column order
var ManifestHeader = []string{
	"Title", "Description", "Keywords", "Filename",
	"Adobe Stock Category", "Shutterstock Category", "Vecteezy Category",
	"123RF Category", "Dreamstime Category",
}

const (
	manifestKeywordSep = "; "
	siteKeywordSep     = ","
)

// EscapeField wraps a field in double quotes and doubles embedded quotes.
// Every field is quoted regardless of content, which encoding/csv does not do.
func EscapeField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FormatRow escapes and joins fields into one CSV line
func FormatRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeField(f)
	}
	return strings.Join(escaped, ",")
}

// ManifestRow returns the consolidated manifest fields for a result
func ManifestRow(r *models.GenerationResult) []string {
	return []string{
		r.Title,
		r.Description,
		strings.Join(r.Keywords, manifestKeywordSep),
		r.Filename,
		r.AdobeStockCategory,
		r.ShutterstockCategory,
		r.VecteezyCategory,
		r.One23RFCategory,
		r.DreamstimeCategory,
	}
}

// BuildManifest renders the consolidated CSV for results, header first, rows
// joined by newlines with no trailing newline
func BuildManifest(results []*models.GenerationResult) string {
	lines := make([]string, 0, len(results)+1)
	lines = append(lines, FormatRow(ManifestHeader))
	for _, r := range results {
		lines = append(lines, FormatRow(ManifestRow(r)))
	}
	return strings.Join(lines, "\n")
}

// SiteHeader returns the per-site CSV columns
func SiteHeader(site models.Site) []string {
	switch site {
	case models.SiteAdobeStock:
		return []string{"Filename", "Title", "Keywords", "Category"}
	case models.SiteShutterstock:
		return []string{"Filename", "Description", "Keywords", "Category 1"}
	default:
		return []string{"Title", "Description", "Keywords", "Category"}
	}
}

// SiteRow returns the per-site CSV fields. Shutterstock takes the title in
// its Description column.
func SiteRow(site models.Site, r *models.GenerationResult, filename string) []string {
	keywords := strings.Join(r.Keywords, siteKeywordSep)
	category := r.Category(site)
	switch site {
	case models.SiteAdobeStock, models.SiteShutterstock:
		return []string{filename, r.Title, keywords, category}
	default:
		return []string{r.Title, r.Description, keywords, category}
	}
}

var lastExtension = regexp.MustCompile(`\.[^/.]+$`)

// SiteCSVName is the download name of a per-site CSV: the base filename
// without its last extension, then the site label
func SiteCSVName(site models.Site, filename string) string {
	base := lastExtension.ReplaceAllString(filename, "")
	return base + "_" + site.FileLabel() + ".csv"
}

// SiteCSV renders the per-site CSV for one result. filename is the editable
// asset filename; when empty the derived filename is used.
func SiteCSV(site models.Site, r *models.GenerationResult, filename string) (name string, content []byte, err error) {
	if r == nil {
		return "", nil, &ExportError{Op: "site csv", Err: ErrNotGenerated}
	}
	if !knownSite(site) {
		return "", nil, &ExportError{Op: "site csv", Err: fmt.Errorf("unknown site: %s", site)}
	}
	if filename == "" {
		filename = r.Filename
	}
	body := FormatRow(SiteHeader(site)) + "\n" + FormatRow(SiteRow(site, r, filename))
	return SiteCSVName(site, filename), []byte(body), nil
}

func knownSite(site models.Site) bool {
	for _, s := range models.Sites {
		if s == site {
			return true
		}
	}
	return false
}
