package intake

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMIME sniffs the MIME type of data, without parameters
func DetectMIME(data []byte) string {
	m := mimetype.Detect(data).String()
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

// LoadPaths reads files and directories from disk into candidates.
// Directories are walked recursively in lexical order, like a folder pick.
func LoadPaths(paths []string) ([]Candidate, error) {
	var candidates []Candidate
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			c, err := loadFile(p)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, c)
			continue
		}

		var files []string
		err = filepath.WalkDir(p, func(fp string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			files = append(files, fp)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
		sort.Strings(files)

		for _, fp := range files {
			c, err := loadFile(fp)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, c)
		}
	}

	slog.Debug("Loaded candidate files", "count", len(candidates))
	return candidates, nil
}

func loadFile(p string) (Candidate, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return Candidate{
		Name:     filepath.Base(p),
		MIMEType: DetectMIME(data),
		Data:     data,
	}, nil
}

// Fetcher downloads remote assets
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a fetcher that reads at most maxBytes per asset
func NewFetcher(maxBytes int64) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: maxBytes,
	}
}

// Fetch downloads one asset by URL. The MIME type comes from the response
// header when it names an image or video, otherwise it is sniffed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Candidate, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Candidate{}, fmt.Errorf("invalid asset URL: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Candidate{}, fmt.Errorf("failed to download asset: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to read asset data: %w", err)
	}
	if int64(len(data)) > f.MaxBytes {
		return Candidate{}, fmt.Errorf("asset too large (max %d bytes)", f.MaxBytes)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "image.jpg"
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)
	if !IsAcceptable("", mimeType) {
		mimeType = DetectMIME(data)
	}

	return Candidate{Name: name, MIMEType: mimeType, Data: data}, nil
}
