package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zepiy/stockmeta/internal/models"
)

func TestParseSites(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []models.Site
		wantErr  bool
	}{
		{"all", []string{"all"}, models.Sites, false},
		{"dedupe", []string{"adobe", "Adobe Stock", "123rf"}, []models.Site{models.SiteAdobeStock, models.Site123RF}, false},
		{"unknown", []string{"getty"}, nil, true},
		{"empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSites(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"#", "Source"}, [][]string{{"1", "a.png"}, {"2"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "SOURCE") && !strings.Contains(out, "Source") {
		t.Errorf("Expected header in output:\n%s", out)
	}
	if !strings.Contains(out, "a.png") {
		t.Errorf("Expected row in output:\n%s", out)
	}
	if renderTable(&buf, nil, nil, nil) != "" {
		t.Error("Expected empty output without headers")
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "text", false},
		{"debug", "json", false},
		{"loud", "text", true},
		{"info", "xml", true},
	}
	for _, tt := range tests {
		if err := setupLogger(tt.level, tt.format); (err != nil) != tt.wantErr {
			t.Errorf("setupLogger(%q, %q): expected error=%v, got %v", tt.level, tt.format, tt.wantErr, err)
		}
	}
	_ = setupLogger("info", "text")
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"generate", "site-csv", "serve"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("Expected %s subcommand, got %v", name, err)
		}
	}
}
