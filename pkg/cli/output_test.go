package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
)

type selfRendering struct{ n int }

func (s selfRendering) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "n=%d\n", s.n)
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"plain value", "test message", "test message\n"},
		{"text writer", selfRendering{n: 3}, "n=3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TextFormatter{}).FormatTo(&buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	data := struct {
		URL   string `json:"url"`
		Count int    `json:"count"`
	}{URL: "https://example.com/?a=1&b=2", Count: 2}

	var buf bytes.Buffer
	if err := (&JSONFormatter{Indent: true}).FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"url\"") {
		t.Errorf("output not indented: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "a=1&b=2") {
		t.Errorf("output escaped HTML: %s", buf.String())
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) should return *JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("NewFormatter(text) should return *TextFormatter")
	}
}
