package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"datalens/domain/report"
)

// Format is an export encoding for a report result.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts the format names and the common file extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, markdown or html)", s)
}

// ContentType is the HTTP media type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/json"
}

// Encode serializes a result in the requested format.
func Encode(res *report.Result, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(res, "", "  ")
	case FormatMarkdown:
		return []byte(Markdown(res)), nil
	case FormatHTML:
		return HTML(res), nil
	}
	return nil, fmt.Errorf("unknown report format %q", f)
}
