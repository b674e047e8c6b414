package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontMatter is returned when the note content has no YAML front
// matter block at all.
var ErrNoFrontMatter = errors.New("no front matter found")

// ErrMalformedFrontMatter is returned when a front matter block exists
// but cannot be parsed as a YAML mapping.
var ErrMalformedFrontMatter = errors.New("malformed front matter")

const frontMatterDelimiter = "---"

// Note is a previously generated markdown note: its front matter fields
// and everything after the closing delimiter.
type Note struct {
	Fields map[string]interface{}
	Body   string
}

// ParseNote splits markdown content into front matter and body.
func ParseNote(content string) (*Note, error) {
	if !strings.HasPrefix(content, frontMatterDelimiter) {
		return nil, ErrNoFrontMatter
	}

	rest := content[len(frontMatterDelimiter):]
	// The closing delimiter must start its own line.
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return nil, fmt.Errorf("%w: missing closing delimiter", ErrMalformedFrontMatter)
	}

	var fields map[string]interface{}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: empty mapping", ErrMalformedFrontMatter)
	}

	body := rest[end+1+len(frontMatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	return &Note{Fields: fields, Body: body}, nil
}

// stringField returns the field as a trimmed string, or "" when absent
// or not a scalar.
func (n *Note) stringField(key string) string {
	v, ok := n.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int:
		return fmt.Sprintf("%d", t)
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", t), ".0")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// hasValue reports whether the field is present with a non-empty value.
func (n *Note) hasValue(key string) bool {
	return n.stringField(key) != ""
}
