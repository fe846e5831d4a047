// Package frontmatter reads and writes the YAML header of content documents.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a frontmatter
// block with "---" but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// Meta holds the frontmatter fields that influence navigation.
type Meta struct {
	ID              string   `yaml:"id,omitempty"`
	Title           string   `yaml:"title,omitempty"`
	SidebarLabel    string   `yaml:"sidebar_label,omitempty"`
	SidebarPosition *float64 `yaml:"sidebar_position,omitempty"`
	Fingerprint     string   `yaml:"fingerprint,omitempty"`
}

// Split separates the frontmatter block from the Markdown body. When the
// document has no frontmatter, had is false and body is the whole input.
// Both LF and CRLF line endings are accepted.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := newline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// a closing delimiter on the last line without a trailing newline
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-3], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}

// Decode parses raw frontmatter (without delimiters).
func Decode(fm []byte) (Meta, error) {
	var m Meta
	if len(bytes.TrimSpace(fm)) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(fm, &m); err != nil {
		return Meta{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return m, nil
}

// Parse splits content and decodes its frontmatter.
func Parse(content []byte) (Meta, []byte, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had {
		return Meta{}, body, nil
	}
	m, err := Decode(fm)
	if err != nil {
		return Meta{}, nil, err
	}
	return m, body, nil
}

func newline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
