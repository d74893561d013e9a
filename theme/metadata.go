package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Format identifies which header style a stylesheet used.
type Format uint8

const (
	// FormatModern is the /** @key value */ block header.
	FormatModern Format = iota
	// FormatLegacy is the //META{...}*// single-line header.
	FormatLegacy
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatModern:
		return "modern"
	case FormatLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// Field is one metadata key and its value.
type Field struct {
	Key   string
	Value string
}

// Metadata holds header fields in the order they first appeared.
type Metadata struct {
	Format Format
	fields []Field
	index  map[string]int
}

// Set stores value under key. Setting an existing key replaces its value
// but keeps its original position.
func (m *Metadata) Set(key, value string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.fields[i].Value = value
		return
	}
	m.index[key] = len(m.fields)
	m.fields = append(m.fields, Field{Key: key, Value: value})
}

// Get returns the value for key.
func (m Metadata) Get(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.fields[i].Value, true
}

// Fields returns a copy of the fields in order.
func (m Metadata) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of fields.
func (m Metadata) Len() int {
	return len(m.fields)
}

// MarshalJSON encodes the fields as a JSON object in field order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var (
	// fieldLine matches " * @key value" lines inside a block header. A
	// value ends at any line terminator, so CR-only files and U+2028/U+2029
	// separators split fields the same way LF does.
	fieldLine = regexp.MustCompile(`\s*\*\s*@([a-zA-Z]+)\s*([^\n\r\x{2028}\x{2029}]*)`)

	// legacyHeader matches //META{...}*// on a single line.
	legacyHeader = regexp.MustCompile(`//META([^\n\r\x{2028}\x{2029}]+?)\*//`)
)

// Extract reads the metadata header of a stylesheet.
//
// A block header must be the first thing in the file apart from
// whitespace. When there is none, a legacy //META header anywhere in the
// file is used. If neither is present Extract returns a
// *MetadataParseError wrapping ErrNoMetadata.
func Extract(css, fileName string) (Metadata, error) {
	if block, ok := blockHeader(css); ok {
		var md Metadata
		md.Format = FormatModern
		for _, m := range fieldLine.FindAllStringSubmatch(block, -1) {
			md.Set(m[1], strings.TrimSpace(m[2]))
		}
		return md, nil
	}

	m := legacyHeader.FindStringSubmatch(css)
	if m == nil {
		return Metadata{}, &MetadataParseError{FileName: fileName, Err: ErrNoMetadata}
	}
	md, err := parseLegacy(m[1])
	if err != nil {
		return Metadata{}, &MetadataParseError{FileName: fileName, Err: err}
	}
	return md, nil
}

// blockHeader returns the text of a leading /** ... comment up to, but
// not including, the closing */. The comment body must be non-empty.
func blockHeader(css string) (string, bool) {
	rest := strings.TrimLeftFunc(css, isSpace)
	if !strings.HasPrefix(rest, "/**") || len(rest) < 4 {
		return "", false
	}
	end := strings.Index(rest[4:], "*/")
	if end < 0 {
		return "", false
	}
	return rest[:4+end], true
}

// parseLegacy decodes the JSON object of a //META header. String values
// are kept as-is; other values keep their JSON encoding.
func parseLegacy(raw string) (Metadata, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Metadata{}, fmt.Errorf("legacy header: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Metadata{}, fmt.Errorf("legacy header: expected object, got %v", tok)
	}

	md := Metadata{Format: FormatLegacy}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Metadata{}, fmt.Errorf("legacy header: %w", err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Metadata{}, fmt.Errorf("legacy header %q: %w", key, err)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			md.Set(key, s)
			continue
		}
		md.Set(key, string(raw))
	}
	if _, err := dec.Token(); err != nil {
		return Metadata{}, fmt.Errorf("legacy header: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Metadata{}, errors.New("legacy header: trailing data after object")
	}
	return md, nil
}

// isSpace reports Unicode white space, plus the byte order mark editors
// leave at the start of a file.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// encodeJSON appends the JSON encoding of v to buf without HTML escaping
// and without a trailing newline.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
