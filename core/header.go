package asar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IntegrityAlgorithm is the algorithm name recorded in every integrity record.
const IntegrityAlgorithm = "SHA256"

// Integrity is the per-file integrity record of the header.
//
// Consumers of theme archives do not verify it, so the builder always
// emits placeholder values: an empty hash and a single empty block.
type Integrity struct {
	Algorithm string   `json:"algorithm"`
	Hash      string   `json:"hash"`
	BlockSize uint64   `json:"blockSize"`
	Blocks    []string `json:"blocks"`
}

func placeholderIntegrity(size uint64) Integrity {
	return Integrity{
		Algorithm: IntegrityAlgorithm,
		Hash:      "",
		BlockSize: size,
		Blocks:    []string{""},
	}
}

// FileInfo describes one payload in the archive header.
//
// Offset is relative to the start of the data region, not the file.
// It is encoded as a decimal string so readers that parse JSON numbers
// as doubles do not lose precision.
type FileInfo struct {
	Name      string    `json:"-"`
	Offset    uint64    `json:"offset,string"`
	Size      uint64    `json:"size"`
	Integrity Integrity `json:"integrity"`
}

// Header is the archive header: payload records in insertion order.
type Header struct {
	Files []FileInfo
}

// Lookup returns the record for name.
func (h Header) Lookup(name string) (FileInfo, bool) {
	for _, f := range h.Files {
		if f.Name == name {
			return f, true
		}
	}
	return FileInfo{}, false
}

// MarshalJSON encodes the header as {"files":{name: record, ...}}.
//
// Records keep insertion order and HTML characters are not escaped, so the
// output is byte-identical to headers written by Electron's asar tooling.
func (h Header) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(64 + len(h.Files)*128)
	buf.WriteString(`{"files":{`)
	for i, f := range h.Files {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, f.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, f); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat header, preserving the record order of the
// input. Top-level keys other than "files" are ignored.
func (h *Header) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	var files []FileInfo
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return err
		}
		if key != "files" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			name, err := stringToken(dec)
			if err != nil {
				return err
			}
			var f FileInfo
			if err := dec.Decode(&f); err != nil {
				return fmt.Errorf("decode %q: %w", name, err)
			}
			f.Name = name
			files = append(files, f)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	h.Files = files
	return nil
}

// encodeJSON appends the JSON encoding of v to buf without HTML escaping
// and without the trailing newline json.Encoder emits.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return s, nil
}
