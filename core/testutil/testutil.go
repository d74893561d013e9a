// Package testutil provides a minimal conforming ASAR reader for tests.
//
// It is written independently of the builder so round-trip tests exercise
// the wire format rather than shared code.
package testutil

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
)

// File is one payload parsed from an archive.
type File struct {
	Name      string
	Offset    uint64
	Size      uint64
	Integrity json.RawMessage
}

// Archive is a parsed archive.
type Archive struct {
	// SizeFields holds the four uint32 values of the 16-byte prefix.
	SizeFields [4]uint32
	HeaderJSON []byte
	Files      []File
	// Data is the data region: everything after the header pickle.
	Data []byte
}

type rawFile struct {
	Offset    string          `json:"offset"`
	Size      uint64          `json:"size"`
	Integrity json.RawMessage `json:"integrity"`
}

// Parse reads the 16-byte prefix, the header JSON, and slices the data
// region. It fails if the prefix is inconsistent or a payload lies outside
// the data region.
func Parse(data []byte) (*Archive, error) {
	if len(data) < 16 {
		return nil, errors.New("archive shorter than size header")
	}
	var a Archive
	for i := range a.SizeFields {
		a.SizeFields[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	n := uint64(a.SizeFields[3])
	if a.SizeFields[0] != 4 {
		return nil, fmt.Errorf("size pickle payload = %d", a.SizeFields[0])
	}
	dataStart := 8 + uint64(a.SizeFields[1])
	if uint64(len(data)) < dataStart || 16+n > dataStart {
		return nil, errors.New("header exceeds archive")
	}
	a.HeaderJSON = data[16 : 16+n]
	a.Data = data[dataStart:]

	files, err := decodeFiles(a.HeaderJSON)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.Offset+f.Size > uint64(len(a.Data)) {
			return nil, fmt.Errorf("%s: [%d, %d) outside data region of %d bytes", f.Name, f.Offset, f.Offset+f.Size, len(a.Data))
		}
	}
	a.Files = files
	return &a, nil
}

// MustParse parses data and fails the test on error.
func MustParse(tb testing.TB, data []byte) *Archive {
	tb.Helper()
	a, err := Parse(data)
	if err != nil {
		tb.Fatalf("parse archive: %v", err)
	}
	return a
}

// Names returns payload names in header order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.Files))
	for i, f := range a.Files {
		names[i] = f.Name
	}
	return names
}

// File returns the header record for name.
func (a *Archive) File(name string) (File, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// ReadFile returns the payload bytes for name.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, ok := a.File(name)
	if !ok {
		return nil, fmt.Errorf("%s: not found", name)
	}
	return a.Data[f.Offset : f.Offset+f.Size], nil
}

// decodeFiles decodes {"files":{...}} keeping key order.
func decodeFiles(headerJSON []byte) ([]File, error) {
	var top struct {
		Files json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(headerJSON, &top); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if top.Files == nil {
		return nil, errors.New("header has no files object")
	}

	dec := json.NewDecoder(bytes.NewReader(top.Files))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var files []File
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var rf rawFile
		if err := dec.Decode(&rf); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		off, err := strconv.ParseUint(rf.Offset, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: offset %q: %w", name, rf.Offset, err)
		}
		files = append(files, File{Name: name, Offset: off, Size: rf.Size, Integrity: rf.Integrity})
	}
	return files, nil
}
