package asar

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
)

// Entry is a payload added to a Builder.
type Entry struct {
	FileInfo

	// Data is the payload content. It is owned by the Builder and must not
	// be modified.
	Data []byte
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger for builder events.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// Builder accumulates named payloads and serializes them into an archive.
//
// Payloads are laid out in insertion order. A Builder is not safe for
// concurrent use; create one per archive.
type Builder struct {
	entries []Entry
	names   map[string]int
	offset  uint64
	logger  *slog.Logger
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{names: make(map[string]int)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// log returns the logger, falling back to a discard logger if nil.
func (b *Builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// Add appends a payload under name.
//
// The payload is recorded at the current end of the data region and the
// data is copied, so the caller may reuse its buffer. Empty payloads are
// allowed and occupy no space.
func (b *Builder) Add(name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := b.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	size := uint64(len(data))
	if size > math.MaxUint64-b.offset {
		return ErrSizeOverflow
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	b.names[name] = len(b.entries)
	b.entries = append(b.entries, Entry{
		FileInfo: FileInfo{
			Name:      name,
			Offset:    b.offset,
			Size:      size,
			Integrity: placeholderIntegrity(size),
		},
		Data: buf,
	})
	b.log().Debug("payload added", "name", name, "offset", b.offset, "size", size)
	b.offset += size
	return nil
}

// ValidateName reports whether name can be used as a payload name.
// Archives are flat, so a name must be a single non-empty path element.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrNestedPath, name)
	}
	return nil
}

// Len returns the number of payloads added.
func (b *Builder) Len() int {
	return len(b.entries)
}

// DataSize returns the total size of the data region.
func (b *Builder) DataSize() uint64 {
	return b.offset
}

// Entries returns the payloads in insertion order.
// The returned slice is a copy; the Data slices are shared.
func (b *Builder) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Header returns the archive header for the payloads added so far.
func (b *Builder) Header() Header {
	files := make([]FileInfo, len(b.entries))
	for i, e := range b.entries {
		files[i] = e.FileInfo
		files[i].Integrity.Blocks = []string{""}
	}
	return Header{Files: files}
}

// HeaderJSON returns the encoded header.
func (b *Builder) HeaderJSON() ([]byte, error) {
	data, err := b.Header().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return data, nil
}

// Finalize serializes the archive: size header, header JSON, then every
// payload in insertion order.
//
// Finalize does not modify the Builder; calling it again without further
// Add calls returns identical bytes.
func (b *Builder) Finalize() ([]byte, error) {
	hdr, prefix, err := b.prefix()
	if err != nil {
		return nil, err
	}
	if b.offset > uint64(math.MaxInt-len(prefix)-len(hdr)) {
		return nil, ErrSizeOverflow
	}

	out := make([]byte, 0, len(prefix)+len(hdr)+int(b.offset)) //nolint:gosec // overflow checked above
	out = append(out, prefix...)
	out = append(out, hdr...)
	for _, e := range b.entries {
		out = append(out, e.Data...)
	}

	b.log().Debug("archive finalized", "payloads", len(b.entries), "header_size", len(hdr), "size", len(out))
	return out, nil
}

// WriteTo writes the same bytes Finalize returns to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	hdr, prefix, err := b.prefix()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, chunk := range [][]byte{prefix, hdr} {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	for _, e := range b.entries {
		n, err := w.Write(e.Data)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	return total, nil
}

// prefix encodes the header and its 16-byte size header.
func (b *Builder) prefix() (hdr, prefix []byte, err error) {
	hdr, err = b.HeaderJSON()
	if err != nil {
		return nil, nil, err
	}
	n, err := headerLen(len(hdr))
	if err != nil {
		return nil, nil, err
	}
	prefix = make([]byte, SizeHeaderLen)
	putSizeHeader(prefix, n)
	return hdr, prefix, nil
}
