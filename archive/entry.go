package archive

import (
	"strings"
	"time"
)

// Compression methods understood by the JAR reader and writer.
const (
	Store   uint16 = 0
	Deflate uint16 = 8
)

// Entry is one named unit of an archive. Modified, Method, Comment and
// Extra are metadata carried through a transformation unchanged.
type Entry struct {
	Modified time.Time
	Name     string
	Comment  string
	Data     []byte
	// Extra holds the zip extra fields other than the timestamp and zip64
	// records, which the writer regenerates.
	Extra  []byte
	Method uint16
}

// IsClass reports whether the entry holds a compiled class.
func (e Entry) IsClass() bool {
	return strings.HasSuffix(e.Name, ".class") && !e.IsDir()
}

// IsDir reports whether the entry is a directory marker.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// ClassTransformer rewrites a single class entry. Implementations must be
// safe for concurrent use: the driver calls TransformClass from several
// goroutines at once.
type ClassTransformer interface {
	TransformClass(Entry) (Entry, error)
}

// ClassTransformerFunc adapts a function to ClassTransformer.
type ClassTransformerFunc func(Entry) (Entry, error)

// TransformClass calls f(e).
func (f ClassTransformerFunc) TransformClass(e Entry) (Entry, error) {
	return f(e)
}
