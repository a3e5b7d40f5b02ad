package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered big-endian writing for class file encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// NewWriterSize creates a new Writer with capacity preallocated.
func NewWriterSize(n int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, n))}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// U1 writes a single byte.
func (w *Writer) U1(b uint8) {
	w.buf.WriteByte(b)
}

// U2 writes a big-endian uint16.
func (w *Writer) U2(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// U4 writes a big-endian uint32.
func (w *Writer) U4(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// U8 writes a big-endian uint64.
func (w *Writer) U8(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteString writes the raw bytes of s.
func (w *Writer) WriteString(s string) {
	w.buf.WriteString(s)
}
