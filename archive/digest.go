package archive

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// String returns the hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for logs and summaries.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:6])
}

type domainKey [32]byte

// Domain keys are ASCII names zero-padded to 32 bytes.
var (
	entryDomainKey = domainKey{
		'c', 'l', 'a', 's', 's', '-', 'w', 'i', 'd', 'e', 'n', 'e', 'r', '.',
		'e', 'n', 't', 'r', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	archiveDomainKey = domainKey{
		'c', 'l', 'a', 's', 's', '-', 'w', 'i', 'd', 'e', 'n', 'e', 'r', '.',
		'a', 'r', 'c', 'h', 'i', 'v', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

func newHasher(key domainKey) *blake3.Hasher {
	// NewKeyed only fails for keys that are not 32 bytes.
	h, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return h
}

// HashEntry hashes the content of one entry.
func HashEntry(e Entry) Hash {
	h := newHasher(entryDomainKey)
	h.Write(e.Data)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint hashes an ordered sequence of entries: names, order and
// content all contribute. Timestamps and compression do not.
func Fingerprint(entries []Entry) Hash {
	h := newHasher(archiveDomainKey)
	var lenBuf [8]byte
	for _, e := range entries {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(e.Name)))
		h.Write(lenBuf[:])
		h.Write([]byte(e.Name))
		eh := HashEntry(e)
		h.Write(eh[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Report summarizes one archive pass.
type Report struct {
	Input   Hash
	Output  Hash
	Entries int
	Classes int
	Changed int
}

// Diff compares an archive before and after a pass. in and out must be the
// same length with matching names, as produced by Process.
func Diff(in, out []Entry) Report {
	r := Report{
		Input:   Fingerprint(in),
		Output:  Fingerprint(out),
		Entries: len(in),
	}
	for i := range in {
		if in[i].IsClass() {
			r.Classes++
		}
		if i < len(out) && HashEntry(in[i]) != HashEntry(out[i]) {
			r.Changed++
		}
	}
	return r
}
