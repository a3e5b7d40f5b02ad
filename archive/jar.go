package archive

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/wippyai/class-widener/errors"
)

// Zip extra field tags the writer generates on its own. Keeping them in
// Entry.Extra would duplicate them on every pass.
const (
	zip64ExtraID     = 0x0001
	timestampExtraID = 0x5455
)

// ReadJar loads every entry of a zip archive into memory, in directory order.
// The archive comment is not returned; TransformJar carries it over.
func ReadJar(r io.ReaderAt, size int64) ([]Entry, error) {
	entries, _, err := readJar(r, size)
	return entries, err
}

func readJar(r io.ReaderAt, size int64) ([]Entry, string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, "", errors.Wrap(errors.PhaseArchive, errors.KindIO, err, "open archive")
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		data, err := readFile(f)
		if err != nil {
			return nil, "", errors.WithPath(errors.PhaseArchive, errors.KindIO, err, f.Name)
		}
		entries = append(entries, Entry{
			Name:     f.Name,
			Comment:  f.Comment,
			Extra:    stripGeneratedExtra(f.Extra),
			Data:     data,
			Method:   f.Method,
			Modified: f.Modified,
		})
	}
	return entries, zr.Comment, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// stripGeneratedExtra drops the zip64 and extended timestamp records from a
// zip extra block. A block that does not parse is returned as is.
func stripGeneratedExtra(extra []byte) []byte {
	var out []byte
	for rest := extra; len(rest) > 0; {
		if len(rest) < 4 {
			return extra
		}
		tag := binary.LittleEndian.Uint16(rest)
		n := 4 + int(binary.LittleEndian.Uint16(rest[2:]))
		if n > len(rest) {
			return extra
		}
		if tag != zip64ExtraID && tag != timestampExtraID {
			out = append(out, rest[:n]...)
		}
		rest = rest[n:]
	}
	return out
}

// WriteJar writes entries as a zip archive, preserving order, compression
// method, modification time, comments and extra fields.
func WriteJar(w io.Writer, entries []Entry) error {
	return writeJar(w, entries, "")
}

func writeJar(w io.Writer, entries []Entry, comment string) error {
	zw := zip.NewWriter(w)
	if comment != "" {
		if err := zw.SetComment(comment); err != nil {
			return errors.Wrap(errors.PhaseArchive, errors.KindIO, err, "archive comment")
		}
	}
	for _, e := range entries {
		method := e.Method
		if method != Store && method != Deflate {
			method = Deflate
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Comment:  e.Comment,
			Extra:    append([]byte(nil), e.Extra...),
			Method:   method,
			Modified: e.Modified,
		})
		if err != nil {
			return errors.WithPath(errors.PhaseArchive, errors.KindIO, err, e.Name)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return errors.WithPath(errors.PhaseArchive, errors.KindIO, err, e.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.PhaseArchive, errors.KindIO, err, "finalize archive")
	}
	return nil
}

// TransformJar reads the archive at inPath, runs it through Process and
// writes the result to outPath. The output is written to a temporary file
// in the destination directory and renamed into place, so outPath is never
// left half-written.
func TransformJar(ctx context.Context, inPath, outPath string, t ClassTransformer, opts ...Option) (Report, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Report{}, errors.WithPath(errors.PhaseArchive, errors.KindIO, err, inPath)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return Report{}, errors.WithPath(errors.PhaseArchive, errors.KindIO, err, inPath)
	}
	entries, comment, err := readJar(in, info.Size())
	if err != nil {
		return Report{}, errors.WithPath(errors.PhaseArchive, errors.KindIO, err, inPath)
	}

	out, err := Process(ctx, entries, t, opts...)
	if err != nil {
		return Report{}, err
	}

	if err := writeAtomic(outPath, out, comment); err != nil {
		return Report{}, err
	}

	report := Diff(entries, out)
	Logger().Info("archive written",
		zap.String("in", inPath),
		zap.String("out", outPath),
		zap.Int("changed", report.Changed),
		zap.String("digest", report.Output.Short()))
	return report, nil
}

func writeAtomic(path string, entries []Entry, comment string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WithPath(errors.PhaseArchive, errors.KindIO, err, path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = writeJar(tmp, entries, comment); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.WithPath(errors.PhaseArchive, errors.KindIO, err, path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.WithPath(errors.PhaseArchive, errors.KindIO, err, path)
	}
	return nil
}
