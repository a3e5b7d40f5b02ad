package archive_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/goleak"

	"github.com/wippyai/class-widener/archive"
	"github.com/wippyai/class-widener/classfile"
	"github.com/wippyai/class-widener/classfile/classfiletest"
	"github.com/wippyai/class-widener/errors"
	"github.com/wippyai/class-widener/widener"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleEntries() []archive.Entry {
	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []archive.Entry{
		{Name: "META-INF/", Method: archive.Store, Modified: mod},
		{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\n"), Method: archive.Deflate, Modified: mod},
		{Name: "com/example/Foo.class", Data: classfiletest.Class("com/example/Foo", classfile.AccSuper).
			Inner("com/example/Foo$Bar", "com/example/Foo", "Bar", classfile.AccPrivate).Bytes(),
			Method: archive.Deflate, Modified: mod},
		{Name: "com/example/Foo$Bar.class", Data: classfiletest.Class("com/example/Foo$Bar", classfile.AccSuper).
			Inner("com/example/Foo$Bar", "com/example/Foo", "Bar", classfile.AccPrivate).Bytes(),
			Method: archive.Deflate, Modified: mod},
		{Name: "com/example/Other.class", Data: classfiletest.Class("com/example/Other", classfile.AccPublic|classfile.AccSuper).Bytes(),
			Method: archive.Store, Modified: mod},
		{Name: "assets/logo.txt", Data: []byte("not a class"), Method: archive.Store, Modified: mod},
	}
}

func sampleTransformer() *widener.Transformer {
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/example/Foo$Bar"), widener.WidenToPublic).
		Build()
	return widener.NewTransformer(rs)
}

func TestEntryKinds(t *testing.T) {
	tests := []struct {
		name    string
		isClass bool
		isDir   bool
	}{
		{"a/B.class", true, false},
		{"a/", false, true},
		{"weird.class/", false, true},
		{"a/B.java", false, false},
	}
	for _, tt := range tests {
		e := archive.Entry{Name: tt.name}
		if e.IsClass() != tt.isClass || e.IsDir() != tt.isDir {
			t.Errorf("%s: IsClass=%v IsDir=%v", tt.name, e.IsClass(), e.IsDir())
		}
	}
}

func TestProcessPreservesOrderAndMetadata(t *testing.T) {
	in := sampleEntries()
	out, err := archive.Process(context.Background(), in, sampleTransformer(), archive.WithParallelism(3))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Method != in[i].Method || !out[i].Modified.Equal(in[i].Modified) {
			t.Errorf("entry %d metadata changed: %+v", i, out[i])
		}
	}
	if !bytes.Equal(out[1].Data, in[1].Data) || !bytes.Equal(out[5].Data, in[5].Data) {
		t.Error("non-class entries must pass through unchanged")
	}
	if !bytes.Equal(out[4].Data, in[4].Data) {
		t.Error("untouched class should be byte-identical")
	}

	// Foo's InnerClasses entry for Bar mirrors the widened flags.
	foo, err := classfile.Parse(out[2].Data)
	if err != nil {
		t.Fatal(err)
	}
	inners, ok, err := foo.InnerClasses()
	if err != nil || !ok || len(inners) != 1 {
		t.Fatalf("InnerClasses = %v, %v, %v", inners, ok, err)
	}
	if inners[0].InnerAccessFlags.Visibility() != classfile.AccPublic {
		t.Errorf("Foo's entry for Bar = %04x, want public", uint16(inners[0].InnerAccessFlags))
	}

	bar, err := classfile.Parse(out[3].Data)
	if err != nil {
		t.Fatal(err)
	}
	if !bar.AccessFlags.Has(classfile.AccPublic) {
		t.Errorf("Bar header = %04x, want public", uint16(bar.AccessFlags))
	}
}

func TestProcessParallelismIndependent(t *testing.T) {
	in := sampleEntries()
	var want []archive.Entry
	for _, n := range []int{1, 2, 8, 0} {
		out, err := archive.Process(context.Background(), in, sampleTransformer(), archive.WithParallelism(n))
		if err != nil {
			t.Fatalf("parallelism %d: %v", n, err)
		}
		if want == nil {
			want = out
			continue
		}
		if archive.Fingerprint(out) != archive.Fingerprint(want) {
			t.Errorf("parallelism %d produced different output", n)
		}
	}
}

func TestProcessFailureProducesNoOutput(t *testing.T) {
	in := sampleEntries()
	in = append(in, archive.Entry{Name: "com/example/Broken.class", Data: []byte{0xCA, 0xFE}})

	out, err := archive.Process(context.Background(), in, sampleTransformer())
	if err == nil {
		t.Fatal("expected error")
	}
	if out != nil {
		t.Error("failed pass must not return partial output")
	}
	if !errors.Is(err, errors.ErrMalformedClass) {
		t.Errorf("expected malformed_class, got %v", err)
	}
	var e *errors.Error
	if !errors.As(err, &e) || len(e.Path) == 0 || e.Path[0] != "com/example/Broken.class" {
		t.Errorf("error should name the entry, got %v", err)
	}
}

func TestProcessWrapsPlainErrors(t *testing.T) {
	cause := stderrors.New("disk on fire")
	fail := archive.ClassTransformerFunc(func(e archive.Entry) (archive.Entry, error) {
		return archive.Entry{}, cause
	})
	_, err := archive.Process(context.Background(), sampleEntries(), fail, archive.WithParallelism(1))
	if !stderrors.Is(err, cause) {
		t.Fatalf("got %v", err)
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Phase != errors.PhaseArchive || len(e.Path) != 1 {
		t.Errorf("plain errors should be tagged with the entry path, got %#v", e)
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := archive.Process(ctx, sampleEntries(), sampleTransformer())
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if out != nil {
		t.Error("cancelled pass must not return output")
	}
}

func TestProcessProgress(t *testing.T) {
	in := sampleEntries()
	var mu sync.Mutex
	var seen []int
	var calls atomic.Int32

	_, err := archive.Process(context.Background(), in, sampleTransformer(),
		archive.WithParallelism(4),
		archive.WithProgress(func(done, total int) {
			calls.Add(1)
			if total != len(in) {
				t.Errorf("total = %d", total)
			}
			mu.Lock()
			seen = append(seen, done)
			mu.Unlock()
		}))
	if err != nil {
		t.Fatal(err)
	}
	if int(calls.Load()) != len(in) {
		t.Errorf("progress called %d times, want %d", calls.Load(), len(in))
	}
	last := 0
	for _, d := range seen {
		if d > last {
			last = d
		}
	}
	if last != len(in) {
		t.Errorf("final progress = %d", last)
	}
}

func TestJarRoundTrip(t *testing.T) {
	in := sampleEntries()
	var buf bytes.Buffer
	if err := archive.WriteJar(&buf, in); err != nil {
		t.Fatalf("WriteJar: %v", err)
	}

	out, err := archive.ReadJar(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadJar: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries", len(out))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Method != in[i].Method {
			t.Errorf("entry %d: %s/%d", i, out[i].Name, out[i].Method)
		}
		if !bytes.Equal(out[i].Data, in[i].Data) {
			t.Errorf("entry %d data differs", i)
		}
	}
	if archive.Fingerprint(out) != archive.Fingerprint(in) {
		t.Error("fingerprint changed across round trip")
	}
}

func TestJarKeepsEntryMetadata(t *testing.T) {
	extra := []byte{0xfe, 0xca, 2, 0, 'h', 'i'}
	in := sampleEntries()
	in[1].Comment = "patched"
	in[1].Extra = extra

	entries := in
	for pass := 1; pass <= 2; pass++ {
		var buf bytes.Buffer
		if err := archive.WriteJar(&buf, entries); err != nil {
			t.Fatalf("pass %d: WriteJar: %v", pass, err)
		}
		out, err := archive.ReadJar(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		if err != nil {
			t.Fatalf("pass %d: ReadJar: %v", pass, err)
		}
		if out[1].Comment != "patched" {
			t.Errorf("pass %d: comment = %q", pass, out[1].Comment)
		}
		if !bytes.Equal(out[1].Extra, extra) {
			t.Errorf("pass %d: extra = %x, want %x", pass, out[1].Extra, extra)
		}
		if len(out[0].Extra) != 0 {
			t.Errorf("pass %d: timestamp extra leaked into entry: %x", pass, out[0].Extra)
		}
		if !out[1].Modified.Equal(in[1].Modified) {
			t.Errorf("pass %d: modified = %v", pass, out[1].Modified)
		}
		entries = out
	}
}

func TestTransformJarKeepsArchiveComment(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.jar")
	f, err := os.Create(inPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if err := zw.SetComment("built by gradle"); err != nil {
		t.Fatal(err)
	}
	for _, e := range sampleEntries() {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: e.Method, Modified: e.Modified})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	outPath := filepath.Join(dir, "out.jar")
	if _, err := archive.TransformJar(context.Background(), inPath, outPath, sampleTransformer()); err != nil {
		t.Fatalf("TransformJar: %v", err)
	}

	zr, err := zip.OpenReader(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	if zr.Comment != "built by gradle" {
		t.Errorf("archive comment = %q", zr.Comment)
	}
}

func TestReadJarRejectsGarbage(t *testing.T) {
	data := []byte("definitely not a zip")
	_, err := archive.ReadJar(bytes.NewReader(data), int64(len(data)))
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindIO {
		t.Errorf("expected io error, got %v", err)
	}
}

func writeSampleJar(t *testing.T, dir string, entries []archive.Entry) string {
	t.Helper()
	path := filepath.Join(dir, "in.jar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := archive.WriteJar(f, entries); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTransformJar(t *testing.T) {
	dir := t.TempDir()
	in := writeSampleJar(t, dir, sampleEntries())
	outPath := filepath.Join(dir, "out.jar")

	report, err := archive.TransformJar(context.Background(), in, outPath, sampleTransformer())
	if err != nil {
		t.Fatalf("TransformJar: %v", err)
	}
	if report.Entries != 6 || report.Classes != 3 || report.Changed != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.Input == report.Output {
		t.Error("digests should differ when classes changed")
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	out, err := archive.ReadJar(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if archive.Fingerprint(out) != report.Output {
		t.Error("written archive does not match reported digest")
	}
}

func TestTransformJarFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	entries := append(sampleEntries(), archive.Entry{Name: "Bad.class", Data: []byte{1, 2, 3}})
	in := writeSampleJar(t, dir, entries)
	outPath := filepath.Join(dir, "out.jar")

	if _, err := archive.TransformJar(context.Background(), in, outPath, sampleTransformer()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("output should not exist after a failed pass")
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 1 {
		t.Errorf("temporary files left behind: %d entries in dir", len(files))
	}
}

func TestTransformJarMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := archive.TransformJar(context.Background(), filepath.Join(dir, "nope.jar"),
		filepath.Join(dir, "out.jar"), sampleTransformer())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist, got %v", err)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	a := []archive.Entry{{Name: "a", Data: []byte("1")}, {Name: "b", Data: []byte("2")}}
	swapped := []archive.Entry{a[1], a[0]}
	renamed := []archive.Entry{{Name: "a2", Data: []byte("1")}, a[1]}
	stamped := []archive.Entry{{Name: "a", Data: []byte("1"), Modified: time.Now()}, a[1]}

	base := archive.Fingerprint(a)
	if base == archive.Fingerprint(swapped) {
		t.Error("order should affect the fingerprint")
	}
	if base == archive.Fingerprint(renamed) {
		t.Error("names should affect the fingerprint")
	}
	if base != archive.Fingerprint(stamped) {
		t.Error("timestamps should not affect the fingerprint")
	}
	if len(base.String()) != 64 || len(base.Short()) != 12 {
		t.Errorf("hex lengths: %d, %d", len(base.String()), len(base.Short()))
	}
}
