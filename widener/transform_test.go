package widener_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/wippyai/class-widener/archive"
	"github.com/wippyai/class-widener/classfile"
	"github.com/wippyai/class-widener/classfile/classfiletest"
	"github.com/wippyai/class-widener/errors"
	"github.com/wippyai/class-widener/widener"
)

var code = []byte{0x00, 0x02, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x2a, 0xb1, 0x00, 0x00, 0x00, 0x00}

func fooClass() []byte {
	return classfiletest.Class("com/x/Foo", classfile.AccSuper).
		Field(classfile.AccPrivate|classfile.AccFinal, "count", "I").
		Field(classfile.AccPrivate, "name", "Ljava/lang/String;").
		Method(0, "<init>", "()V", code).
		Method(classfile.AccPrivate, "run", "(I)V", code).
		Method(classfile.AccPrivate, "run", "(J)V", code).
		SourceFile("Foo.java").
		Bytes()
}

func barClass() []byte {
	return classfiletest.Class("com/x/Bar", classfile.AccPublic|classfile.AccSuper).
		Method(classfile.AccPublic, "use", "()V", code).
		Inner("com/x/Foo", "", "", classfile.AccStatic).
		Inner("com/x/Bar$Local", "com/x/Bar", "Local", classfile.AccPrivate).
		Bytes()
}

func parse(t *testing.T, data []byte) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cf
}

func method(cf *classfile.ClassFile, name, desc string) *classfile.Member {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if cf.MemberName(m) == name && cf.MemberDescriptor(m) == desc {
			return m
		}
	}
	return nil
}

func field(cf *classfile.ClassFile, name string) *classfile.Member {
	for i := range cf.Fields {
		if cf.MemberName(&cf.Fields[i]) == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

func TestTransformWidensClass(t *testing.T) {
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/x/Foo"), widener.WidenToPublic).
		Build()
	tr := widener.NewTransformer(rs)

	out, stats, err := tr.Transform(fooClass())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !stats.Class || stats.Fields != 0 || stats.Methods != 0 {
		t.Errorf("stats = %+v", stats)
	}

	before := parse(t, fooClass())
	after := parse(t, out)
	if after.AccessFlags != classfile.AccPublic|classfile.AccSuper {
		t.Errorf("class flags = %#x", after.AccessFlags)
	}
	for i := range before.Methods {
		if !bytes.Equal(before.Methods[i].Attributes[0].Info, after.Methods[i].Attributes[0].Info) {
			t.Errorf("method %d body changed", i)
		}
		if before.Methods[i].AccessFlags != after.Methods[i].AccessFlags {
			t.Errorf("method %d flags changed", i)
		}
	}
	if len(out) != len(fooClass()) {
		t.Errorf("size changed: %d -> %d", len(fooClass()), len(out))
	}
}

func TestTransformMembers(t *testing.T) {
	rs := widener.NewRulesetBuilder().
		Add(widener.FieldTarget("com/x/Foo", "count", "I"), widener.RemoveFinal, widener.WidenToProtected).
		Add(widener.MethodTarget("com/x/Foo", "run", "(J)V"), widener.WidenToPublic).
		Add(widener.MethodTarget("com/x/Foo", "missing", "()V"), widener.WidenToPublic).
		Add(widener.FieldTarget("com/x/Foo", "name", "I"), widener.WidenToPublic).
		Build()

	out, stats, err := widener.NewTransformer(rs).Transform(fooClass())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if stats.Class || stats.Fields != 1 || stats.Methods != 1 {
		t.Errorf("stats = %+v", stats)
	}

	cf := parse(t, out)
	if f := field(cf, "count"); f.AccessFlags != classfile.AccProtected {
		t.Errorf("count flags = %#x", f.AccessFlags)
	}
	// Descriptor mismatch: no match.
	if f := field(cf, "name"); f.AccessFlags != classfile.AccPrivate {
		t.Errorf("name flags = %#x", f.AccessFlags)
	}
	if m := method(cf, "run", "(J)V"); m.AccessFlags != classfile.AccPublic {
		t.Errorf("run(J) flags = %#x", m.AccessFlags)
	}
	if m := method(cf, "run", "(I)V"); m.AccessFlags != classfile.AccPrivate {
		t.Errorf("run(I) overload flags = %#x", m.AccessFlags)
	}
	if cf.AccessFlags != classfile.AccSuper {
		t.Errorf("class flags = %#x", cf.AccessFlags)
	}
}

func TestTransformIdempotent(t *testing.T) {
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/x/Foo"), widener.WidenToPublic, widener.RemoveFinal).
		Add(widener.FieldTarget("com/x/Foo", "count", "I"), widener.RemoveFinal, widener.WidenToPublic).
		Add(widener.MethodTarget("com/x/Foo", "run", "(I)V"), widener.WidenToProtected).
		Build()
	tr := widener.NewTransformer(rs)

	first, _, err := tr.Transform(fooClass())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, stats, err := tr.Transform(first)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("second pass changed bytes")
	}
	if stats.Changed() {
		t.Errorf("second pass reported changes: %+v", stats)
	}
}

func TestTransformUntouchedIsIdentical(t *testing.T) {
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/other/Thing"), widener.WidenToPublic).
		Add(widener.MethodTarget("com/x/Foo", "nope", "()V"), widener.WidenToPublic).
		Build()

	for _, data := range [][]byte{fooClass(), barClass()} {
		out, stats, err := widener.NewTransformer(rs).Transform(data)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		if stats.Changed() {
			t.Errorf("unexpected changes %+v", stats)
		}
		if !bytes.Equal(out, data) {
			t.Error("untouched class not byte-identical")
		}
	}

	out, _, err := widener.NewTransformer(nil).Transform(barClass())
	if err != nil || !bytes.Equal(out, barClass()) {
		t.Errorf("nil ruleset: err=%v identical=%v", err, bytes.Equal(out, barClass()))
	}
}

func TestTransformPropagatesToReferencingClass(t *testing.T) {
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/x/Foo"), widener.WidenToPublic).
		Build()

	out, stats, err := widener.NewTransformer(rs).Transform(barClass())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if stats.Class || stats.InnerClasses != 1 {
		t.Errorf("stats = %+v", stats)
	}

	cf := parse(t, out)
	if cf.AccessFlags != classfile.AccPublic|classfile.AccSuper {
		t.Errorf("Bar's own flags changed to %#x", cf.AccessFlags)
	}
	entries, _, err := cf.InnerClasses()
	if err != nil {
		t.Fatalf("InnerClasses: %v", err)
	}
	for _, e := range entries {
		switch cf.InnerClassName(e) {
		case "com/x/Foo":
			if e.InnerAccessFlags != classfile.AccPublic|classfile.AccStatic {
				t.Errorf("Foo entry flags = %#x", e.InnerAccessFlags)
			}
		case "com/x/Bar$Local":
			if e.InnerAccessFlags != classfile.AccPrivate {
				t.Errorf("Local entry flags = %#x", e.InnerAccessFlags)
			}
		}
	}
	if method(cf, "use", "()V").Attributes[0].Info[8] != 0x2a {
		t.Error("method body changed")
	}
}

func TestTransformNestedClassProtected(t *testing.T) {
	data := classfiletest.Class("com/x/Outer$Inner", classfile.AccSuper|classfile.AccFinal).
		Inner("com/x/Outer$Inner", "com/x/Outer", "Inner", classfile.AccPrivate|classfile.AccStatic|classfile.AccFinal).
		Bytes()
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/x/Outer$Inner"), widener.WidenToProtected, widener.RemoveFinal).
		Build()

	out, stats, err := widener.NewTransformer(rs).Transform(data)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !stats.Class || stats.InnerClasses != 1 {
		t.Errorf("stats = %+v", stats)
	}
	cf := parse(t, out)
	if cf.AccessFlags != classfile.AccPublic|classfile.AccSuper {
		t.Errorf("header flags = %#x", cf.AccessFlags)
	}
	entries, _, _ := cf.InnerClasses()
	if entries[0].InnerAccessFlags != classfile.AccProtected|classfile.AccStatic {
		t.Errorf("inner entry flags = %#x", entries[0].InnerAccessFlags)
	}
}

func TestTransformMalformed(t *testing.T) {
	_, _, err := widener.NewTransformer(nil).Transform([]byte{0xCA, 0xFE})
	if !errors.Is(err, errors.ErrMalformedClass) {
		t.Fatalf("expected malformed_class, got %v", err)
	}
}

func TestTransformClassEntry(t *testing.T) {
	rs := widener.NewRulesetBuilder().
		Add(widener.ClassTarget("com/x/Foo"), widener.WidenToPublic).
		Build()
	mod := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	in := archive.Entry{Name: "com/x/Foo.class", Modified: mod, Method: archive.Deflate, Data: fooClass()}

	out, err := widener.NewTransformer(rs).TransformClass(in)
	if err != nil {
		t.Fatalf("TransformClass: %v", err)
	}
	if out.Name != in.Name || !out.Modified.Equal(mod) || out.Method != archive.Deflate {
		t.Errorf("metadata changed: %+v", out)
	}
	if parse(t, out.Data).AccessFlags&classfile.AccPublic == 0 {
		t.Error("class not widened")
	}
	if !bytes.Equal(in.Data, fooClass()) {
		t.Error("input entry was mutated")
	}

	_, err = widener.NewTransformer(rs).TransformClass(archive.Entry{Name: "bad/X.class", Data: []byte("nope")})
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindMalformedClass {
		t.Fatalf("expected malformed_class, got %v", err)
	}
	if e.Path[0] != "bad/X.class" {
		t.Errorf("error path = %v", e.Path)
	}
}
