package widener

import (
	"testing"

	"github.com/wippyai/class-widener/classfile"
)

func TestVisibilityOf(t *testing.T) {
	tests := []struct {
		flags classfile.AccessFlags
		want  Visibility
	}{
		{0, PackagePrivate},
		{classfile.AccPublic | classfile.AccStatic, Public},
		{classfile.AccProtected, Protected},
		{classfile.AccPrivate | classfile.AccFinal, Private},
		{classfile.AccPublic | classfile.AccPrivate, Public},
	}
	for _, tt := range tests {
		if got := VisibilityOf(tt.flags); got != tt.want {
			t.Errorf("VisibilityOf(%#x) = %s, want %s", tt.flags, got, tt.want)
		}
	}
}

func TestTransitionsApply(t *testing.T) {
	tests := []struct {
		name  string
		ts    Transitions
		flags classfile.AccessFlags
		want  classfile.AccessFlags
	}{
		{"private to public", Of(WidenToPublic), classfile.AccPrivate | classfile.AccStatic, classfile.AccPublic | classfile.AccStatic},
		{"package to protected", Of(WidenToProtected), classfile.AccFinal, classfile.AccProtected | classfile.AccFinal},
		{"private to package", Of(WidenToPackagePrivate), classfile.AccPrivate, 0},
		{"public stays public", Of(WidenToProtected), classfile.AccPublic, classfile.AccPublic},
		{"protected not narrowed to package", Of(WidenToPackagePrivate), classfile.AccProtected, classfile.AccProtected},
		{"remove final", Of(RemoveFinal), classfile.AccPublic | classfile.AccFinal, classfile.AccPublic},
		{"remove final on non-final", Of(RemoveFinal), classfile.AccPrivate, classfile.AccPrivate},
		{"widest wins", Of(WidenToPackagePrivate, WidenToPublic, WidenToProtected), classfile.AccPrivate, classfile.AccPublic},
		{"widen and definal", Of(WidenToPublic, RemoveFinal), classfile.AccPrivate | classfile.AccFinal | classfile.AccSynthetic, classfile.AccPublic | classfile.AccSynthetic},
		{"empty", 0, classfile.AccPrivate | classfile.AccFinal, classfile.AccPrivate | classfile.AccFinal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ts.Apply(tt.flags); got != tt.want {
				t.Errorf("Apply(%#x) = %#x, want %#x", tt.flags, got, tt.want)
			}
		})
	}
}

func TestTransitionsNeverNarrow(t *testing.T) {
	visibilities := []classfile.AccessFlags{0, classfile.AccPrivate, classfile.AccProtected, classfile.AccPublic}
	others := []classfile.AccessFlags{0, classfile.AccFinal, classfile.AccStatic | classfile.AccFinal, classfile.AccSynthetic}

	for set := Transitions(0); set < 16; set++ {
		for _, v := range visibilities {
			for _, o := range others {
				in := v | o
				out := set.Apply(in)
				if VisibilityOf(out) < VisibilityOf(in) {
					t.Errorf("%s narrowed %#x to %#x", set, in, out)
				}
				if set.Apply(out) != out {
					t.Errorf("%s not idempotent on %#x", set, in)
				}
				if out&^(classfile.VisibilityMask|classfile.AccFinal) != in&^(classfile.VisibilityMask|classfile.AccFinal) {
					t.Errorf("%s touched unrelated bits: %#x -> %#x", set, in, out)
				}
			}
		}
	}
}

func TestTransitionsApplyClass(t *testing.T) {
	got := Of(WidenToProtected).ApplyClass(classfile.AccSuper)
	if got != classfile.AccPublic|classfile.AccSuper {
		t.Errorf("protected on class header = %#x, want public|super", got)
	}
	got = Of(WidenToPackagePrivate, RemoveFinal).ApplyClass(classfile.AccFinal | classfile.AccSuper)
	if got != classfile.AccSuper {
		t.Errorf("package+definal on class header = %#x", got)
	}
}

func TestTransitionsString(t *testing.T) {
	if s := Of(RemoveFinal, WidenToPublic).String(); s != "widen-public+remove-final" {
		t.Errorf("String = %q", s)
	}
	if s := Transitions(0).String(); s != "none" {
		t.Errorf("String = %q", s)
	}
}
