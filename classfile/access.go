package classfile

import "strings"

// AccessFlags is the u2 access_flags bit set of a class, field, method or
// inner class entry.
type AccessFlags uint16

// Access flag bits (JVMS 4.1, 4.5, 4.6, 4.7.6). Several bits are shared
// between contexts with different meanings.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // class
	AccSynchronized AccessFlags = 0x0020 // method
	AccVolatile     AccessFlags = 0x0040 // field
	AccBridge       AccessFlags = 0x0040 // method
	AccTransient    AccessFlags = 0x0080 // field
	AccVarargs      AccessFlags = 0x0080 // method
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// VisibilityMask covers the three visibility bits.
const VisibilityMask = AccPublic | AccPrivate | AccProtected

// Has reports whether all bits of f are set.
func (a AccessFlags) Has(f AccessFlags) bool {
	return a&f == f
}

// Visibility returns only the visibility bits.
func (a AccessFlags) Visibility() AccessFlags {
	return a & VisibilityMask
}

// FlagContext selects how shared bits are rendered.
type FlagContext int

const (
	ContextClass FlagContext = iota
	ContextField
	ContextMethod
	ContextInnerClass
)

type flagName struct {
	flag AccessFlags
	name string
}

var commonNames = []flagName{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
}

// Format renders the flags as Java-like modifiers for the given context.
func (a AccessFlags) Format(ctx FlagContext) string {
	names := make([]string, 0, 6)
	for _, fn := range commonNames {
		if a.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}

	var extra []flagName
	switch ctx {
	case ContextClass, ContextInnerClass:
		extra = []flagName{
			{AccSuper, "super"},
			{AccInterface, "interface"},
			{AccAbstract, "abstract"},
			{AccSynthetic, "synthetic"},
			{AccAnnotation, "annotation"},
			{AccEnum, "enum"},
			{AccModule, "module"},
		}
	case ContextField:
		extra = []flagName{
			{AccVolatile, "volatile"},
			{AccTransient, "transient"},
			{AccSynthetic, "synthetic"},
			{AccEnum, "enum"},
		}
	case ContextMethod:
		extra = []flagName{
			{AccSynchronized, "synchronized"},
			{AccBridge, "bridge"},
			{AccVarargs, "varargs"},
			{AccNative, "native"},
			{AccAbstract, "abstract"},
			{AccStrict, "strict"},
			{AccSynthetic, "synthetic"},
		}
	}
	for _, fn := range extra {
		if a.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, " ")
}
