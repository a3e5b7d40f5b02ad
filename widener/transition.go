package widener

import (
	"strings"

	"github.com/wippyai/class-widener/classfile"
)

// Visibility is a JVM access level ordered from most to least restrictive.
type Visibility uint8

const (
	Private Visibility = iota
	PackagePrivate
	Protected
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case PackagePrivate:
		return "package-private"
	case Protected:
		return "protected"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

// VisibilityOf extracts the access level encoded in flags. Malformed
// combinations resolve to the widest bit present.
func VisibilityOf(flags classfile.AccessFlags) Visibility {
	switch {
	case flags&classfile.AccPublic != 0:
		return Public
	case flags&classfile.AccProtected != 0:
		return Protected
	case flags&classfile.AccPrivate != 0:
		return Private
	default:
		return PackagePrivate
	}
}

// Flags returns the visibility bits encoding v.
func (v Visibility) Flags() classfile.AccessFlags {
	switch v {
	case Public:
		return classfile.AccPublic
	case Protected:
		return classfile.AccProtected
	case Private:
		return classfile.AccPrivate
	default:
		return 0
	}
}

// Transition is a single requested access change.
type Transition uint8

const (
	RemoveFinal Transition = 1 << iota
	WidenToPackagePrivate
	WidenToProtected
	WidenToPublic
)

func (t Transition) String() string {
	switch t {
	case RemoveFinal:
		return "remove-final"
	case WidenToPackagePrivate:
		return "widen-package"
	case WidenToProtected:
		return "widen-protected"
	case WidenToPublic:
		return "widen-public"
	default:
		return "unknown"
	}
}

// Transitions is the set of transitions requested for one target.
type Transitions uint8

// Of builds a set from individual transitions.
func Of(ts ...Transition) Transitions {
	var s Transitions
	for _, t := range ts {
		s |= Transitions(t)
	}
	return s
}

// Has reports whether t is in the set.
func (s Transitions) Has(t Transition) bool {
	return s&Transitions(t) != 0
}

// Union merges two sets. Composition is monotonic: the widest visibility
// among all requests wins and final is removed if any request removes it.
func (s Transitions) Union(o Transitions) Transitions {
	return s | o
}

// Empty reports whether no transition is requested.
func (s Transitions) Empty() bool {
	return s == 0
}

// Target returns the widest requested visibility, or false when the set
// requests no visibility change.
func (s Transitions) Target() (Visibility, bool) {
	switch {
	case s.Has(WidenToPublic):
		return Public, true
	case s.Has(WidenToProtected):
		return Protected, true
	case s.Has(WidenToPackagePrivate):
		return PackagePrivate, true
	default:
		return Private, false
	}
}

// Apply returns flags with the transitions applied. The resulting
// visibility is the wider of the current and requested one, so Apply never
// narrows. Bits other than visibility and final are preserved.
func (s Transitions) Apply(flags classfile.AccessFlags) classfile.AccessFlags {
	if want, ok := s.Target(); ok {
		if cur := VisibilityOf(flags); want > cur {
			flags = flags&^classfile.VisibilityMask | want.Flags()
		}
	}
	if s.Has(RemoveFinal) {
		flags &^= classfile.AccFinal
	}
	return flags
}

// ApplyClass applies the transitions to a class header. A class header can
// only encode public or package access, so a protected request widens the
// header to public.
func (s Transitions) ApplyClass(flags classfile.AccessFlags) classfile.AccessFlags {
	if s.Has(WidenToProtected) {
		s = s&^Transitions(WidenToProtected) | Transitions(WidenToPublic)
	}
	return s.Apply(flags)
}

func (s Transitions) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, t := range []Transition{WidenToPublic, WidenToProtected, WidenToPackagePrivate, RemoveFinal} {
		if s.Has(t) {
			parts = append(parts, t.String())
		}
	}
	return strings.Join(parts, "+")
}
