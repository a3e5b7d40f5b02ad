package widener

import (
	"go.uber.org/zap"

	"github.com/wippyai/class-widener/archive"
	"github.com/wippyai/class-widener/classfile"
	"github.com/wippyai/class-widener/errors"
)

// Stats counts the flag changes made to one class.
type Stats struct {
	Class        bool
	Fields       int
	Methods      int
	InnerClasses int
}

// Changed reports whether any flag was modified.
func (s Stats) Changed() bool {
	return s.Class || s.Fields > 0 || s.Methods > 0 || s.InnerClasses > 0
}

// Transformer applies a Ruleset to class files. It holds no mutable state
// and is safe for concurrent use.
type Transformer struct {
	rules *Ruleset
}

// NewTransformer creates a transformer for rs. A nil rs matches nothing.
func NewTransformer(rs *Ruleset) *Transformer {
	return &Transformer{rules: rs}
}

// TransformClass rewrites one archive entry, keeping its name and
// metadata. It implements archive.ClassTransformer.
func (t *Transformer) TransformClass(e archive.Entry) (archive.Entry, error) {
	data, stats, err := t.Transform(e.Data)
	if err != nil {
		return archive.Entry{}, errors.WithPath(errors.PhaseTransform, errors.KindMalformedClass, err, e.Name)
	}
	if stats.Changed() {
		Logger().Debug("widened class",
			zap.String("entry", e.Name),
			zap.Bool("class", stats.Class),
			zap.Int("fields", stats.Fields),
			zap.Int("methods", stats.Methods),
			zap.Int("inner_classes", stats.InnerClasses))
	}
	out := e
	out.Data = data
	return out, nil
}

// Transform parses a class, applies the ruleset and re-encodes it.
//
// Every class goes through the parse/encode round trip, whether or not a
// rule names it: InnerClasses tables hold copies of other classes' access
// flags, so widening a class has to be mirrored in every class that lists
// it. A class with nothing to change comes back byte-identical.
func (t *Transformer) Transform(data []byte) ([]byte, Stats, error) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, Stats{}, err
	}
	stats, err := t.Apply(cf)
	if err != nil {
		return nil, stats, err
	}
	return cf.Encode(), stats, nil
}

// Apply mutates the structural model in place.
func (t *Transformer) Apply(cf *classfile.ClassFile) (Stats, error) {
	var stats Stats
	name := cf.ClassName()

	if t.rules.Targets(name) {
		if ts := t.rules.Class(name); !ts.Empty() {
			if nf := ts.ApplyClass(cf.AccessFlags); nf != cf.AccessFlags {
				cf.AccessFlags = nf
				stats.Class = true
			}
		}
		stats.Fields = t.applyMembers(cf, cf.Fields, KindField)
		stats.Methods = t.applyMembers(cf, cf.Methods, KindMethod)
	}

	n, err := t.applyInnerClasses(cf)
	if err != nil {
		return stats, err
	}
	stats.InnerClasses = n
	return stats, nil
}

func (t *Transformer) applyMembers(cf *classfile.ClassFile, members []classfile.Member, kind TargetKind) int {
	owner := cf.ClassName()
	changed := 0
	for i := range members {
		m := &members[i]
		target := Target{
			Kind:       kind,
			Owner:      owner,
			Name:       cf.MemberName(m),
			Descriptor: cf.MemberDescriptor(m),
		}
		ts := t.rules.Lookup(target)
		if ts.Empty() {
			continue
		}
		if nf := ts.Apply(m.AccessFlags); nf != m.AccessFlags {
			m.AccessFlags = nf
			changed++
		}
	}
	return changed
}

func (t *Transformer) applyInnerClasses(cf *classfile.ClassFile) (int, error) {
	entries, ok, err := cf.InnerClasses()
	if err != nil || !ok {
		return 0, err
	}

	changed := 0
	for i := range entries {
		ts := t.rules.Class(cf.InnerClassName(entries[i]))
		if ts.Empty() {
			continue
		}
		if nf := ts.Apply(entries[i].InnerAccessFlags); nf != entries[i].InnerAccessFlags {
			entries[i].InnerAccessFlags = nf
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, cf.SetInnerClasses(entries)
}
