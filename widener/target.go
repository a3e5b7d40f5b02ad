package widener

// TargetKind distinguishes class, field and method targets.
type TargetKind uint8

const (
	KindClass TargetKind = iota
	KindField
	KindMethod
)

func (k TargetKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Target identifies what a rule applies to. Matching is exact on all
// fields; there is no wildcard or inheritance-aware lookup. Target is
// comparable and used directly as a map key.
type Target struct {
	Owner      string // internal class name, e.g. "com/x/Foo"
	Name       string // empty for class targets
	Descriptor string // empty for class targets
	Kind       TargetKind
}

// ClassTarget targets a class by internal name.
func ClassTarget(name string) Target {
	return Target{Kind: KindClass, Owner: name}
}

// FieldTarget targets a field by owner, name and descriptor.
func FieldTarget(owner, name, descriptor string) Target {
	return Target{Kind: KindField, Owner: owner, Name: name, Descriptor: descriptor}
}

// MethodTarget targets a method by owner, name and descriptor.
func MethodTarget(owner, name, descriptor string) Target {
	return Target{Kind: KindMethod, Owner: owner, Name: name, Descriptor: descriptor}
}

func (t Target) String() string {
	switch t.Kind {
	case KindClass:
		return "class " + t.Owner
	case KindField:
		return "field " + t.Owner + "." + t.Name + ":" + t.Descriptor
	default:
		return "method " + t.Owner + "." + t.Name + t.Descriptor
	}
}
