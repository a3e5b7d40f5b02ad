// Package widener relaxes access modifiers in compiled JVM classes.
//
// A Ruleset maps targets (a class, or a field or method identified by
// owner, name and descriptor) to requested transitions: widen to
// package-private, protected or public, or remove final. Transitions on one
// target compose monotonically; the widest visibility wins and access is
// never narrowed.
//
//	rs := widener.NewRulesetBuilder().
//		Add(widener.ClassTarget("com/x/Foo"), widener.WidenToPublic).
//		Add(widener.FieldTarget("com/x/Foo", "count", "I"), widener.RemoveFinal).
//		Build()
//
//	out, stats, err := widener.NewTransformer(rs).Transform(classBytes)
//
// # Inner classes
//
// The InnerClasses attribute of a class records the access flags of every
// nested class it references, including classes it merely uses. Widening
// com/x/Foo$Bar therefore changes bytes in any class that lists Foo$Bar,
// and every class of an archive has to be passed through the Transformer,
// not just the ones a rule names. Classes with no applicable change are
// re-emitted byte-identical.
//
// # Rule files
//
// ParseRules and LoadRules read the line-oriented accessWidener format:
//
//	accessWidener v2 named
//	accessible class com/x/Foo
//	mutable field com/x/Foo count I
//	extendable method com/x/Foo run ()V
package widener
