// Package classwidener widens access modifiers in compiled JVM classes.
//
// Given a set of access widener rules, the library rewrites the access
// flags of the named classes, fields and methods inside a JAR. Everything
// else in a class file, including bytecode, constant pools and attributes,
// is written back byte for byte.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	classwidener/
//	├── classfile/       Class-file parsing and lossless re-encoding
//	├── widener/         Rules, access transitions and the per-class transformer
//	├── archive/         Parallel JAR driver, zip I/O and BLAKE3 fingerprints
//	├── async/           Futures, a bounded worker pool and memoization
//	├── errors/          Structured error types for debugging
//	└── cmd/widen/       Command-line front end
//
// # Quick Start
//
// Widen a JAR:
//
//	rules, err := widener.LoadRules("mod.accesswidener")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t := widener.NewTransformer(rules)
//	report, err := archive.TransformJar(ctx, "in.jar", "out.jar", t)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Changed, "classes changed")
//
// Transform a single class:
//
//	out, stats, err := t.Transform(classBytes)
//
// # Inner Classes
//
// The JVM keeps a copy of a nested class's access flags in the
// InnerClasses attribute of every class that refers to it. Widening a
// nested class therefore changes the InnerClasses entries of its outer
// class and of any sibling that lists it. The driver passes every class
// through the transformer for this reason, not only those a rule names.
//
// # Error Handling
//
// All errors are *errors.Error values carrying a phase, a kind and a path:
//
//	if errors.Is(err, errors.ErrMalformedClass) {
//	    var e *errors.Error
//	    errors.As(err, &e)
//	    log.Printf("bad class %v at offset %d", e.Path, e.Offset)
//	}
//
// # Thread Safety
//
// A Ruleset is immutable once built and a Transformer holds no mutable
// state; both can be shared by any number of goroutines. archive.Process
// bounds its own concurrency.
package classwidener
