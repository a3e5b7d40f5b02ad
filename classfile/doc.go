// Package classfile provides JVM class file parsing and encoding.
//
// The package decodes a class file into a mutable structural model and
// encodes it back. Only the parts needed to reason about access are
// decoded: the constant pool, header, members and the InnerClasses table.
// Every other attribute (Code, LineNumberTable, annotations, ...) is kept as
// raw bytes.
//
// # Parsing
//
//	cf, err := classfile.Parse(data)
//	if err != nil {
//	    // err is an *errors.Error of kind malformed_class
//	}
//	fmt.Println(cf.ClassName(), cf.AccessFlags.Format(classfile.ContextClass))
//
// # Encoding
//
// Round-trip encoding is lossless:
//
//	bytes.Equal(cf.Encode(), data) // true for an unmodified model
//
// # Inner classes
//
// InnerClasses entries carry a copy of the inner class's access flags:
//
//	entries, ok, err := cf.InnerClasses()
//	entries[0].InnerAccessFlags |= classfile.AccPublic
//	err = cf.SetInnerClasses(entries)
package classfile
