// Package classfiletest builds small class files for tests.
package classfiletest

import (
	"github.com/wippyai/class-widener/classfile"
)

// Builder assembles a ClassFile with a Code attribute per method so that
// tests can check that bodies survive transformation untouched.
type Builder struct {
	cf *classfile.ClassFile
}

// Class starts a class with the given internal name extending java/lang/Object.
func Class(name string, flags classfile.AccessFlags) *Builder {
	cf := &classfile.ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: classfile.NewConstantPool(),
		AccessFlags:  flags,
	}
	cf.ThisClass = cf.ConstantPool.AddClass(name)
	cf.SuperClass = cf.ConstantPool.AddClass("java/lang/Object")
	return &Builder{cf: cf}
}

// Field adds a field.
func (b *Builder) Field(flags classfile.AccessFlags, name, descriptor string) *Builder {
	b.cf.Fields = append(b.cf.Fields, classfile.Member{
		AccessFlags:     flags,
		NameIndex:       b.cf.ConstantPool.AddUTF8(name),
		DescriptorIndex: b.cf.ConstantPool.AddUTF8(descriptor),
	})
	return b
}

// ConstantField adds a field with a ConstantValue attribute pointing at a
// Long constant.
func (b *Builder) ConstantField(flags classfile.AccessFlags, name string, value int64) *Builder {
	p := &b.cf.ConstantPool
	idx := p.AddLong(value)
	b.cf.Fields = append(b.cf.Fields, classfile.Member{
		AccessFlags:     flags,
		NameIndex:       p.AddUTF8(name),
		DescriptorIndex: p.AddUTF8("J"),
		Attributes: []classfile.Attribute{{
			NameIndex: p.AddUTF8("ConstantValue"),
			Info:      []byte{byte(idx >> 8), byte(idx)},
		}},
	})
	return b
}

// Method adds a method whose Code attribute body is code verbatim.
func (b *Builder) Method(flags classfile.AccessFlags, name, descriptor string, code []byte) *Builder {
	m := classfile.Member{
		AccessFlags:     flags,
		NameIndex:       b.cf.ConstantPool.AddUTF8(name),
		DescriptorIndex: b.cf.ConstantPool.AddUTF8(descriptor),
	}
	if code != nil {
		m.Attributes = []classfile.Attribute{{
			NameIndex: b.cf.ConstantPool.AddUTF8(classfile.AttrCode),
			Info:      append([]byte(nil), code...),
		}}
	}
	b.cf.Methods = append(b.cf.Methods, m)
	return b
}

// Inner adds an InnerClasses entry. outer and simpleName may be empty.
func (b *Builder) Inner(inner, outer, simpleName string, flags classfile.AccessFlags) *Builder {
	p := &b.cf.ConstantPool
	ic := classfile.InnerClass{
		InnerClassInfo:   p.AddClass(inner),
		InnerAccessFlags: flags,
	}
	if outer != "" {
		ic.OuterClassInfo = p.AddClass(outer)
	}
	if simpleName != "" {
		ic.InnerName = p.AddUTF8(simpleName)
	}
	entries, _, _ := b.cf.InnerClasses()
	_ = b.cf.SetInnerClasses(append(entries, ic))
	return b
}

// SourceFile adds a SourceFile attribute.
func (b *Builder) SourceFile(name string) *Builder {
	p := &b.cf.ConstantPool
	idx := p.AddUTF8(name)
	b.cf.Attributes = append(b.cf.Attributes, classfile.Attribute{
		NameIndex: p.AddUTF8(classfile.AttrSourceFile),
		Info:      []byte{byte(idx >> 8), byte(idx)},
	})
	return b
}

// Model returns the built class.
func (b *Builder) Model() *classfile.ClassFile {
	return b.cf
}

// Bytes encodes the built class.
func (b *Builder) Bytes() []byte {
	return b.cf.Encode()
}
