package classfile

import (
	"github.com/wippyai/class-widener/classfile/internal/binary"
)

// Encode serializes the class file. For a model produced by Parse and left
// unmodified, the output is byte-identical to the parsed input.
func (c *ClassFile) Encode() []byte {
	w := binary.NewWriterSize(c.sizeHint())

	w.U4(Magic)
	w.U2(c.MinorVersion)
	w.U2(c.MajorVersion)

	pool := c.ConstantPool
	if len(pool) == 0 {
		pool = NewConstantPool()
	}
	w.U2(uint16(len(pool)))
	for i := 1; i < len(pool); i++ {
		k := pool[i]
		writeConstant(w, k)
		if k.Tag.wide() {
			i++
		}
	}

	w.U2(uint16(c.AccessFlags))
	w.U2(c.ThisClass)
	w.U2(c.SuperClass)

	w.U2(uint16(len(c.Interfaces)))
	for _, idx := range c.Interfaces {
		w.U2(idx)
	}

	writeMembers(w, c.Fields)
	writeMembers(w, c.Methods)
	writeAttributes(w, c.Attributes)

	return w.Bytes()
}

func writeConstant(w *binary.Writer, k Constant) {
	w.U1(uint8(k.Tag))
	switch k.Tag {
	case TagUTF8:
		w.U2(uint16(len(k.UTF8)))
		w.WriteString(k.UTF8)
	case TagInteger, TagFloat:
		w.U4(uint32(k.Bits))
	case TagLong, TagDouble:
		w.U8(k.Bits)
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		w.U2(k.Index1)
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
		w.U2(k.Index1)
		w.U2(k.Index2)
	case TagMethodHandle:
		w.U1(k.RefKind)
		w.U2(k.Index1)
	}
}

func writeMembers(w *binary.Writer, members []Member) {
	w.U2(uint16(len(members)))
	for i := range members {
		m := &members[i]
		w.U2(uint16(m.AccessFlags))
		w.U2(m.NameIndex)
		w.U2(m.DescriptorIndex)
		writeAttributes(w, m.Attributes)
	}
}

func writeAttributes(w *binary.Writer, attrs []Attribute) {
	w.U2(uint16(len(attrs)))
	for i := range attrs {
		w.U2(attrs[i].NameIndex)
		w.U4(uint32(len(attrs[i].Info)))
		w.WriteBytes(attrs[i].Info)
	}
}

// sizeHint estimates the encoded size to avoid buffer regrowth.
func (c *ClassFile) sizeHint() int {
	n := 24 + 2*len(c.Interfaces)
	for i := range c.ConstantPool {
		n += 5 + len(c.ConstantPool[i].UTF8)
	}
	for _, members := range [][]Member{c.Fields, c.Methods} {
		for i := range members {
			n += 8
			for _, a := range members[i].Attributes {
				n += 6 + len(a.Info)
			}
		}
	}
	for _, a := range c.Attributes {
		n += 6 + len(a.Info)
	}
	return n
}
