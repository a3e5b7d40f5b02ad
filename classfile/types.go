package classfile

// ClassFile is the parsed structural model of a class file. Attribute bodies
// other than InnerClasses are kept as raw bytes so that Encode reproduces
// them bit for bit.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16 // 0 for java/lang/Object and module-info
	Interfaces   []uint16
	Fields       []Member
	Methods      []Member
	Attributes   []Attribute
}

// Member is a field_info or method_info structure.
type Member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// Attribute is an attribute_info structure with its body left undecoded.
type Attribute struct {
	NameIndex uint16
	Info      []byte
}

// InnerClass is one entry of the InnerClasses attribute. The access flags
// are the inner class's declared flags as seen by the enclosing class.
type InnerClass struct {
	InnerClassInfo   uint16
	OuterClassInfo   uint16 // 0 for local and anonymous classes
	InnerName        uint16 // 0 for anonymous classes
	InnerAccessFlags AccessFlags
}

// ClassName returns the internal name of this class, e.g. "com/x/Foo".
func (c *ClassFile) ClassName() string {
	name, _ := c.ConstantPool.ClassName(c.ThisClass)
	return name
}

// SuperName returns the internal name of the superclass, or "" if none.
func (c *ClassFile) SuperName() string {
	if c.SuperClass == 0 {
		return ""
	}
	name, _ := c.ConstantPool.ClassName(c.SuperClass)
	return name
}

// MemberName returns the name of a field or method.
func (c *ClassFile) MemberName(m *Member) string {
	s, _ := c.ConstantPool.UTF8(m.NameIndex)
	return s
}

// MemberDescriptor returns the descriptor of a field or method.
func (c *ClassFile) MemberDescriptor(m *Member) string {
	s, _ := c.ConstantPool.UTF8(m.DescriptorIndex)
	return s
}

// AttributeName returns the name of an attribute.
func (c *ClassFile) AttributeName(a *Attribute) string {
	s, _ := c.ConstantPool.UTF8(a.NameIndex)
	return s
}

// FindAttribute returns the index of the first class-level attribute with
// the given name, or -1.
func (c *ClassFile) FindAttribute(name string) int {
	for i := range c.Attributes {
		if c.AttributeName(&c.Attributes[i]) == name {
			return i
		}
	}
	return -1
}
