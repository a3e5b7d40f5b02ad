package classfile

import "math"

// Constant is one constant pool entry. Which fields are meaningful depends
// on Tag:
//
//	Utf8                          UTF8 (raw modified UTF-8 bytes)
//	Integer, Float                Bits (low 32 bits)
//	Long, Double                  Bits
//	Class, String, MethodType,
//	Module, Package               Index1
//	Fieldref, Methodref,
//	InterfaceMethodref            Index1 = class, Index2 = name_and_type
//	NameAndType                   Index1 = name, Index2 = descriptor
//	Dynamic, InvokeDynamic        Index1 = bootstrap method, Index2 = name_and_type
//	MethodHandle                  RefKind, Index1 = reference
//
// The zero Constant (Tag 0) marks slot 0 and the unusable slot following a
// Long or Double.
type Constant struct {
	UTF8    string
	Bits    uint64
	Index1  uint16
	Index2  uint16
	Tag     Tag
	RefKind uint8
}

// ConstantPool is indexed exactly like the class file: slot 0 is unused.
type ConstantPool []Constant

// NewConstantPool returns an empty pool holding only the reserved slot 0.
func NewConstantPool() ConstantPool {
	return ConstantPool{{}}
}

// Get returns the entry at index i, or false when i is out of range or an
// unusable slot.
func (p ConstantPool) Get(i uint16) (Constant, bool) {
	if i == 0 || int(i) >= len(p) || p[i].Tag == 0 {
		return Constant{}, false
	}
	return p[i], true
}

// UTF8 returns the string of a CONSTANT_Utf8 entry.
func (p ConstantPool) UTF8(i uint16) (string, bool) {
	c, ok := p.Get(i)
	if !ok || c.Tag != TagUTF8 {
		return "", false
	}
	return c.UTF8, true
}

// ClassName returns the internal name referenced by a CONSTANT_Class entry.
func (p ConstantPool) ClassName(i uint16) (string, bool) {
	c, ok := p.Get(i)
	if !ok || c.Tag != TagClass {
		return "", false
	}
	return p.UTF8(c.Index1)
}

func (p *ConstantPool) add(c Constant) uint16 {
	if len(*p) == 0 {
		*p = NewConstantPool()
	}
	idx := uint16(len(*p))
	*p = append(*p, c)
	if c.Tag.wide() {
		*p = append(*p, Constant{})
	}
	return idx
}

// AddUTF8 returns the index of a Utf8 entry for s, appending one if needed.
func (p *ConstantPool) AddUTF8(s string) uint16 {
	for i, c := range *p {
		if c.Tag == TagUTF8 && c.UTF8 == s {
			return uint16(i)
		}
	}
	return p.add(Constant{Tag: TagUTF8, UTF8: s})
}

// AddClass returns the index of a Class entry for the internal name.
func (p *ConstantPool) AddClass(name string) uint16 {
	nameIdx := p.AddUTF8(name)
	for i, c := range *p {
		if c.Tag == TagClass && c.Index1 == nameIdx {
			return uint16(i)
		}
	}
	return p.add(Constant{Tag: TagClass, Index1: nameIdx})
}

// AddString returns the index of a String entry.
func (p *ConstantPool) AddString(s string) uint16 {
	return p.add(Constant{Tag: TagString, Index1: p.AddUTF8(s)})
}

// AddNameAndType returns the index of a NameAndType entry.
func (p *ConstantPool) AddNameAndType(name, descriptor string) uint16 {
	n := p.AddUTF8(name)
	d := p.AddUTF8(descriptor)
	return p.add(Constant{Tag: TagNameAndType, Index1: n, Index2: d})
}

// AddInteger appends an Integer entry.
func (p *ConstantPool) AddInteger(v int32) uint16 {
	return p.add(Constant{Tag: TagInteger, Bits: uint64(uint32(v))})
}

// AddLong appends a Long entry, which occupies two slots.
func (p *ConstantPool) AddLong(v int64) uint16 {
	return p.add(Constant{Tag: TagLong, Bits: uint64(v)})
}

// AddDouble appends a Double entry, which occupies two slots.
func (p *ConstantPool) AddDouble(v float64) uint16 {
	return p.add(Constant{Tag: TagDouble, Bits: math.Float64bits(v)})
}

// Int32 returns the value of an Integer entry.
func (c Constant) Int32() int32 {
	return int32(uint32(c.Bits))
}

// Int64 returns the value of a Long entry.
func (c Constant) Int64() int64 {
	return int64(c.Bits)
}

// Float64 returns the value of a Double entry.
func (c Constant) Float64() float64 {
	return math.Float64frombits(c.Bits)
}

// Float32 returns the value of a Float entry.
func (c Constant) Float32() float32 {
	return math.Float32frombits(uint32(c.Bits))
}
