package classfile

import (
	"bytes"
	"fmt"

	"github.com/wippyai/class-widener/classfile/internal/binary"
	"github.com/wippyai/class-widener/errors"
)

// InnerClasses decodes the class-level InnerClasses attribute. The boolean
// is false when the class has no such attribute.
func (c *ClassFile) InnerClasses() ([]InnerClass, bool, error) {
	idx := c.FindAttribute(AttrInnerClasses)
	if idx < 0 {
		return nil, false, nil
	}
	entries, err := decodeInnerClasses(c.Attributes[idx].Info)
	if err != nil {
		return nil, true, errors.New(errors.PhaseParse, errors.KindMalformedClass).
			Path(c.ClassName(), AttrInnerClasses).
			Cause(err).
			Build()
	}
	return entries, true, nil
}

// SetInnerClasses replaces the body of the existing InnerClasses attribute,
// keeping its name index and position among the class attributes. If the
// class has no InnerClasses attribute one is appended.
func (c *ClassFile) SetInnerClasses(entries []InnerClass) error {
	if len(entries) > 0xFFFF {
		return errors.OutOfBounds(errors.PhaseEncode, []string{c.ClassName(), AttrInnerClasses}, len(entries), 0xFFFF)
	}
	info := encodeInnerClasses(entries)

	idx := c.FindAttribute(AttrInnerClasses)
	if idx < 0 {
		c.Attributes = append(c.Attributes, Attribute{
			NameIndex: c.ConstantPool.AddUTF8(AttrInnerClasses),
			Info:      info,
		})
		return nil
	}
	c.Attributes[idx].Info = info
	return nil
}

// InnerClassName returns the internal name of the entry's inner class.
func (c *ClassFile) InnerClassName(ic InnerClass) string {
	name, _ := c.ConstantPool.ClassName(ic.InnerClassInfo)
	return name
}

func decodeInnerClasses(info []byte) ([]InnerClass, error) {
	r := binary.NewReader(bytes.NewReader(info))
	n, err := r.ReadU2()
	if err != nil {
		return nil, r.WrapError(AttrInnerClasses, err)
	}
	if want := 2 + 8*int(n); want != len(info) {
		return nil, r.WrapError(AttrInnerClasses, fmt.Errorf("length %d, want %d for %d entries", len(info), want, n))
	}

	entries := make([]InnerClass, n)
	for i := range entries {
		e := &entries[i]
		if e.InnerClassInfo, err = r.ReadU2(); err != nil {
			return nil, r.WrapError(AttrInnerClasses, err)
		}
		if e.OuterClassInfo, err = r.ReadU2(); err != nil {
			return nil, r.WrapError(AttrInnerClasses, err)
		}
		if e.InnerName, err = r.ReadU2(); err != nil {
			return nil, r.WrapError(AttrInnerClasses, err)
		}
		flags, err := r.ReadU2()
		if err != nil {
			return nil, r.WrapError(AttrInnerClasses, err)
		}
		e.InnerAccessFlags = AccessFlags(flags)
	}
	return entries, nil
}

func encodeInnerClasses(entries []InnerClass) []byte {
	w := binary.NewWriterSize(2 + 8*len(entries))
	w.U2(uint16(len(entries)))
	for _, e := range entries {
		w.U2(e.InnerClassInfo)
		w.U2(e.OuterClassInfo)
		w.U2(e.InnerName)
		w.U2(uint16(e.InnerAccessFlags))
	}
	return w.Bytes()
}
