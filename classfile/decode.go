package classfile

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/class-widener/classfile/internal/binary"
	"github.com/wippyai/class-widener/errors"
)

// Parsing errors wrapped into MalformedClass errors by Parse.
var (
	ErrInvalidMagic    = stderrors.New("invalid class file magic number")
	ErrTrailingData    = stderrors.New("trailing data after class file")
	ErrInvalidConstant = stderrors.New("invalid constant pool entry")
	ErrBadIndex        = stderrors.New("constant pool index out of range or of wrong type")
)

// Parse parses a class file into its structural model. Any failure is
// returned as an *errors.Error of kind malformed_class carrying the byte
// offset at which parsing stopped.
func Parse(data []byte) (*ClassFile, error) {
	br := getReader(data)
	defer putReader(br)
	r := binary.NewReader(br)

	cf, err := parseClass(r)
	if err != nil {
		var pe *binary.ParseError
		if stderrors.As(err, &pe) {
			return nil, errors.MalformedClass(pe.Position, err)
		}
		return nil, errors.MalformedClass(r.Position(), err)
	}
	return cf, nil
}

func parseClass(r *binary.Reader) (*ClassFile, error) {
	magic, err := r.ReadU4()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, r.WrapError("header", ErrInvalidMagic)
	}

	cf := &ClassFile{}
	if cf.MinorVersion, err = r.ReadU2(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if cf.MajorVersion, err = r.ReadU2(); err != nil {
		return nil, r.WrapError("header", err)
	}

	if cf.ConstantPool, err = parseConstantPool(r); err != nil {
		return nil, err
	}

	flags, err := r.ReadU2()
	if err != nil {
		return nil, r.WrapError("access flags", err)
	}
	cf.AccessFlags = AccessFlags(flags)

	if cf.ThisClass, err = r.ReadU2(); err != nil {
		return nil, r.WrapError("this class", err)
	}
	if _, ok := cf.ConstantPool.ClassName(cf.ThisClass); !ok {
		return nil, r.WrapError("this class", ErrBadIndex)
	}
	if cf.SuperClass, err = r.ReadU2(); err != nil {
		return nil, r.WrapError("super class", err)
	}
	if cf.SuperClass != 0 {
		if _, ok := cf.ConstantPool.ClassName(cf.SuperClass); !ok {
			return nil, r.WrapError("super class", ErrBadIndex)
		}
	}

	count, err := r.ReadU2()
	if err != nil {
		return nil, r.WrapError("interfaces", err)
	}
	if count > 0 {
		cf.Interfaces = make([]uint16, count)
		for i := range cf.Interfaces {
			if cf.Interfaces[i], err = r.ReadU2(); err != nil {
				return nil, r.WrapError("interfaces", err)
			}
		}
	}

	if cf.Fields, err = parseMembers(r, cf.ConstantPool, "fields"); err != nil {
		return nil, err
	}
	if cf.Methods, err = parseMembers(r, cf.ConstantPool, "methods"); err != nil {
		return nil, err
	}
	if cf.Attributes, err = parseAttributes(r, cf.ConstantPool, "class attributes"); err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, r.WrapError("end", ErrTrailingData)
	}
	return cf, nil
}

func parseConstantPool(r *binary.Reader) (ConstantPool, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, r.WrapError("constant pool", err)
	}
	if count == 0 {
		return nil, r.WrapError("constant pool", fmt.Errorf("%w: count is zero", ErrInvalidConstant))
	}

	pool := make(ConstantPool, count)
	for i := 1; i < int(count); i++ {
		tag, err := r.ReadU1()
		if err != nil {
			return nil, r.WrapError("constant pool", err)
		}
		c := Constant{Tag: Tag(tag)}

		switch c.Tag {
		case TagUTF8:
			n, err := r.ReadU2()
			if err != nil {
				return nil, r.WrapError("constant pool", err)
			}
			b, err := r.ReadBytes(int(n))
			if err != nil {
				return nil, r.WrapError("constant pool", err)
			}
			c.UTF8 = string(b)
		case TagInteger, TagFloat:
			v, err := r.ReadU4()
			if err != nil {
				return nil, r.WrapError("constant pool", err)
			}
			c.Bits = uint64(v)
		case TagLong, TagDouble:
			if i+1 >= int(count) {
				return nil, r.WrapError("constant pool", fmt.Errorf("%w: %s in last slot %d", ErrInvalidConstant, c.Tag, i))
			}
			if c.Bits, err = r.ReadU8(); err != nil {
				return nil, r.WrapError("constant pool", err)
			}
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			if c.Index1, err = r.ReadU2(); err != nil {
				return nil, r.WrapError("constant pool", err)
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			if c.Index1, err = r.ReadU2(); err != nil {
				return nil, r.WrapError("constant pool", err)
			}
			if c.Index2, err = r.ReadU2(); err != nil {
				return nil, r.WrapError("constant pool", err)
			}
		case TagMethodHandle:
			if c.RefKind, err = r.ReadU1(); err != nil {
				return nil, r.WrapError("constant pool", err)
			}
			if c.Index1, err = r.ReadU2(); err != nil {
				return nil, r.WrapError("constant pool", err)
			}
		default:
			return nil, r.WrapError("constant pool", fmt.Errorf("%w: tag %d at slot %d", ErrInvalidConstant, tag, i))
		}

		pool[i] = c
		if c.Tag.wide() {
			i++
		}
	}
	return pool, nil
}

func parseMembers(r *binary.Reader, pool ConstantPool, section string) ([]Member, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, r.WrapError(section, err)
	}
	if count == 0 {
		return nil, nil
	}

	members := make([]Member, count)
	for i := range members {
		m := &members[i]
		flags, err := r.ReadU2()
		if err != nil {
			return nil, r.WrapError(section, err)
		}
		m.AccessFlags = AccessFlags(flags)
		if m.NameIndex, err = r.ReadU2(); err != nil {
			return nil, r.WrapError(section, err)
		}
		if m.DescriptorIndex, err = r.ReadU2(); err != nil {
			return nil, r.WrapError(section, err)
		}
		if _, ok := pool.UTF8(m.NameIndex); !ok {
			return nil, r.WrapError(section, ErrBadIndex)
		}
		if _, ok := pool.UTF8(m.DescriptorIndex); !ok {
			return nil, r.WrapError(section, ErrBadIndex)
		}
		if m.Attributes, err = parseAttributes(r, pool, section); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func parseAttributes(r *binary.Reader, pool ConstantPool, section string) ([]Attribute, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, r.WrapError(section, err)
	}
	if count == 0 {
		return nil, nil
	}

	attrs := make([]Attribute, count)
	for i := range attrs {
		a := &attrs[i]
		if a.NameIndex, err = r.ReadU2(); err != nil {
			return nil, r.WrapError(section, err)
		}
		if _, ok := pool.UTF8(a.NameIndex); !ok {
			return nil, r.WrapError(section, ErrBadIndex)
		}
		length, err := r.ReadU4()
		if err != nil {
			return nil, r.WrapError(section, err)
		}
		if uint64(length) > uint64(r.Len()) {
			return nil, r.WrapError(section, binary.ErrTruncated)
		}
		if a.Info, err = r.ReadBytes(int(length)); err != nil {
			return nil, r.WrapError(section, err)
		}
	}
	return attrs, nil
}
