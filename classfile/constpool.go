package classfile

import (
	"fmt"
	"unicode"
	"unicode/utf16"
)

// Constant pool tags (JVMS 4.4).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type constant struct {
	tag  uint8
	utf8 string // tagUtf8
	ref  uint16 // name index for Class, Module, Package, String, MethodType
}

// pool is indexed from 1; slot 0 and the slot after a long or double are unused.
type pool []constant

func readPool(r *reader) (pool, error) {
	count := int(r.u2())
	p := make(pool, count)
	for i := 1; i < count; i++ {
		tag := r.u1()
		if r.err != nil {
			return nil, r.err
		}
		c := constant{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			c.utf8 = decodeModifiedUTF8(r.take(n))
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			c.ref = r.u2()
		case tagMethodHandle:
			r.skip(3)
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
			p[i] = c
			i++
			continue
		default:
			return nil, fmt.Errorf("%w: unknown tag %d at index %d", ErrConstantPool, tag, i)
		}
		p[i] = c
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func (p pool) get(index uint16, tag uint8) (constant, error) {
	if index == 0 || int(index) >= len(p) || p[index].tag != tag {
		return constant{}, fmt.Errorf("%w: index %d", ErrConstantPool, index)
	}
	return p[index], nil
}

func (p pool) utf8(index uint16) (string, error) {
	c, err := p.get(index, tagUtf8)
	if err != nil {
		return "", err
	}
	return c.utf8, nil
}

// named resolves a Class, Module or Package constant to its UTF-8 name.
func (p pool) named(index uint16, tag uint8) (string, error) {
	c, err := p.get(index, tag)
	if err != nil {
		return "", err
	}
	return p.utf8(c.ref)
}

// optionalUTF8 returns "" for index 0.
func (p pool) optionalUTF8(index uint16) (string, error) {
	if index == 0 {
		return "", nil
	}
	return p.utf8(index)
}

// decodeModifiedUTF8 converts the JVM's modified UTF-8 encoding: NUL is
// written as 0xC0 0x80 and supplementary characters as surrogate pairs.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, uint16(unicode.ReplacementChar))
			i++
		}
	}
	return string(utf16.Decode(units))
}
