package classfile

import "fmt"

const magic = 0xCAFEBABE

// Access flags relevant to inventory consumers.
const (
	AccPublic     = 0x0001
	AccFinal      = 0x0010
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

// Class is the decoded header of a class file.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16

	// Name is the internal name of the class ("com/example/Foo").
	Name string

	// SuperName is empty for java/lang/Object and module-info.
	SuperName string

	Interfaces []string
	Fields     []Member
	Methods    []Member
}

// Member is a declared field or method.
type Member struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// IsInterface reports whether the class is an interface.
func (c *Class) IsInterface() bool {
	return c.AccessFlags&AccInterface != 0
}

// IsModule reports whether the class file is a module descriptor.
func (c *Class) IsModule() bool {
	return c.AccessFlags&AccModule != 0
}

type attribute struct {
	name string
	info []byte
}

// parsed holds everything a decode pass reads from one class file.
type parsed struct {
	class Class
	pool  pool
	attrs []attribute
}

// Decode parses the class file in data.
func Decode(data []byte) (*Class, error) {
	p, err := parse(data)
	if err != nil {
		return nil, err
	}
	return &p.class, nil
}

func parse(data []byte) (*parsed, error) {
	r := &reader{buf: data}
	if r.u4() != magic {
		if r.err != nil {
			return nil, r.err
		}
		return nil, ErrBadMagic
	}

	p := &parsed{}
	p.class.MinorVersion = r.u2()
	p.class.MajorVersion = r.u2()

	cp, err := readPool(r)
	if err != nil {
		return nil, err
	}
	p.pool = cp

	p.class.AccessFlags = r.u2()
	thisIndex := r.u2()
	superIndex := r.u2()
	if r.err != nil {
		return nil, r.err
	}

	if p.class.Name, err = cp.named(thisIndex, tagClass); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	if superIndex != 0 {
		if p.class.SuperName, err = cp.named(superIndex, tagClass); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	count := int(r.u2())
	for range count {
		name, err := cp.named(r.u2(), tagClass)
		if r.err != nil {
			return nil, r.err
		}
		if err != nil {
			return nil, fmt.Errorf("interfaces: %w", err)
		}
		p.class.Interfaces = append(p.class.Interfaces, name)
	}

	if p.class.Fields, err = readMembers(r, cp); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	if p.class.Methods, err = readMembers(r, cp); err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}
	if p.attrs, err = readAttributes(r, cp); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	return p, nil
}

func readMembers(r *reader, cp pool) ([]Member, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	members := make([]Member, 0, count)
	for range count {
		flags := r.u2()
		nameIndex := r.u2()
		descIndex := r.u2()
		if _, err := readAttributes(r, cp); err != nil {
			return nil, err
		}
		name, err := cp.utf8(nameIndex)
		if err != nil {
			return nil, err
		}
		desc, err := cp.utf8(descIndex)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{AccessFlags: flags, Name: name, Descriptor: desc})
	}
	return members, nil
}

func readAttributes(r *reader, cp pool) ([]attribute, error) {
	count := int(r.u2())
	var attrs []attribute
	for range count {
		nameIndex := r.u2()
		length := r.u4()
		info := r.take(int(length))
		if r.err != nil {
			return nil, r.err
		}
		name, err := cp.utf8(nameIndex)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attribute{name: name, info: info})
	}
	if r.err != nil {
		return nil, r.err
	}
	return attrs, nil
}
