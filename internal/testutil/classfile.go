package testutil

import (
	"encoding/binary"
	"slices"
	"strconv"
)

// ClassSpec describes a class file produced by ClassBytes.
type ClassSpec struct {
	Name        string // internal name, e.g. "com/example/Foo"
	Super       string // empty for none
	Interfaces  []string
	Fields      []MemberSpec
	Methods     []MemberSpec
	Major       uint16 // defaults to 52
	AccessFlags uint16 // defaults to ACC_PUBLIC|ACC_SUPER
}

// MemberSpec describes a field or method.
type MemberSpec struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// ModuleSpec describes a module-info.class produced by ModuleInfoBytes.
type ModuleSpec struct {
	Name     string
	Version  string
	Requires []string
	Exports  map[string][]string // package -> qualified targets
	Uses     []string
	Provides map[string][]string // service -> implementations
}

// ClassBytes assembles a minimal valid class file.
func ClassBytes(spec ClassSpec) []byte {
	cp := newPoolBuilder()
	this := cp.class(spec.Name)
	var super uint16
	if spec.Super != "" {
		super = cp.class(spec.Super)
	}
	ifaces := make([]uint16, 0, len(spec.Interfaces))
	for _, name := range spec.Interfaces {
		ifaces = append(ifaces, cp.class(name))
	}
	fields := memberIndexes(cp, spec.Fields)
	methods := memberIndexes(cp, spec.Methods)

	flags := spec.AccessFlags
	if flags == 0 {
		flags = 0x0021
	}
	major := spec.Major
	if major == 0 {
		major = 52
	}

	var body []byte
	body = u2(body, flags)
	body = u2(body, this)
	body = u2(body, super)
	body = u2(body, uint16(len(ifaces)))
	for _, i := range ifaces {
		body = u2(body, i)
	}
	body = appendMembers(body, spec.Fields, fields)
	body = appendMembers(body, spec.Methods, methods)
	body = u2(body, 0) // attributes
	return cp.classFile(major, body)
}

// ModuleInfoBytes assembles a module-info.class with a Module attribute.
func ModuleInfoBytes(spec ModuleSpec) []byte {
	cp := newPoolBuilder()
	this := cp.class("module-info")
	attrName := cp.utf8("Module")

	var attr []byte
	attr = u2(attr, cp.tagged(19, spec.Name))
	attr = u2(attr, 0) // flags
	if spec.Version != "" {
		attr = u2(attr, cp.utf8(spec.Version))
	} else {
		attr = u2(attr, 0)
	}
	attr = u2(attr, uint16(len(spec.Requires)))
	for _, req := range spec.Requires {
		attr = u2(attr, cp.tagged(19, req))
		attr = u2(attr, 0)
		attr = u2(attr, 0)
	}
	attr = u2(attr, uint16(len(spec.Exports)))
	for _, pkg := range sortedKeys(spec.Exports) {
		attr = u2(attr, cp.tagged(20, pkg))
		attr = u2(attr, 0)
		attr = u2(attr, uint16(len(spec.Exports[pkg])))
		for _, to := range spec.Exports[pkg] {
			attr = u2(attr, cp.tagged(19, to))
		}
	}
	attr = u2(attr, 0) // opens
	attr = u2(attr, uint16(len(spec.Uses)))
	for _, use := range spec.Uses {
		attr = u2(attr, cp.class(use))
	}
	attr = u2(attr, uint16(len(spec.Provides)))
	for _, svc := range sortedKeys(spec.Provides) {
		attr = u2(attr, cp.class(svc))
		attr = u2(attr, uint16(len(spec.Provides[svc])))
		for _, impl := range spec.Provides[svc] {
			attr = u2(attr, cp.class(impl))
		}
	}

	var body []byte
	body = u2(body, 0x8000) // ACC_MODULE
	body = u2(body, this)
	body = u2(body, 0)
	body = u2(body, 0) // interfaces
	body = u2(body, 0) // fields
	body = u2(body, 0) // methods
	body = u2(body, 1) // attributes
	body = u2(body, attrName)
	body = binary.BigEndian.AppendUint32(body, uint32(len(attr)))
	body = append(body, attr...)
	return cp.classFile(53, body)
}

type poolBuilder struct {
	entries [][]byte
	index   map[string]uint16
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{index: make(map[string]uint16)}
}

func (p *poolBuilder) add(key string, entry []byte) uint16 {
	if i, ok := p.index[key]; ok {
		return i
	}
	p.entries = append(p.entries, entry)
	i := uint16(len(p.entries))
	p.index[key] = i
	return i
}

func (p *poolBuilder) utf8(s string) uint16 {
	entry := []byte{1}
	entry = u2(entry, uint16(len(s)))
	entry = append(entry, s...)
	return p.add("u:"+s, entry)
}

func (p *poolBuilder) tagged(tag byte, name string) uint16 {
	ref := p.utf8(name)
	entry := u2([]byte{tag}, ref)
	return p.add(strconv.Itoa(int(tag))+":"+name, entry)
}

func (p *poolBuilder) class(name string) uint16 {
	return p.tagged(7, name)
}

func (p *poolBuilder) classFile(major uint16, body []byte) []byte {
	out := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	out = u2(out, 0)
	out = u2(out, major)
	out = u2(out, uint16(len(p.entries)+1))
	for _, e := range p.entries {
		out = append(out, e...)
	}
	return append(out, body...)
}

func memberIndexes(cp *poolBuilder, members []MemberSpec) [][2]uint16 {
	out := make([][2]uint16, 0, len(members))
	for _, m := range members {
		out = append(out, [2]uint16{cp.utf8(m.Name), cp.utf8(m.Descriptor)})
	}
	return out
}

func appendMembers(b []byte, members []MemberSpec, indexes [][2]uint16) []byte {
	b = u2(b, uint16(len(members)))
	for i, m := range members {
		b = u2(b, m.AccessFlags)
		b = u2(b, indexes[i][0])
		b = u2(b, indexes[i][1])
		b = u2(b, 0)
	}
	return b
}

func u2(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
