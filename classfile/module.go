package classfile

import "fmt"

// Module is the content of a Module attribute (JVMS 4.7.25).
type Module struct {
	Name     string
	Flags    uint16
	Version  string
	Requires []Require
	Exports  []Export
	Opens    []Export
	Uses     []string
	Provides []Provide
}

// Require is a dependency on another module.
type Require struct {
	Module  string
	Flags   uint16
	Version string
}

// Export is an exported or opened package, optionally qualified to a set
// of target modules.
type Export struct {
	Package string
	Flags   uint16
	To      []string
}

// Provide is a service implementation declaration.
type Provide struct {
	Service string
	With    []string
}

// DecodeModule parses a module-info.class file.
func DecodeModule(data []byte) (*Module, error) {
	p, err := parse(data)
	if err != nil {
		return nil, err
	}
	for _, attr := range p.attrs {
		if attr.name == "Module" {
			return readModule(&reader{buf: attr.info}, p.pool)
		}
	}
	return nil, ErrNoModule
}

func readModule(r *reader, cp pool) (*Module, error) {
	m := &Module{}
	nameIndex := r.u2()
	m.Flags = r.u2()
	versionIndex := r.u2()
	if r.err != nil {
		return nil, r.err
	}
	var err error
	if m.Name, err = cp.named(nameIndex, tagModule); err != nil {
		return nil, fmt.Errorf("module name: %w", err)
	}
	if m.Version, err = cp.optionalUTF8(versionIndex); err != nil {
		return nil, fmt.Errorf("module version: %w", err)
	}

	for range int(r.u2()) {
		req := Require{}
		moduleIndex := r.u2()
		req.Flags = r.u2()
		reqVersion := r.u2()
		if r.err != nil {
			return nil, r.err
		}
		if req.Module, err = cp.named(moduleIndex, tagModule); err != nil {
			return nil, fmt.Errorf("requires: %w", err)
		}
		if req.Version, err = cp.optionalUTF8(reqVersion); err != nil {
			return nil, fmt.Errorf("requires: %w", err)
		}
		m.Requires = append(m.Requires, req)
	}

	if m.Exports, err = readExports(r, cp); err != nil {
		return nil, fmt.Errorf("exports: %w", err)
	}
	if m.Opens, err = readExports(r, cp); err != nil {
		return nil, fmt.Errorf("opens: %w", err)
	}

	if m.Uses, err = readNames(r, cp, tagClass); err != nil {
		return nil, fmt.Errorf("uses: %w", err)
	}

	for range int(r.u2()) {
		prov := Provide{}
		serviceIndex := r.u2()
		if prov.Service, err = cp.named(serviceIndex, tagClass); err != nil {
			if r.err != nil {
				return nil, r.err
			}
			return nil, fmt.Errorf("provides: %w", err)
		}
		if prov.With, err = readNames(r, cp, tagClass); err != nil {
			return nil, fmt.Errorf("provides: %w", err)
		}
		m.Provides = append(m.Provides, prov)
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func readExports(r *reader, cp pool) ([]Export, error) {
	var exports []Export
	for range int(r.u2()) {
		exp := Export{}
		pkgIndex := r.u2()
		exp.Flags = r.u2()
		if r.err != nil {
			return nil, r.err
		}
		var err error
		if exp.Package, err = cp.named(pkgIndex, tagPackage); err != nil {
			return nil, err
		}
		if exp.To, err = readNames(r, cp, tagModule); err != nil {
			return nil, err
		}
		exports = append(exports, exp)
	}
	if r.err != nil {
		return nil, r.err
	}
	return exports, nil
}

// readNames reads a u2 count followed by that many constant pool indexes
// of the given tag.
func readNames(r *reader, cp pool, tag uint8) ([]string, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	var names []string
	for range count {
		index := r.u2()
		if r.err != nil {
			return nil, r.err
		}
		name, err := cp.named(index, tag)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
