package jarscan

import "github.com/meigma/jarscan/classfile"

// DefaultClassLoader is the initial class loader label set by the default
// class decoder.
const DefaultClassLoader = "Classpath"

// ClassDecoder converts raw class file bytes into a ClassRecord.
// Implementations must be safe for concurrent use.
type ClassDecoder interface {
	DecodeClass(data []byte) (*ClassRecord, error)
}

// ClassDecoderFunc adapts a function to ClassDecoder.
type ClassDecoderFunc func(data []byte) (*ClassRecord, error)

// DecodeClass calls f(data).
func (f ClassDecoderFunc) DecodeClass(data []byte) (*ClassRecord, error) {
	return f(data)
}

// ModuleDecoder converts raw module-info.class bytes into a ModuleDescriptor.
// Implementations must be safe for concurrent use.
type ModuleDecoder interface {
	DecodeModule(data []byte) (*ModuleDescriptor, error)
}

// ModuleDecoderFunc adapts a function to ModuleDecoder.
type ModuleDecoderFunc func(data []byte) (*ModuleDescriptor, error)

// DecodeModule calls f(data).
func (f ModuleDecoderFunc) DecodeModule(data []byte) (*ModuleDescriptor, error) {
	return f(data)
}

// Labeler is implemented by class decoders that label every class with
// the same class loader name. Loaders configured with a cache use it to
// relabel cached classes, so a cache filled by one decoder can serve
// another. Decoders that do not implement Labeler get back the labels
// stored by whichever decoder filled the cache.
type Labeler interface {
	ClassLoader() string
}

// NewClassDecoder returns a ClassDecoder backed by package classfile that
// labels every class with the given class loader name. The returned
// decoder implements Labeler.
func NewClassDecoder(classLoader string) ClassDecoder {
	return labeledDecoder{classLoader: classLoader}
}

type labeledDecoder struct {
	classLoader string
}

func (d labeledDecoder) ClassLoader() string {
	return d.classLoader
}

func (d labeledDecoder) DecodeClass(data []byte) (*ClassRecord, error) {
	c, err := classfile.Decode(data)
	if err != nil {
		return nil, err
	}
	return &ClassRecord{
		ClassName:    c.Name,
		SuperName:    c.SuperName,
		Interfaces:   c.Interfaces,
		MajorVersion: c.MajorVersion,
		MinorVersion: c.MinorVersion,
		AccessFlags:  c.AccessFlags,
		Fields:       c.Fields,
		Methods:      c.Methods,
		ClassLoader:  d.classLoader,
	}, nil
}

// NewModuleDecoder returns a ModuleDecoder backed by package classfile.
func NewModuleDecoder() ModuleDecoder {
	return ModuleDecoderFunc(classfile.DecodeModule)
}
