package classfile

import "errors"

var (
	// ErrBadMagic is returned when the data does not start with 0xCAFEBABE.
	ErrBadMagic = errors.New("classfile: bad magic number")

	// ErrTruncated is returned when the data ends before the structure does.
	ErrTruncated = errors.New("classfile: truncated class file")

	// ErrConstantPool is returned for an invalid constant pool index or tag.
	ErrConstantPool = errors.New("classfile: invalid constant pool reference")

	// ErrNoModule is returned by DecodeModule when no Module attribute exists.
	ErrNoModule = errors.New("classfile: missing Module attribute")
)
