// Package classfile decodes Java class files.
//
// Decode reads the structural header of a class file: version, access
// flags, the class and super class names, implemented interfaces, and the
// names and descriptors of declared fields and methods. Method bodies and
// other attributes are skipped.
//
// DecodeModule reads a module-info.class file and returns the contents of
// its Module attribute.
//
// Names are returned in internal form (for example "java/lang/String").
package classfile
