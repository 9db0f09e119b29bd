// Package jarscan builds an in-memory inventory of Java archives.
//
// A [JarLoader] walks one JAR file and every JAR nested inside it,
// producing a flat list of [ArchiveRecord] values: one per archive, each
// listing the archive's class files, resources, multi-release versions and
// module descriptor. Nested archives are named after their containment
// path, for example "app.jar!/lib/util.jar".
//
// A [WarLoader] reads a web archive and loads every WEB-INF/lib/*.jar in
// parallel, returning the combined records sorted by case-insensitive
// name.
//
// # Quick Start
//
//	loader := jarscan.NewJarLoader()
//	res, err := loader.LoadFile(ctx, "app.jar")
//	if err != nil {
//	    return err
//	}
//	for _, a := range res.Archives {
//	    fmt.Println(a.Name, a.Digest, len(a.Classes))
//	}
//
// # Failures
//
// Within one JAR, a class file that cannot be decoded aborts the load of
// that JAR and of every archive containing it. Failures that do not abort
// the load, such as an unparsable META-INF/versions/ directory or (by
// default) a broken library inside a web archive, are returned in
// [Result.Problems].
//
// # Caching
//
// [WithCache] stores the decoded contents of each archive keyed by its
// content digest. Archives seen before skip class decoding entirely.
package jarscan
