package jarscan

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestClassifyProperties(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	entryName := gen.OneGenOf(
		gen.AlphaString(),
		gen.AlphaString().Map(func(s string) string { return s + "/" }),
		gen.AlphaString().Map(func(s string) string { return "com/" + s + ".class" }),
		gen.AlphaString().Map(func(s string) string { return "lib/" + s + ".jar" }),
		gen.AlphaString().Map(func(s string) string { return metaInfPrefix + s }),
		gen.AlphaString().Map(func(s string) string { return versionsPrefix + "11/" + s + ".class" }),
	)

	properties.Property("names ending in / are always skipped", prop.ForAll(
		func(name string, multiRelease bool) bool {
			return Classify(name+"/", multiRelease) == Skip
		},
		gen.AlphaString(),
		gen.Bool(),
	))

	properties.Property("multi-release only changes versioned entries", prop.ForAll(
		func(name string) bool {
			plain, mr := Classify(name, false), Classify(name, true)
			if strings.HasPrefix(name, versionsPrefix) && !strings.HasSuffix(name, "/") {
				return plain == Ignore && mr == VersionMarker
			}
			return plain == mr
		},
		entryName,
	))

	properties.Property("META-INF entries never become classes or archives", prop.ForAll(
		func(name string, multiRelease bool) bool {
			if !strings.HasPrefix(name, metaInfPrefix) {
				return true
			}
			d := Classify(name, multiRelease)
			return d != Class && d != Nested && d != Module && d != Resource
		},
		entryName,
		gen.Bool(),
	))

	properties.Property("release versions round-trip", prop.ForAll(
		func(release int, rest string) bool {
			got, err := ReleaseVersion(versionsPrefix + strconv.Itoa(release) + "/" + rest)
			return err == nil && got == release
		},
		gen.IntRange(0, 1<<20),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
