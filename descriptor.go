package jarscan

import (
	"strconv"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// MediaTypeJavaArchive is the media type of descriptors built by Descriptor.
const MediaTypeJavaArchive = "application/java-archive"

// Annotation keys set by Descriptor, in addition to ocispec.AnnotationTitle.
const (
	AnnotationReleases  = "dev.meigma.jarscan.releases"
	AnnotationModule    = "dev.meigma.jarscan.module"
	AnnotationClasses   = "dev.meigma.jarscan.classes"
	AnnotationResources = "dev.meigma.jarscan.resources"
)

// Descriptor describes an archive record as an OCI content descriptor, so
// inventories can be attached to images or pushed as artifacts.
func Descriptor(r ArchiveRecord) ocispec.Descriptor {
	annotations := map[string]string{
		ocispec.AnnotationTitle: r.Name,
		AnnotationClasses:       strconv.Itoa(len(r.Classes)),
		AnnotationResources:     strconv.Itoa(len(r.Resources)),
	}
	if len(r.Releases) > 0 {
		releases := make([]string, len(r.Releases))
		for i, v := range r.Releases {
			releases[i] = strconv.Itoa(v)
		}
		annotations[AnnotationReleases] = strings.Join(releases, ",")
	}
	if r.Module != nil && r.Module.Name != "" {
		annotations[AnnotationModule] = r.Module.Name
	}
	return ocispec.Descriptor{
		MediaType:   MediaTypeJavaArchive,
		Digest:      r.Digest,
		Size:        r.Size,
		Annotations: annotations,
	}
}

// Descriptors returns the descriptors of every archive in the result.
func (r *Result) Descriptors() []ocispec.Descriptor {
	out := make([]ocispec.Descriptor, len(r.Archives))
	for i, a := range r.Archives {
		out[i] = Descriptor(a)
	}
	return out
}
