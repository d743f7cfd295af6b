package manifest

import (
	"slices"
	"strconv"
	"strings"
)

// Identifier names a manifest and everything needed to build its descriptor.
// Two identifiers with equal fields, libraries included and in order, are the
// same manifest.
type Identifier struct {
	ManifestFile string
	ResourceDir  string
	AssetDir     string
	APKFile      string
	PackageName  string
	Libraries    []Identifier
}

// Key returns a canonical string for id, suitable as a map key.
func (id Identifier) Key() string {
	var b strings.Builder
	id.writeKey(&b)
	return b.String()
}

func (id Identifier) writeKey(b *strings.Builder) {
	b.WriteByte('{')
	for _, f := range []string{id.ManifestFile, id.ResourceDir, id.AssetDir, id.APKFile, id.PackageName} {
		b.WriteString(strconv.Quote(f))
		b.WriteByte(',')
	}
	b.WriteByte('[')
	for i, lib := range id.Libraries {
		if i > 0 {
			b.WriteByte(',')
		}
		lib.writeKey(b)
	}
	b.WriteString("]}")
}

// Equal reports whether id and other identify the same manifest.
func (id Identifier) Equal(other Identifier) bool {
	return id.ManifestFile == other.ManifestFile &&
		id.ResourceDir == other.ResourceDir &&
		id.AssetDir == other.AssetDir &&
		id.APKFile == other.APKFile &&
		id.PackageName == other.PackageName &&
		slices.EqualFunc(id.Libraries, other.Libraries, Identifier.Equal)
}

// String returns the manifest file, or "(no manifest)".
func (id Identifier) String() string {
	if id.ManifestFile == "" {
		return "(no manifest)"
	}
	return id.ManifestFile
}
