package manifest

import "slices"

// Document is the parsed content of a manifest file.
type Document struct {
	Package         string `json:"package,omitempty"`
	Application     string `json:"application,omitempty"`
	MinSDK          int    `json:"minSdk,omitempty"`
	TargetSDK       int    `json:"targetSdk,omitempty"`
	MaxSDK          int    `json:"maxSdk,omitempty"`
	BinaryResources bool   `json:"binaryResources,omitempty"`
}

// Descriptor is an immutable, resolved manifest. Library descriptors are fully
// built before the descriptor that embeds them.
type Descriptor struct {
	key       string
	id        Identifier
	doc       Document
	libraries []*Descriptor
}

func newDescriptor(id Identifier, doc Document, libs []*Descriptor) *Descriptor {
	return &Descriptor{key: id.Key(), id: id, doc: doc, libraries: libs}
}

// Key returns the identifier key the descriptor was resolved from.
func (d *Descriptor) Key() string { return d.key }

// Identifier returns the identifier the descriptor was resolved from.
func (d *Descriptor) Identifier() Identifier { return d.id }

// PackageName returns the configured package name, falling back to the one
// declared in the manifest file.
func (d *Descriptor) PackageName() string {
	if d.id.PackageName != "" {
		return d.id.PackageName
	}
	return d.doc.Package
}

// Application returns the application class declared in the manifest.
func (d *Descriptor) Application() string { return d.doc.Application }

// MinSDK returns the declared minimum level, or 0.
func (d *Descriptor) MinSDK() int { return d.doc.MinSDK }

// TargetSDK returns the declared target level, or 0.
func (d *Descriptor) TargetSDK() int { return d.doc.TargetSDK }

// MaxSDK returns the declared maximum level, or 0.
func (d *Descriptor) MaxSDK() int { return d.doc.MaxSDK }

// Libraries returns the library descriptors in declaration order.
func (d *Descriptor) Libraries() []*Descriptor { return slices.Clone(d.libraries) }

// SupportsLegacyResources reports whether raw resources are available for the
// legacy resource pipeline.
func (d *Descriptor) SupportsLegacyResources() bool {
	return d.id.ResourceDir != ""
}

// SupportsBinaryResources reports whether compiled resources are available:
// an APK is declared, the manifest opts in, or there is no manifest at all and
// only framework resources are used.
func (d *Descriptor) SupportsBinaryResources() bool {
	return d.id.APKFile != "" || d.doc.BinaryResources || d.id.ManifestFile == ""
}
