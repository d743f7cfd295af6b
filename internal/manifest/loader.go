package manifest

import (
	"context"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Loader reads the manifest document an identifier points at.
type Loader interface {
	Load(ctx context.Context, id Identifier) (Document, error)
}

// FileLoader reads YAML manifest files from disk. An identifier without a
// manifest file yields an empty Document.
type FileLoader struct{}

var _ Loader = FileLoader{}

// Load implements Loader.
func (FileLoader) Load(ctx context.Context, id Identifier) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if id.ManifestFile == "" {
		return Document{}, nil
	}
	data, err := os.ReadFile(id.ManifestFile)
	if err != nil {
		return Document{}, fmt.Errorf("read manifest: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse manifest: %w", err)
	}
	return doc, nil
}
