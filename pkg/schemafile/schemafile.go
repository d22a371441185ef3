// Package schemafile reads and writes form documents: a title plus the
// ordered field drafts, stored as JSON or YAML. Field ids are session scoped
// and never stored.
package schemafile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 1

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnsupportedVersion is returned for documents newer than this package.
	ErrUnsupportedVersion = errors.New("schemafile: unsupported document version")
	// ErrUnknownFormat is returned for formats other than JSON and YAML.
	ErrUnknownFormat = errors.New("schemafile: unknown format")
)

// Document is a stored form.
type Document struct {
	Version     int                `json:"version" yaml:"version"`
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []model.FieldDraft `json:"fields" yaml:"fields"`
	Values      map[string]string  `json:"values,omitempty" yaml:"values,omitempty"`
}

// FormatFromPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// FromFields builds a document from a finalized schema.
func FromFields(title string, fields []model.FieldSchema, values map[string]string) Document {
	doc := Document{Version: CurrentVersion, Title: title}
	for _, field := range fields {
		doc.Fields = append(doc.Fields, model.DraftFrom(field))
	}
	if len(values) > 0 {
		doc.Values = make(map[string]string, len(values))
		for k, v := range values {
			doc.Values[k] = v
		}
	}
	return doc.unbound()
}

// Decode parses a document. Unknown keys are errors.
func Decode(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("schemafile: decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("schemafile: decode yaml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if doc.Version > CurrentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	return doc.unbound(), nil
}

// Encode serialises a document.
func Encode(doc Document, format Format) ([]byte, error) {
	doc = doc.unbound()
	doc.Version = CurrentVersion

	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("schemafile: encode json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("schemafile: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("schemafile: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Load reads a document from disk, choosing the format by extension.
func Load(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("schemafile: read %s: %w", path, err)
	}
	return Decode(data, FormatFromPath(path))
}

// LoadFS reads a document from fsys.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("schemafile: read %s: %w", name, err)
	}
	return Decode(data, FormatFromPath(name))
}

// Write stores a document on disk, choosing the format by extension. The
// file is written next to its destination first and then renamed into place.
func Write(ctx context.Context, path string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(doc, FormatFromPath(path))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("schemafile: write %s: %w", path, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("schemafile: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("schemafile: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("schemafile: write %s: %w", path, err)
	}
	return nil
}

func (d Document) unbound() Document {
	if d.Fields == nil {
		return d
	}
	fields := make([]model.FieldDraft, len(d.Fields))
	for i, field := range d.Fields {
		field.Attributes = field.Attributes.Clone()
		field.ID = 0
		fields[i] = field
	}
	d.Fields = fields
	return d
}
