package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/edgy/edgy/pkg/mesh"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a mesh: a vertex count, faces as
// vertex-index polygons, loose edges and optional 2D positions used for
// picking.
type Document struct {
	Name   string      `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Verts  int         `json:"verts" yaml:"verts" toml:"verts" validate:"gte=0"`
	Faces  [][]int     `json:"faces,omitempty" yaml:"faces,omitempty" toml:"faces,omitempty" validate:"dive,min=3"`
	Wires  [][]int     `json:"wires,omitempty" yaml:"wires,omitempty" toml:"wires,omitempty" validate:"dive,len=2"`
	Coords [][]float64 `json:"coords,omitempty" yaml:"coords,omitempty" toml:"coords,omitempty" validate:"dive,len=2"`
}

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported mesh file extension: %s", filepath.Ext(path))
	}
}

var validate = validator.New()

// Validate checks the document's shape and that every index refers to an
// existing vertex.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &mesh.InvalidDocumentError{
				Field:  strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Document.")),
				Reason: fmt.Sprintf("failed %q check", fe.Tag()),
			}
		}
		return &mesh.InvalidDocumentError{Reason: err.Error()}
	}

	checkVert := func(field string, v int) error {
		if v < 0 || v >= d.Verts {
			return &mesh.InvalidDocumentError{
				Field:  field,
				Reason: fmt.Sprintf("vertex %d out of range [0, %d)", v, d.Verts),
			}
		}
		return nil
	}

	for i, face := range d.Faces {
		field := fmt.Sprintf("faces[%d]", i)
		seen := make(map[int]bool, len(face))
		for _, v := range face {
			if err := checkVert(field, v); err != nil {
				return err
			}
			if seen[v] {
				return &mesh.InvalidDocumentError{
					Field:  field,
					Reason: fmt.Sprintf("vertex %d repeated", v),
				}
			}
			seen[v] = true
		}
	}
	for i, w := range d.Wires {
		field := fmt.Sprintf("wires[%d]", i)
		for _, v := range w {
			if err := checkVert(field, v); err != nil {
				return err
			}
		}
		if w[0] == w[1] {
			return &mesh.InvalidDocumentError{Field: field, Reason: "edge joins a vertex to itself"}
		}
	}
	if len(d.Coords) > 0 && len(d.Coords) != d.Verts {
		return &mesh.InvalidDocumentError{
			Field:  "coords",
			Reason: fmt.Sprintf("expected %d positions, got %d", d.Verts, len(d.Coords)),
		}
	}
	return nil
}

// DecodeDocument reads a document in the given format.
func DecodeDocument(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json mesh: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml mesh: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml mesh: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeDocument writes doc in the given format.
func EncodeDocument(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unsupported mesh format: %s", format)
	}
}

// LoadDocument reads a document from a .json, .yaml/.yml or .toml file.
func LoadDocument(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh file: %w", err)
	}
	defer f.Close()
	return DecodeDocument(f, format)
}

// Load reads a mesh file and builds a mesh from it.
func Load(path string, opts ...Option) (*Mesh, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return New(doc, opts...)
}
