// Package loader reads collection import files into records.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/portalsearch/internal/models"
)

// Collection is the content of one import file.
type Collection struct {
	Name    string
	Records []models.Record
}

// Loader parses collection files. The collection name is the file's base name
// without extension, so imports/notes.json fills the "notes" collection.
type Loader struct{}

// NewLoader returns a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// SupportedExtensions lists the file extensions LoadFile understands.
func SupportedExtensions() []string {
	return []string{".json", ".yaml", ".yml", ".xlsx"}
}

// CollectionName returns the collection a file at path imports into.
func CollectionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileIDNamespace scopes the name-based UUIDs given to id-less records in import files.
var fileIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("portalsearch:import"))

// LoadFile reads the file at path. Records without an id receive one derived
// from the collection name and their position, so re-reading an unchanged
// file yields the same ids.
func (l *Loader) LoadFile(path string) (*Collection, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	records, err := l.LoadBytes(content, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	name := CollectionName(path)
	AssignPositionalIDs(name, records)
	return &Collection{Name: name, Records: records}, nil
}

// LoadBytes parses content according to ext (with leading dot).
func (l *Loader) LoadBytes(content []byte, ext string) ([]models.Record, error) {
	switch ext {
	case ".json":
		return loadJSON(content)
	case ".yaml", ".yml":
		return loadYAML(content)
	case ".xlsx":
		return loadExcel(content)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// AssignIDs gives every record without an "id" a random UUID and returns how many it changed.
func AssignIDs(records []models.Record) int {
	n := 0
	for _, rec := range records {
		if rec != nil && rec.ID() == "" {
			rec["id"] = uuid.NewString()
			n++
		}
	}
	return n
}

// AssignPositionalIDs gives every record without an "id" a UUID derived from
// collection and the record's index, and returns how many it changed.
func AssignPositionalIDs(collection string, records []models.Record) int {
	n := 0
	for i, rec := range records {
		if rec != nil && rec.ID() == "" {
			rec["id"] = uuid.NewSHA1(fileIDNamespace, []byte(collection+"/"+strconv.Itoa(i))).String()
			n++
		}
	}
	return n
}

func loadJSON(content []byte) ([]models.Record, error) {
	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return []models.Record{}, nil
	}
	var records []models.Record
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("parse JSON: expected an array of objects: %w", err)
	}
	return compact(records), nil
}

func loadYAML(content []byte) ([]models.Record, error) {
	var records []models.Record
	if err := yaml.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("parse YAML: expected a sequence of mappings: %w", err)
	}
	return compact(records), nil
}

// compact drops null entries.
func compact(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}
