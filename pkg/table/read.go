package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/crossflow/pkg/errors"
)

// Format identifies a supported input encoding.
type Format string

// Supported input formats.
const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the input format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported input file %s (want .csv, .tsv, .json, .yaml)", filepath.Base(path))
}

// ReadFile reads the table at path, choosing the decoder from its extension.
func ReadFile(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := Read(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read decodes a table in the given format from r.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return readDelimited(r, ',')
	case FormatTSV:
		return readDelimited(r, '\t')
	case FormatJSON:
		return readJSON(r)
	case FormatYAML:
		return readYAML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}

// readDelimited treats the first record as the header. Blank header cells get
// positional names and repeated names get a numeric suffix so every column
// stays addressable.
func readDelimited(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read header")
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	columns := uniqueColumns(header)

	t := &Table{Columns: columns}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read row %d", len(t.Rows)+1)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func uniqueColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// readJSON expects an array of objects. JSON objects carry no key order, so
// the keys of each row are added to the column list in sorted order the
// first time they are seen.
func readJSON(r io.Reader) (*Table, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return &Table{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON rows")
	}

	t := &Table{Rows: make([]Row, 0, len(records))}
	known := make(map[string]bool)
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !known[k] {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			known[k] = true
			t.Columns = append(t.Columns, k)
		}
		t.Rows = append(t.Rows, Row(rec))
	}
	return t, nil
}

// readYAML expects a sequence of mappings and keeps the key order of the
// mappings, which yaml.Node preserves.
func readYAML(r io.Reader) (*Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &Table{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode YAML rows")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, errors.New(errors.ErrCodeInvalidInput, "YAML rows must be a sequence of mappings (line %d)", root.Line)
	}

	t := &Table{Rows: make([]Row, 0, len(root.Content))}
	known := make(map[string]bool)
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, errors.New(errors.ErrCodeInvalidInput, "YAML row at line %d is not a mapping", item.Line)
		}
		row := make(Row, len(item.Content)/2)
		for i := 0; i+1 < len(item.Content); i += 2 {
			key := item.Content[i].Value
			var v any
			if err := item.Content[i+1].Decode(&v); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %q at line %d", key, item.Content[i+1].Line)
			}
			row[key] = v
			if !known[key] {
				known[key] = true
				t.Columns = append(t.Columns, key)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
