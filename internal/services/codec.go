package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/models"
)

// ErrUnknownFormat is returned for store files with an unsupported extension
var ErrUnknownFormat = errors.New("unknown store format")

// Format is the on-disk encoding of a label store
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const pathColumn = "path"

// FormatForPath picks the format from the file extension. An empty override
// selects by extension.
func FormatForPath(path string, override string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(override))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch name {
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Decode reads a table in the given format
func (f Format) Decode(r io.Reader) (*models.AnnotationTable, error) {
	switch f {
	case FormatCSV:
		return decodeDelimited(r, ',')
	case FormatTSV:
		return decodeDelimited(r, '\t')
	case FormatJSON:
		var doc map[string]map[string]interface{}
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return models.NewAnnotationTable(), nil
			}
			return nil, fmt.Errorf("decode json store: %w", err)
		}
		return tableFromDocument(doc)
	case FormatYAML:
		var doc map[string]map[string]interface{}
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return models.NewAnnotationTable(), nil
			}
			return nil, fmt.Errorf("decode yaml store: %w", err)
		}
		return tableFromDocument(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Encode writes a table in the given format with rows in path order
func (f Format) Encode(w io.Writer, table *models.AnnotationTable) error {
	switch f {
	case FormatCSV:
		return encodeDelimited(w, ',', table)
	case FormatTSV:
		return encodeDelimited(w, '\t', table)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(documentFromTable(table)); err != nil {
			return fmt.Errorf("encode json store: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(documentFromTable(table)); err != nil {
			return fmt.Errorf("encode yaml store: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func encodeDelimited(w io.Writer, comma rune, table *models.AnnotationTable) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := append([]string{pathColumn}, labels.Columns()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var writeErr error
	table.Range(func(path string, row models.AnnotationRow) {
		if writeErr != nil {
			return
		}
		record := make([]string, 0, len(header))
		record = append(record, path)
		for _, tag := range labels.All() {
			record = append(record, strconv.FormatBool(row.Has(tag)))
		}
		record = append(record, strconv.FormatBool(row.Seen))
		writeErr = cw.Write(record)
	})
	if writeErr != nil {
		return fmt.Errorf("write row: %w", writeErr)
	}
	cw.Flush()
	return cw.Error()
}

// column maps a header cell to a row field: a tag, Seen, or ignored
type column struct {
	tag     labels.Tag
	seen    bool
	ignored bool
}

func decodeDelimited(r io.Reader, comma rune) (*models.AnnotationTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	table := models.NewAnnotationTable()
	if len(records) == 0 {
		return table, nil
	}

	header := records[0]
	cols := make([]column, len(header))
	for i, cell := range header {
		if i == 0 {
			continue
		}
		name := cleanCell(cell)
		if strings.EqualFold(name, labels.SeenColumn) {
			cols[i] = column{seen: true}
			continue
		}
		tag, err := labels.Parse(name)
		if err != nil {
			cols[i] = column{ignored: true}
			continue
		}
		cols[i] = column{tag: tag}
	}

	for line, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		// file names may start or end with spaces, only the BOM is dropped
		key := strings.TrimPrefix(record[0], "\ufeff")
		if strings.TrimSpace(key) == "" {
			continue
		}
		var row models.AnnotationRow
		for i := 1; i < len(record) && i < len(cols); i++ {
			if cols[i].ignored {
				continue
			}
			v, err := parseBool(record[i])
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line+2, cleanCell(header[i]), err)
			}
			if cols[i].seen {
				row.Seen = v
			} else {
				row = row.With(cols[i].tag, v)
			}
		}
		table.SetRow(NormalizeKey(key), row)
	}
	return table, nil
}

func tableFromDocument(doc map[string]map[string]interface{}) (*models.AnnotationTable, error) {
	table := models.NewAnnotationTable()
	for key, fields := range doc {
		var row models.AnnotationRow
		for name, raw := range fields {
			v, err := boolValue(raw)
			if err != nil {
				return nil, fmt.Errorf("%s field %q: %w", key, name, err)
			}
			if strings.EqualFold(strings.TrimSpace(name), labels.SeenColumn) {
				row.Seen = v
				continue
			}
			tag, err := labels.Parse(name)
			if err != nil {
				continue
			}
			row = row.With(tag, v)
		}
		table.SetRow(NormalizeKey(key), row)
	}
	return table, nil
}

func documentFromTable(table *models.AnnotationTable) map[string]map[string]bool {
	doc := make(map[string]map[string]bool, table.Len())
	table.Range(func(path string, row models.AnnotationRow) {
		fields := make(map[string]bool, labels.Count+1)
		for _, tag := range labels.All() {
			fields[tag.String()] = row.Has(tag)
		}
		fields[labels.SeenColumn] = row.Seen
		doc[path] = fields
	})
	return doc
}

func boolValue(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return parseBool(v)
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("unsupported value %v", raw)
	}
}

func parseBool(cell string) (bool, error) {
	cell = cleanCell(cell)
	if cell == "" {
		return false, nil
	}
	return strconv.ParseBool(cell)
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "\ufeff")
}
