package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is an export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want xlsx, csv or json)", s)
	}
}

// Ext is the file extension for f, with the dot.
func (f Format) Ext() string { return "." + string(f) }

// Artifact is one output file. Suffix is inserted before the extension
// of the requested output path; the main artifact has none.
type Artifact struct {
	Suffix string
	Data   []byte
}

// Path places a into the output path, e.g. "plan.csv" + "_summary"
// gives "plan_summary.csv".
func (a Artifact) Path(output string) string {
	if a.Suffix == "" {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + a.Suffix + ext
}

// Render encodes doc. xlsx and json produce one artifact; csv produces
// one per sheet.
func Render(doc Document, format Format, maxWidth int) ([]Artifact, error) {
	switch format {
	case FormatXLSX:
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, doc, maxWidth); err != nil {
			return nil, err
		}
		return []Artifact{{Data: buf.Bytes()}}, nil

	case FormatCSV:
		var out []Artifact
		for i, s := range doc.Sheets() {
			data, err := encodeCSV(s)
			if err != nil {
				return nil, err
			}
			a := Artifact{Data: data}
			if i > 0 {
				a.Suffix = "_" + csvSuffix(s.Name)
			}
			out = append(out, a)
		}
		return out, nil

	case FormatJSON:
		data, err := encodeJSON(doc)
		if err != nil {
			return nil, err
		}
		return []Artifact{{Data: data}}, nil

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func csvSuffix(sheet string) string {
	if sheet == SheetSummary {
		return "summary"
	}
	return strings.ToLower(sheet)
}

func encodeCSV(s Sheet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(s.Header); err != nil {
		return nil, err
	}
	record := make([]string, len(s.Header))
	for _, row := range s.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellText(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// object is a sheet row keyed by header, marshalled in column order.
type object struct {
	keys   []string
	values []any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		var v any
		if i < len(o.values) {
			v = o.values[i]
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func objects(s *Sheet) []object {
	if s == nil {
		return []object{}
	}
	out := make([]object, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = object{keys: s.Header, values: row}
	}
	return out
}

func encodeJSON(doc Document) ([]byte, error) {
	payload := struct {
		Tasks     []object `json:"tasks"`
		Summary   []object `json:"summary,omitempty"`
		Resources []object `json:"resources"`
		Review    []object `json:"review,omitempty"`
	}{
		Tasks:     objects(&doc.Tasks),
		Resources: objects(doc.Resources),
	}
	if doc.Summary != nil {
		payload.Summary = objects(doc.Summary)
	}
	if doc.Review != nil {
		payload.Review = objects(doc.Review)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
