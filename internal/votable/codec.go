package votable

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const dirPerms = 0o750

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Wire structs for the VOTable layout. Namespace declarations and
// unknown elements are ignored on read so files from other writers
// (different VOTable minor versions) still parse.
type xmlVOTable struct {
	XMLName   xml.Name      `xml:"VOTABLE"`
	Version   string        `xml:"version,attr"`
	Resources []xmlResource `xml:"RESOURCE"`
}

type xmlResource struct {
	Tables []xmlTable `xml:"TABLE"`
}

type xmlTable struct {
	Fields []xmlField `xml:"FIELD"`
	Data   *xmlData   `xml:"DATA"`
}

type xmlField struct {
	Name      string `xml:"name,attr"`
	Datatype  string `xml:"datatype,attr"`
	Arraysize string `xml:"arraysize,attr,omitempty"`
	Unit      string `xml:"unit,attr,omitempty"`
	UCD       string `xml:"ucd,attr,omitempty"`
}

type xmlData struct {
	TableData *xmlTableData `xml:"TABLEDATA"`
}

type xmlTableData struct {
	Rows []xmlTR `xml:"TR"`
}

type xmlTR struct {
	Cells []string `xml:"TD"`
}

// Write persists the table at path as a VOTable, appending the ".vot"
// extension if missing and creating parent directories as needed. The
// write goes through a temp file + rename so an interrupted write never
// leaves a torn file at the final path; any existing file is replaced.
func Write(t Table, path string) error {
	if !strings.HasSuffix(path, ".vot") {
		path += ".vot"
	}

	mkdirErr := os.MkdirAll(filepath.Dir(path), dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating table directory: %w", mkdirErr)
	}

	doc := xmlVOTable{
		Version: "1.4",
		Resources: []xmlResource{{
			Tables: []xmlTable{encodeTable(t)},
		}},
	}

	buf, marshalErr := xml.MarshalIndent(doc, "", " ")
	if marshalErr != nil {
		return fmt.Errorf("encoding votable: %w", marshalErr)
	}

	data := append([]byte(xmlHeader), buf...)
	data = append(data, '\n')

	writeErr := atomic.WriteFile(path, bytes.NewReader(data))
	if writeErr != nil {
		return fmt.Errorf("writing votable: %w", writeErr)
	}

	return nil
}

// Read parses a persisted VOTable file back into a Table. Char-typed
// cells are normalized to literal text: trailing NUL and whitespace
// padding from fixed-arraysize storage is stripped. Returns an error
// wrapping ErrDecode when the file is not a well-formed single-table
// VOTable.
func Read(path string) (Table, error) {
	data, readErr := os.ReadFile(path) //nolint:gosec // path is constructed from cacheDir
	if readErr != nil {
		return Table{}, fmt.Errorf("reading votable: %w", readErr)
	}

	table, decodeErr := decode(data)
	if decodeErr != nil {
		return Table{}, fmt.Errorf("%s: %w", path, decodeErr)
	}

	return table, nil
}

// ReadFrom parses a VOTable document from r, with the same
// normalization and error behavior as Read.
func ReadFrom(r io.Reader) (Table, error) {
	data, readErr := io.ReadAll(r)
	if readErr != nil {
		return Table{}, fmt.Errorf("reading votable: %w", readErr)
	}

	return decode(data)
}

func decode(data []byte) (Table, error) {
	var doc xmlVOTable

	unmarshalErr := xml.Unmarshal(data, &doc)
	if unmarshalErr != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrDecode, unmarshalErr)
	}

	if len(doc.Resources) != 1 || len(doc.Resources[0].Tables) != 1 {
		return Table{}, fmt.Errorf("%w: want exactly one RESOURCE/TABLE", ErrDecode)
	}

	raw := doc.Resources[0].Tables[0]
	if raw.Data == nil || raw.Data.TableData == nil {
		return Table{}, fmt.Errorf("%w: missing TABLEDATA", ErrDecode)
	}

	t := Table{Fields: make([]Field, len(raw.Fields))}

	for i, f := range raw.Fields {
		t.Fields[i] = Field{Name: f.Name, Datatype: f.Datatype, Unit: f.Unit, UCD: f.UCD}
	}

	t.Rows = make([][]string, len(raw.Data.TableData.Rows))

	for i, tr := range raw.Data.TableData.Rows {
		if len(tr.Cells) != len(t.Fields) {
			return Table{}, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrDecode, i, len(tr.Cells), len(t.Fields))
		}

		row := make([]string, len(tr.Cells))

		for j, cell := range tr.Cells {
			if isTextField(t.Fields[j]) {
				cell = normalizeText(cell)
			}

			row[j] = cell
		}

		t.Rows[i] = row
	}

	return t, nil
}

func encodeTable(t Table) xmlTable {
	out := xmlTable{
		Fields: make([]xmlField, len(t.Fields)),
		Data:   &xmlData{TableData: &xmlTableData{}},
	}

	for i, f := range t.Fields {
		out.Fields[i] = xmlField{
			Name:     f.Name,
			Datatype: f.Datatype,
			Unit:     f.Unit,
			UCD:      f.UCD,
		}
		if isTextField(f) {
			out.Fields[i].Arraysize = "*"
		}
	}

	out.Data.TableData.Rows = make([]xmlTR, len(t.Rows))
	for i, row := range t.Rows {
		out.Data.TableData.Rows[i] = xmlTR{Cells: append([]string(nil), row...)}
	}

	return out
}

func isTextField(f Field) bool {
	return f.Datatype == "char" || f.Datatype == "unicodeChar" || f.Datatype == ""
}

// normalizeText strips the byte-level padding artifacts that
// fixed-arraysize char columns carry: trailing NULs and surrounding
// whitespace. XML entity and CDATA decoding already happened during
// unmarshal.
func normalizeText(s string) string {
	s = strings.TrimRight(s, "\x00")
	return strings.TrimSpace(s)
}
