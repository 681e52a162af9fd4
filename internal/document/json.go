package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// JSONLoader reads the dump produced by an external office-document loader:
// {"paragraphs": [...], "text": "...", "tables": [[["cell", ...], ...], ...]}.
type JSONLoader struct{}

type jsonDump struct {
	Paragraphs []string     `json:"paragraphs"`
	Text       string       `json:"text"`
	Tables     [][][]string `json:"tables"`
}

func (JSONLoader) Load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Decode reads a JSON dump from r. Cells are trimmed and rows padded to a rectangle.
func Decode(r io.Reader) (*Document, error) {
	var dump jsonDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, err
	}
	doc := &Document{Paragraphs: dump.Paragraphs, Text: dump.Text}
	for _, rows := range dump.Tables {
		doc.Tables = append(doc.Tables, rectangular(rows))
	}
	return doc, nil
}

func rectangular(rows [][]string) Table {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		for j, c := range r {
			row[j] = strings.TrimSpace(c)
		}
		out[i] = row
	}
	return Table{Rows: out}
}
