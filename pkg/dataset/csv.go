// Package dataset supplies raw call transcripts to analyze, from a CSV export
// or from a Postgres calls table.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/callsense-ai/callsense/agent/contract"
)

// transcriptColumns are probed in order for the transcript text.
var transcriptColumns = []string{"transcript", "text", "call_text", "utterance"}

// idColumns are probed in order for the call identifier.
var idColumns = []string{"call_id", "id"}

type CSVConfig struct {
	Path string `envconfig:"PATH" split_words:"true"`
}

// CSVSource reads transcripts from a headed CSV file.
type CSVSource struct {
	path string
}

var _ contract.TranscriptSource = (*CSVSource)(nil)

func NewCSV(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Load(ctx context.Context) ([]contract.Transcript, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	textIdx := findColumn(header, transcriptColumns)
	idIdx := findColumn(header, idColumns)

	var out []contract.Transcript
	for i, row := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := cellAt(row, textIdx)
		if text == "" {
			// Fall back to the first non-empty cell, like the original
			// exports that carry the transcript in an unnamed column.
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					text = cell
					break
				}
			}
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		id := cellAt(row, idIdx)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}

		out = append(out, contract.Transcript{ID: id, Text: text})
	}

	return out, nil
}

func findColumn(header []string, candidates []string) int {
	for _, name := range candidates {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), name) {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
