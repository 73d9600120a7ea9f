package mapping

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/paperbridge/internal/encoding"
)

const (
	colSourceType = "source_type"
	colTargetType = "target_type"
	colFieldMap   = "field_map"
	colActive     = "active"
)

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// ParseCSV reads mapping definitions from a spreadsheet export.
// The header row may appear anywhere and columns may come in any order;
// source_type and target_type are required, field_map ("from=to,from=to") and active are optional.
func ParseCSV(r io.Reader) ([]CreateParams, error) {
	utf8r, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	slog.Debug("parsing mapping csv", "charset", charset, "bytes", len(raw))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header found: expected %s and %s columns", colSourceType, colTargetType)
	}

	var params []CreateParams

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		source := cellValue(row, cols, colSourceType)
		target := cellValue(row, cols, colTargetType)

		if source == "" && target == "" {
			continue
		}

		fieldMap, err := parseFieldMap(cellValue(row, cols, colFieldMap))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		active, err := parseActive(cellValue(row, cols, colActive))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		params = append(params, CreateParams{
			SourceType: source,
			TargetType: target,
			FieldMap:   fieldMap,
			Active:     active,
		})
	}

	return params, nil
}

// detectDelimiter picks ';' or ',' by whichever appears more often in the first line that has either.
func detectDelimiter(raw []byte) rune {
	for line := range bytes.Lines(raw) {
		semis, commas := bytes.Count(line, []byte(";")), bytes.Count(line, []byte(","))
		if semis == 0 && commas == 0 {
			continue
		}

		if semis > commas {
			return ';'
		}

		return ','
	}

	return ','
}

func findHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		_, hasSource := cols[colSourceType]
		_, hasTarget := cols[colTargetType]

		if hasSource && hasTarget {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseFieldMap(s string) (map[string]string, error) {
	fieldMap := map[string]string{}
	if s == "" {
		return fieldMap, nil
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		from, to, ok := strings.Cut(pair, "=")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)

		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid field mapping %q: want from=to", pair)
		}

		fieldMap[from] = to
	}

	return fieldMap, nil
}

func parseActive(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}

	active, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid active flag %q", s)
	}

	return active, nil
}
