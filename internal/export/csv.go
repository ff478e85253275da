package export

import (
	"strings"

	"github.com/garnizeh/assessboard/internal/models"
)

// CSV renders records as comma separated text. Every cell is wrapped in
// double quotes as-is; embedded quotes are not escaped. The header comes
// from the first row. Rows are joined with "\n" and there is no trailing
// newline. ok is false for an empty input, in which case nothing should be
// produced.
func CSV(records []models.Employee) (content string, ok bool) {
	if len(records) == 0 {
		return "", false
	}

	rows := make([]Row, len(records))
	for i, e := range records {
		rows[i] = Flatten(e)
	}
	header := rows[0].Header()

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, r := range rows {
		byKey := make(map[string]string, len(r))
		for _, f := range r {
			byKey[f.Key] = f.Value
		}
		cells := make([]string, len(header))
		for i, h := range header {
			cells[i] = `"` + byKey[h] + `"`
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n"), true
}
