// Package delimited parses line-oriented, delimiter-separated command output
// (tasklist CSV, search tool TSV) into rows of fields.
package delimited

import "strings"

// Parse splits comma-separated text into rows of trimmed fields.
func Parse(raw string) [][]string {
	return ParseWith(raw, ',')
}

// ParseWith splits raw into rows using sep as the field separator.
// A double quote toggles quoted mode; sep inside quotes is kept as content and
// the quote characters themselves are dropped. Escaped quotes ("") are not
// supported. Lines with no fields or an empty first field are skipped.
func ParseWith(raw string, sep rune) [][]string {
	var rows [][]string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		fields := splitLine(line, sep)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}

		rows = append(rows, fields)
	}

	return rows
}

func splitLine(line string, sep rune) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}
