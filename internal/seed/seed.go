// Package seed reads and writes the checkbox-style checklist document
// used to populate an empty store:
//
//	* [x] a@example.com (7)
//	* [o] b@example.com
//	* [-] c@example.com
//	* [ ] d@example.com
package seed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/idilsaglam/mailcheck/internal/model"
)

// Separators accept any Unicode space, not only ASCII whitespace.
var linePattern = regexp.MustCompile(
	`^\* \[(?P<state>[xo\- ])\][\s\p{Z}]+(?P<email>[^\s\p{Z}]+)(?:[\s\p{Z}]+\((?P<number>[^)]+)\))?$`,
)

var markerStatus = map[string]model.Status{
	"x": model.StatusUsed,
	"o": model.StatusUsing,
	"-": model.StatusLeftover,
	" ": model.StatusUnused,
}

// Parse returns one row per recognized line, in document order.
// Blank and unrecognized lines are skipped.
func Parse(text string) []model.SeedRow {
	var rows []model.SeedRow
	for _, line := range strings.Split(text, "\n") {
		if row, ok := ParseLine(line); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// ParseLine parses a single checklist line.
func ParseLine(line string) (model.SeedRow, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.SeedRow{}, false
	}
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return model.SeedRow{}, false
	}
	status, ok := markerStatus[m[linePattern.SubexpIndex("state")]]
	if !ok {
		status = model.StatusUnused
	}
	return model.SeedRow{
		Email:  strings.TrimSpace(m[linePattern.SubexpIndex("email")]),
		Status: status,
		Number: strings.TrimSpace(m[linePattern.SubexpIndex("number")]),
	}, true
}

// ParseFile reads the whole document at path before parsing it.
func ParseFile(path string) ([]model.SeedRow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(string(b)), nil
}

// Format writes entries back in the checklist grammar. Unknown statuses are
// written as unused, matching how they are displayed.
func Format(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		line := fmt.Sprintf("* [%s] %s", marker(e.Status.Display()), e.Email)
		if n := strings.TrimSpace(e.NumberText()); n != "" {
			line += " (" + n + ")"
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func marker(s model.Status) string {
	for m, st := range markerStatus {
		if st == s {
			return m
		}
	}
	return " "
}
