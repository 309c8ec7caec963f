// Package seatmap derives the set of valid seat identifiers for a hall
// configuration.  Generation is a pure function of the row layout so
// the same configuration always yields the same ordered seat list.
package seatmap

import (
	"fmt"
	"strings"

	"github.com/starcineplex/ticketing/internal/model"
)

// InvalidConfigurationError reports a malformed hall layout.  It is
// returned when a configuration has no rows, a row with zero seats, an
// empty row label, or duplicate row labels.  Configurations that fail
// validation are rejected at creation time and never stored.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid hall configuration: " + e.Reason
}

// Validate checks the row layout without generating identifiers.  It
// returns an *InvalidConfigurationError describing the first problem
// found, or nil when the layout is well formed.
func Validate(rows []model.HallRow) error {
	if len(rows) == 0 {
		return &InvalidConfigurationError{Reason: "no rows"}
	}
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("row %d has an empty label", i+1)}
		}
		if r.SeatCount <= 0 {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("row %q has no seats", label)}
		}
		if _, dup := seen[label]; dup {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("duplicate row label %q", label)}
		}
		seen[label] = struct{}{}
	}
	return nil
}

// SeatIDs returns the ordered list of seat identifiers for the given
// rows.  Identifiers are the row label followed by the 1-indexed seat
// number within the row ("A1", "A2", ..., "B1").  The layout is
// validated first; a malformed layout yields an
// *InvalidConfigurationError and no identifiers.
func SeatIDs(rows []model.HallRow) ([]string, error) {
	if err := Validate(rows); err != nil {
		return nil, err
	}
	total := 0
	for _, r := range rows {
		total += r.SeatCount
	}
	ids := make([]string, 0, total)
	for _, r := range rows {
		label := strings.TrimSpace(r.Label)
		for n := 1; n <= r.SeatCount; n++ {
			ids = append(ids, fmt.Sprintf("%s%d", label, n))
		}
	}
	return ids, nil
}

// SeatSet returns the seat identifiers of a layout as a membership
// set.  The reservation engine uses it to validate requested seats
// against the hall configuration.
func SeatSet(rows []model.HallRow) (map[string]struct{}, error) {
	ids, err := SeatIDs(rows)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// RowLabels produces default row labels for n rows: "A".."Z", then
// "AA", "AB" and so on.  Administrators may override labels when
// creating a hall configuration; this helper covers the common case.
func RowLabels(n int) []string {
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		labels = append(labels, indexToLabel(i))
	}
	return labels
}

// indexToLabel converts a zero-based row index into a spreadsheet
// style label (0 -> "A", 25 -> "Z", 26 -> "AA").
func indexToLabel(i int) string {
	label := ""
	for {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	return label
}
