package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcineplex/ticketing/internal/model"
)

func TestSeatIDsOrderedAndComplete(t *testing.T) {
	rows := []model.HallRow{
		{Label: "A", SeatCount: 2},
		{Label: "B", SeatCount: 2},
	}
	ids, err := SeatIDs(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, ids)
}

func TestSeatIDsIrregularRows(t *testing.T) {
	// Layout taken from a real hall: four even rows plus two longer ones.
	rows := []model.HallRow{
		{Label: "A", SeatCount: 16},
		{Label: "B", SeatCount: 16},
		{Label: "C", SeatCount: 16},
		{Label: "D", SeatCount: 16},
		{Label: "E", SeatCount: 17},
		{Label: "F", SeatCount: 17},
	}
	ids, err := SeatIDs(rows)
	require.NoError(t, err)

	total := 0
	for _, r := range rows {
		total += r.SeatCount
	}
	assert.Len(t, ids, total)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate seat id %s", id)
		seen[id] = struct{}{}
	}
	assert.Contains(t, ids, "E17")
	assert.NotContains(t, ids, "A17")
}

func TestSeatIDsDeterministic(t *testing.T) {
	rows := []model.HallRow{
		{Label: "A", SeatCount: 5},
		{Label: "B", SeatCount: 3},
	}
	first, err := SeatIDs(rows)
	require.NoError(t, err)
	second, err := SeatIDs(rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateRejectsBadLayouts(t *testing.T) {
	cases := []struct {
		name string
		rows []model.HallRow
	}{
		{"no rows", nil},
		{"zero seats", []model.HallRow{{Label: "A", SeatCount: 0}}},
		{"negative seats", []model.HallRow{{Label: "A", SeatCount: -1}}},
		{"empty label", []model.HallRow{{Label: "  ", SeatCount: 4}}},
		{"duplicate label", []model.HallRow{
			{Label: "A", SeatCount: 4},
			{Label: "A", SeatCount: 4},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SeatIDs(tc.rows)
			require.Error(t, err)
			var invalid *InvalidConfigurationError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestRowLabels(t *testing.T) {
	labels := RowLabels(28)
	require.Len(t, labels, 28)
	assert.Equal(t, "A", labels[0])
	assert.Equal(t, "Z", labels[25])
	assert.Equal(t, "AA", labels[26])
	assert.Equal(t, "AB", labels[27])
}
