package rule

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/x-nimmt/internal/game/card"
)

func c(number, points int) card.Card {
	return card.Card{Number: number, Points: points}
}

func TestResolve_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		table     Table
		card      card.Card
		threshold int
		want      Table
		points    int
		row       int
		taken     bool
	}{
		{
			name:      "closest row below takes the card",
			table:     Table{{c(2, 1)}, {c(9, 2)}},
			card:      c(5, 1),
			threshold: 3,
			want:      Table{{c(2, 1), c(5, 1)}, {c(9, 2)}},
			row:       0,
		},
		{
			name:      "smallest difference wins over earlier rows",
			table:     Table{{c(2, 1)}, {c(6, 2)}, {c(30, 1)}},
			card:      c(8, 7),
			threshold: 5,
			want:      Table{{c(2, 1)}, {c(6, 2), c(8, 7)}, {c(30, 1)}},
			row:       1,
		},
		{
			name:      "card below every top takes the cheapest row",
			table:     Table{{c(2, 1)}, {c(9, 2)}},
			card:      c(1, 1),
			threshold: 3,
			want:      Table{{c(1, 1)}, {c(9, 2)}},
			points:    -1,
			row:       0,
			taken:     true,
		},
		{
			name:      "cheapest row is not the first row",
			table:     Table{{c(4, 2), c(5, 3)}, {c(7, 2)}, {c(9, 1), c(10, 3)}},
			card:      c(3, 2),
			threshold: 5,
			want:      Table{{c(4, 2), c(5, 3)}, {c(3, 2)}, {c(9, 1), c(10, 3)}},
			points:    -2,
			row:       1,
			taken:     true,
		},
		{
			name:      "point ties go to the first row",
			table:     Table{{c(10, 2)}, {c(11, 1), c(12, 1)}},
			card:      c(1, 1),
			threshold: 4,
			want:      Table{{c(1, 1)}, {c(11, 1), c(12, 1)}},
			points:    -2,
			row:       0,
			taken:     true,
		},
		{
			name:      "full closest row is taken even with another row below",
			table:     Table{{c(1, 1)}, {c(3, 2), c(4, 1), c(6, 2)}},
			card:      c(7, 5),
			threshold: 3,
			want:      Table{{c(1, 1)}, {c(7, 5)}},
			points:    -5,
			row:       1,
			taken:     true,
		},
		{
			name:      "row one short of the threshold still grows",
			table:     Table{{c(3, 2), c(4, 1)}},
			card:      c(6, 2),
			threshold: 3,
			want:      Table{{c(3, 2), c(4, 1), c(6, 2)}},
			row:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := tt.table.Clone()
			res := Resolve(tt.table, tt.card, tt.threshold)

			if diff := cmp.Diff(tt.want, res.Table); diff != "" {
				t.Errorf("table mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.points, res.Points)
			assert.Equal(t, tt.row, res.Row)
			assert.Equal(t, tt.taken, res.Taken)
			assert.Empty(t, cmp.Diff(before, tt.table), "input table must not change")
			assert.Equal(t, -tt.points, Penalty(tt.table, tt.card, tt.threshold))
		})
	}
}

func TestResolve_DoesNotAliasRows(t *testing.T) {
	t.Parallel()

	row := make(Row, 1, 8)
	row[0] = c(2, 1)
	table := Table{row}

	a := Resolve(table, c(5, 1), 5)
	b := Resolve(table, c(6, 1), 5)

	assert.Equal(t, 5, a.Table[0].Top().Number)
	assert.Equal(t, 6, b.Table[0].Top().Number)
	assert.Len(t, table[0], 1)
}

func TestResolve_Invariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	deck := card.NewDeck(60)

	for round := range 200 {
		shuffled := deck.Shuffled(rng)
		numRows := 1 + rng.IntN(4)
		threshold := 1 + rng.IntN(5)
		table := NewTable(shuffled[:numRows]...)

		for _, played := range shuffled[numRows : numRows+20] {
			before := table.Clone()
			res := Resolve(table, played, threshold)

			require.Len(t, res.Table, numRows, "round %d", round)
			for _, r := range res.Table {
				require.NotEmpty(t, r)
			}
			assert.Equal(t, played, res.Table[res.Row].Top())

			if res.Taken {
				assert.Negative(t, res.Points)
				assert.Equal(t, -before[res.Row].Points(), res.Points)
				assert.Len(t, res.Table[res.Row], 1)
			} else {
				assert.Zero(t, res.Points)
				assert.Len(t, res.Table[res.Row], len(before[res.Row])+1)
			}

			if played.Number < before.MinTop() {
				assert.True(t, res.Taken)
				assert.Equal(t, before.CheapestRow(), res.Row)
			}

			assert.Empty(t, cmp.Diff(before, table))
			table = res.Table
		}
	}
}

func TestResolve_EmptyTablePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Resolve(Table{}, c(1, 1), 3) })
}

func TestTable_Helpers(t *testing.T) {
	t.Parallel()

	table := NewTable(c(40, 1), c(7, 5), c(12, 2))
	assert.Equal(t, []int{7, 12, 40}, table.Numbers())
	assert.Equal(t, 7, table.MinTop())
	assert.Equal(t, 0, NewTable(c(40, 1), c(12, 1)).CheapestRow())
	assert.Equal(t, 2, table.CheapestRow())
	assert.Equal(t, "7(5)", table[0].String())

	clone := table.Clone()
	clone[0][0] = c(99, 1)
	assert.Equal(t, 7, table[0][0].Number)
}
