package rule

import (
	"strings"

	"github.com/palemoky/x-nimmt/internal/game/card"
)

// Row is a pile of cards on the table; the last card is the row's top.
//
// Rows are treated as immutable values: Resolve never writes into an existing
// row's backing array, so tables can share untouched rows safely.
type Row []card.Card

// Top returns the most recently placed card.
func (r Row) Top() card.Card {
	return r[len(r)-1]
}

// Points is the penalty sum of every card in the row.
func (r Row) Points() int {
	sum := 0
	for _, c := range r {
		sum += c.Points
	}
	return sum
}

func (r Row) String() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Table is the ordered collection of rows. Row index is insertion order.
type Table []Row

// NewTable starts one row per card, ordered by starting card number.
func NewTable(starters ...card.Card) Table {
	sorted := card.NewHand(starters...)
	t := make(Table, len(sorted))
	for i, c := range sorted {
		t[i] = Row{c}
	}
	return t
}

// Clone returns a fully independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = append(Row(nil), row...)
	}
	return out
}

// Numbers returns every card number currently visible on the table.
func (t Table) Numbers() []int {
	var out []int
	for _, row := range t {
		for _, c := range row {
			out = append(out, c.Number)
		}
	}
	return out
}

// MinTop returns the smallest top-card number across all rows.
func (t Table) MinTop() int {
	minTop := t[0].Top().Number
	for _, row := range t[1:] {
		minTop = min(minTop, row.Top().Number)
	}
	return minTop
}

// CheapestRow returns the index of the row with the smallest point sum,
// preferring the first such row.
func (t Table) CheapestRow() int {
	best, bestPoints := 0, t[0].Points()
	for i := 1; i < len(t); i++ {
		if p := t[i].Points(); p < bestPoints {
			best, bestPoints = i, p
		}
	}
	return best
}
