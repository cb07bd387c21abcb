package rule

import "github.com/palemoky/x-nimmt/internal/game/card"

// Result describes the outcome of placing one card on the table.
type Result struct {
	Table  Table // table after placement; shares untouched rows with the input
	Points int   // 0, or the negated point sum of the taken row
	Row    int   // index of the affected row
	Taken  bool  // whether the row was cleared
}

// target picks the row a card goes to and whether that row must be taken.
func target(t Table, c card.Card, takeThreshold int) (row int, take bool) {
	row, diff := -1, 0
	for i, r := range t {
		top := r.Top().Number
		if top < c.Number && (row < 0 || c.Number-top < diff) {
			row, diff = i, c.Number-top
		}
	}
	if row < 0 {
		return t.CheapestRow(), true
	}
	return row, len(t[row]) >= takeThreshold
}

// Resolve places c on the table.
//
// The card goes to the row whose top is the closest number below it. When that
// row already holds takeThreshold cards, or when no top is below the card, the
// player takes a row (the closest one, or else the cheapest) and the row
// restarts with c. The input table is never modified.
func Resolve(t Table, c card.Card, takeThreshold int) Result {
	if len(t) == 0 {
		panic("rule: resolve on a table without rows")
	}

	row, take := target(t, c, takeThreshold)

	next := make(Table, len(t))
	copy(next, t)

	if !take {
		grown := make(Row, len(t[row]), len(t[row])+1)
		copy(grown, t[row])
		next[row] = append(grown, c)
		return Result{Table: next, Row: row}
	}

	next[row] = Row{c}
	return Result{Table: next, Points: -t[row].Points(), Row: row, Taken: true}
}

// Penalty returns the points a player would lose by playing c right now, as a
// non-negative number. It builds no new table.
func Penalty(t Table, c card.Card, takeThreshold int) int {
	row, take := target(t, c, takeThreshold)
	if !take {
		return 0
	}
	return t[row].Points()
}
