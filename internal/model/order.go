package model

// SortOrder is the display rank of each status: lower sorts first.
// Anything not listed ranks after all of these.
var SortOrder = []Status{StatusUsing, StatusUnused, StatusLeftover, StatusUsed}

// Rank returns the display rank of s.
func Rank(s Status) int {
	for i, st := range SortOrder {
		if st == s {
			return i
		}
	}
	return len(SortOrder)
}

// Less orders entries by status rank, then by id.
func Less(a, b Entry) bool {
	ra, rb := Rank(a.Status), Rank(b.Status)
	if ra != rb {
		return ra < rb
	}
	return a.ID < b.ID
}
