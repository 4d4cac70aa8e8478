package model

// Status is the checklist state of an email address.
type Status string

const (
	StatusUnused   Status = "unused"
	StatusUsing    Status = "using"
	StatusUsed     Status = "used"
	StatusLeftover Status = "leftover"
)

// Statuses lists every status in selector order.
var Statuses = []Status{StatusUnused, StatusUsing, StatusUsed, StatusLeftover}

// Valid reports whether s is one of the fixed statuses.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Display returns s, or unused when s is not a known status.
// Storage keeps whatever was written; only the presentation is normalized.
func (s Status) Display() Status {
	if s.Valid() {
		return s
	}
	return StatusUnused
}

// Next and Prev cycle through Statuses, the way a dropdown would.
func (s Status) Next() Status { return Statuses[(s.index()+1)%len(Statuses)] }
func (s Status) Prev() Status {
	return Statuses[(s.index()+len(Statuses)-1)%len(Statuses)]
}

func (s Status) index() int {
	for i, st := range Statuses {
		if s.Display() == st {
			return i
		}
	}
	return 0
}

// ParseStatus maps user text to a Status. Empty input means unused.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	if s == "" {
		return StatusUnused, true
	}
	return st, st.Valid()
}

// Entry is one email row of the checklist.
// Number is nil when absent; an empty string is never stored.
type Entry struct {
	ID     int64   `json:"id" yaml:"id"`
	Email  string  `json:"email" yaml:"email"`
	Status Status  `json:"status" yaml:"status"`
	Number *string `json:"number,omitempty" yaml:"number,omitempty"`
}

// NumberText returns the number or "" when absent.
func (e Entry) NumberText() string {
	if e.Number == nil {
		return ""
	}
	return *e.Number
}

// SeedRow is one parsed (email, status, number) triple prior to insertion.
type SeedRow struct {
	Email  string
	Status Status
	Number string
}
