// Package testdata contains fixture types for classifier tests.
package testdata

// User is a fully exported record.
type User struct {
	ID     int64
	Name   string
	Email  *string
	Tags   []string
	Scores [4]float64
}

// LinkedNode is a self-referential record.
type LinkedNode struct {
	Value int
	Next  *LinkedNode
}

// Account exposes an unexported field through accessors.
type Account struct {
	balance int64
}

func (a *Account) Balance() int64 { return a.balance }

func (a *Account) SetBalance(v int64) { a.balance = v }

// Version brings its own comparison contract.
type Version struct {
	Major int
	Minor int
}

func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return v.Major - other.Major
	}
	return v.Minor - other.Minor
}

// Temperature serializes itself as text.
type Temperature float64

func (t Temperature) MarshalText() ([]byte, error) { return nil, nil }

func (t *Temperature) UnmarshalText(b []byte) error { return nil }

// Mixed exercises fallback and rejection paths.
type Mixed struct {
	Labels map[string]string
	Notify chan int
}

// Hidden has an unexported field with no accessor.
type Hidden struct {
	secret string
}

// Labels is a named map type falling back to the generic encoding.
type Labels map[string]string
