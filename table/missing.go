package table

import "fmt"

// Missing selects how cells without an observation are rendered. One policy
// applies to a whole table.
type Missing int

const (
	// MissingEmpty renders an empty cell: the metric was not measured.
	MissingEmpty Missing = iota
	// MissingZero renders 0: absence means an observed count of zero.
	MissingZero
)

func (m Missing) String() string {
	switch m {
	case MissingEmpty:
		return "empty"
	case MissingZero:
		return "zero"
	}
	return fmt.Sprintf("Missing(%d)", int(m))
}

// Token is the literal written for a missing cell.
func (m Missing) Token() string {
	if m == MissingZero {
		return "0"
	}
	return ""
}

// ParseMissing accepts "empty" (or "") and "zero" (or "0").
func ParseMissing(s string) (Missing, error) {
	switch s {
	case "", "empty":
		return MissingEmpty, nil
	case "zero", "0":
		return MissingZero, nil
	}
	return MissingEmpty, fmt.Errorf("unknown missing-value policy %q (expected empty or zero)", s)
}

func (m *Missing) UnmarshalText(text []byte) error {
	parsed, err := ParseMissing(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Missing) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
