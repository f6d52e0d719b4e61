package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status is the attendance status of a day. The zero value is Normal.
type Status int

const (
	Normal Status = iota
	Absence
	Holiday
)

// ParseStatus parses the wire form of a status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "normal", "":
		return Normal, nil
	case "absence":
		return Absence, nil
	case "holiday":
		return Holiday, nil
	}
	return Normal, errors.Errorf("unknown attendance status %q", s)
}

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case Absence:
		return "absence"
	case Holiday:
		return "holiday"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Label is the text shown in the grid.
func (s Status) Label() string {
	switch s {
	case Normal:
		return "근무"
	case Absence:
		return "결근"
	case Holiday:
		return "휴무"
	}
	return "?"
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case Normal, Absence, Holiday:
		return true
	}
	return false
}

// Working reports whether the status carries hours.
func (s Status) Working() bool {
	switch s {
	case Normal:
		return true
	case Absence, Holiday:
		return false
	}
	return false
}

// Next is the status after s in the Normal, Absence, Holiday cycle.
func (s Status) Next() Status {
	switch s {
	case Normal:
		return Absence
	case Absence:
		return Holiday
	case Holiday:
		return Normal
	}
	return Normal
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Errorf("invalid attendance status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
