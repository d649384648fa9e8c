/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle of a discipline. States only move forward:
// BeforeStart -> Active -> Finished.
type State int

const (
	BeforeStart State = iota
	Active
	Finished
)

func (s State) String() string {
	switch s {
	case BeforeStart:
		return "BeforeStart"
	case Active:
		return "Active"
	case Finished:
		return "Finished"
	default:
		return "?"
	}
}

// ParseState maps a state token to a State. Matching ignores case, spaces,
// dashes and underscores so "before_start" and "Before Start" both work.
func ParseState(s string) (State, error) {
	norm := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	switch norm {
	case "beforestart":
		return BeforeStart, nil
	case "active":
		return Active, nil
	case "finished":
		return Finished, nil
	}
	return BeforeStart, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// DisciplineType is the scoring family of a discipline.
type DisciplineType int

const (
	TypeTrack DisciplineType = iota
	TypeHeight
	TypeDistance
	TypeTime
)

func (t DisciplineType) String() string {
	switch t {
	case TypeTrack:
		return "Track"
	case TypeHeight:
		return "Height"
	case TypeDistance:
		return "Distance"
	case TypeTime:
		return "Time"
	default:
		return "?"
	}
}

func (t DisciplineType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DisciplineType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Track":
		*t = TypeTrack
	case "Height":
		*t = TypeHeight
	case "Distance":
		*t = TypeDistance
	case "Time":
		*t = TypeTime
	default:
		return fmt.Errorf("unknown discipline type %q", string(b))
	}
	return nil
}

// heightDisciplines are scored by the height cleared.
var heightDisciplines = map[string]struct{}{
	"Hochsprung":     {},
	"Stabhochsprung": {},
	"High Jump":      {},
	"Pole Vault":     {},
}

// Discipline is one scheduled event of a time group. The starting order of
// an unfinished discipline is the group order of its OrderKind; Final holds
// the order that was in effect when the discipline finished.
type Discipline struct {
	Name      string         `json:"name"`
	Location  string         `json:"location"`
	StartTime time.Time      `json:"startTime"`
	State     State          `json:"state"`
	Type      DisciplineType `json:"type"`
	OrderKind OrderKind      `json:"orderKind"`
	Final     *StartingOrder `json:"final,omitempty"`
}

func (d Discipline) clone() Discipline {
	if d.Final != nil {
		f := d.Final.Clone()
		d.Final = &f
	}
	return d
}
