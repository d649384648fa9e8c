/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"encoding/json"
	"fmt"
)

// TimeGroup is the schedule of one competing group: its disciplines in start
// time order, the shared default orders and a cursor at the current
// discipline. Disciplines are sorted once when the group is built and never
// re-sorted, since the cursor is an index.
type TimeGroup struct {
	name         string
	defaultOrder []RosterEntry
	trackOrder   []Run
	disciplines  []Discipline
	current      int
}

func (tg *TimeGroup) Name() string {
	return tg.name
}

// Disciplines returns a copy of the disciplines in start time order.
func (tg *TimeGroup) Disciplines() []Discipline {
	out := make([]Discipline, len(tg.disciplines))
	for i, d := range tg.disciplines {
		out[i] = d.clone()
	}
	return out
}

// CurrentIndex returns the cursor after skipping finished disciplines.
func (tg *TimeGroup) CurrentIndex() int {
	tg.advanceIfFinished()
	return tg.current
}

// CurrentDiscipline returns the discipline at the cursor. Finished
// disciplines are skipped, but the cursor stops at the last discipline even
// when it is finished; callers detect the end of the schedule from its
// state.
func (tg *TimeGroup) CurrentDiscipline() Discipline {
	tg.advanceIfFinished()
	return tg.disciplines[tg.current].clone()
}

// NextDiscipline returns the discipline after the current one.
func (tg *TimeGroup) NextDiscipline() (Discipline, error) {
	tg.advanceIfFinished()
	if tg.current+1 >= len(tg.disciplines) {
		return Discipline{}, fmt.Errorf("%w: %q is the last discipline of %v",
			ErrNoNextDiscipline, tg.disciplines[tg.current].Name, tg.name)
	}
	return tg.disciplines[tg.current+1].clone(), nil
}

func (tg *TimeGroup) advanceIfFinished() {
	for tg.current < len(tg.disciplines)-1 &&
		tg.disciplines[tg.current].State == Finished {
		tg.current++
	}
}

// IsComplete reports whether every discipline has finished.
func (tg *TimeGroup) IsComplete() bool {
	for _, d := range tg.disciplines {
		if d.State != Finished {
			return false
		}
	}
	return true
}

func (tg *TimeGroup) indexOf(name string) int {
	tg.advanceIfFinished()
	if tg.disciplines[tg.current].Name == name {
		return tg.current
	}
	for i, d := range tg.disciplines {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// ChangeDisciplineState moves the named discipline to state. Finished
// disciplines reject every change and states never move backward.
// Requesting the state a discipline is already in is a no-op. Finishing a
// discipline freezes the starting order it ran with.
func (tg *TimeGroup) ChangeDisciplineState(name string, state State) error {
	idx := tg.indexOf(name)
	if idx < 0 {
		return fmt.Errorf("%w: %q in %v", ErrNotFound, name, tg.name)
	}
	d := &tg.disciplines[idx]
	if d.State == Finished {
		return fmt.Errorf("%w: %q", ErrAlreadyFinished, name)
	}
	if state < d.State {
		return fmt.Errorf("%w: %q from %v to %v", ErrInvalidTransition, name,
			d.State, state)
	}
	if state == Finished {
		final := tg.groupOrder(d.OrderKind)
		d.Final = &final
	}
	d.State = state

	return nil
}

// groupOrder returns a copy of the group level order of the given kind.
func (tg *TimeGroup) groupOrder(kind OrderKind) StartingOrder {
	switch kind {
	case OrderDefault:
		return NewDefaultOrder(tg.defaultOrder)
	case OrderTrack:
		return NewTrackOrder(tg.trackOrder)
	default:
		return NoOrder()
	}
}

// StartingOrder returns the order in effect for the named discipline.
func (tg *TimeGroup) StartingOrder(name string) (StartingOrder, error) {
	idx := tg.indexOf(name)
	if idx < 0 {
		return StartingOrder{}, fmt.Errorf("%w: %q in %v", ErrNotFound, name,
			tg.name)
	}
	d := tg.disciplines[idx]
	if d.Final != nil {
		return d.Final.Clone(), nil
	}
	return tg.groupOrder(d.OrderKind), nil
}

// DefaultStartingOrder returns a copy of the flat default athlete order.
func (tg *TimeGroup) DefaultStartingOrder() []RosterEntry {
	return cloneEntries(tg.defaultOrder)
}

// DefaultTrackOrder returns a copy of the default run order.
func (tg *TimeGroup) DefaultTrackOrder() []Run {
	return cloneRuns(tg.trackOrder)
}

// ChangeStartingOrder replaces the group order of order's kind. Every
// unfinished discipline of that kind picks it up; disciplines of another
// kind and finished disciplines keep what they had. A NoOrder value is
// accepted and changes nothing. An athlete listed twice keeps only the
// first position.
func (tg *TimeGroup) ChangeStartingOrder(order StartingOrder) {
	switch order.Kind {
	case OrderDefault:
		tg.defaultOrder = dedupeRoster(order.Athletes)
	case OrderTrack:
		tg.trackOrder = dedupeRuns(order.Runs)
	}
}

// dedupeRuns copies runs, leaving a lane empty when its athlete already ran
// in an earlier lane or run.
func dedupeRuns(runs []Run) []Run {
	out := cloneRuns(runs)
	seen := make(map[string]struct{})
	for i := range out {
		for lane, a := range out[i].Athletes {
			if a == nil {
				continue
			}
			if _, dup := seen[a.FullName()]; dup {
				out[i].Athletes[lane] = nil
				continue
			}
			seen[a.FullName()] = struct{}{}
		}
	}
	return out
}

// UpdateAthletes appends late registrations to the default order and
// derives both default orders again. Entries whose full name is already
// present are ignored. Athletes already in the order keep their relative
// order.
func (tg *TimeGroup) UpdateAthletes(entries []RosterEntry) {
	combined := dedupeRoster(append(cloneEntries(tg.defaultOrder), entries...))
	tg.defaultOrder, tg.trackOrder = DeriveOrder(combined, GroupsByTag(tg.name))
}

type timeGroupJSON struct {
	Name         string        `json:"name"`
	DefaultOrder []RosterEntry `json:"defaultOrder"`
	TrackOrder   []Run         `json:"trackOrder"`
	Disciplines  []Discipline  `json:"disciplines"`
	Current      int           `json:"current"`
}

func (tg *TimeGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeGroupJSON{
		Name:         tg.name,
		DefaultOrder: tg.defaultOrder,
		TrackOrder:   tg.trackOrder,
		Disciplines:  tg.disciplines,
		Current:      tg.current,
	})
}

func (tg *TimeGroup) UnmarshalJSON(data []byte) error {
	var aux timeGroupJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("TimeGroup unmarshal: %w", err)
	}
	if len(aux.Disciplines) == 0 {
		return fmt.Errorf("TimeGroup unmarshal: %v has no disciplines", aux.Name)
	}
	if aux.Current < 0 || aux.Current >= len(aux.Disciplines) {
		return fmt.Errorf("TimeGroup unmarshal: cursor %v out of range for %v",
			aux.Current, aux.Name)
	}
	tg.name = aux.Name
	tg.defaultOrder = aux.DefaultOrder
	tg.trackOrder = aux.TrackOrder
	tg.disciplines = aux.Disciplines
	tg.current = aux.Current
	return nil
}
