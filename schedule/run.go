/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// RunSize is the number of lanes in one heat.
const RunSize = 6

// adultGroupToken marks adult groups; all other groups are youth groups
// whose runs are split by age group.
const adultGroupToken = "Gruppe"

// Run is one heat of a track discipline. Empty lanes are nil.
type Run struct {
	Name     string                `json:"name"`
	Athletes [RunSize]*RosterEntry `json:"athletes"`
}

// Entries returns the occupied lanes in lane order.
func (r Run) Entries() []RosterEntry {
	var out []RosterEntry
	for _, a := range r.Athletes {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

// Len returns the number of occupied lanes.
func (r Run) Len() int {
	n := 0
	for _, a := range r.Athletes {
		if a != nil {
			n++
		}
	}
	return n
}

func (r Run) clone() Run {
	out := Run{Name: r.Name}
	for i, a := range r.Athletes {
		if a != nil {
			e := *a
			out.Athletes[i] = &e
		}
	}
	return out
}

func cloneRuns(runs []Run) []Run {
	if runs == nil {
		return nil
	}
	out := make([]Run, len(runs))
	for i, r := range runs {
		out[i] = r.clone()
	}
	return out
}

func cloneEntries(entries []RosterEntry) []RosterEntry {
	if entries == nil {
		return nil
	}
	return append([]RosterEntry(nil), entries...)
}

// GroupsByTag reports whether runs for the named group keep age groups
// apart. Only adult groups ("Gruppe ...") mix age groups.
func GroupsByTag(groupName string) bool {
	return !strings.Contains(groupName, adultGroupToken)
}

// DeriveOrder computes the flat default order and the run order from a
// roster. The two results are always produced together: concatenating the
// occupied lanes of the runs yields the flat order.
//
// Without groupByTag the roster keeps its order and is cut into runs of
// RunSize. With groupByTag the roster is stable-sorted by age group first and
// a new run is started whenever the age group changes, so no run mixes two
// age groups.
func DeriveOrder(roster []RosterEntry, groupByTag bool) ([]RosterEntry, []Run) {
	order := cloneEntries(roster)
	if order == nil {
		order = []RosterEntry{}
	}
	if groupByTag {
		sort.SliceStable(order, func(i, j int) bool {
			return ageGroupLess(order[i].AgeGroup, order[j].AgeGroup)
		})
	}

	runs := []Run{}
	var cur *Run
	lane := 0
	for i := range order {
		e := order[i]
		newRun := cur == nil || lane == RunSize
		if !newRun && groupByTag && cur.Athletes[0].AgeGroup != e.AgeGroup {
			newRun = true
		}
		if newRun {
			runs = append(runs, Run{Name: fmt.Sprintf("Run %d", len(runs)+1)})
			cur = &runs[len(runs)-1]
			lane = 0
		}
		cur.Athletes[lane] = &e
		lane++
	}

	return order, runs
}
