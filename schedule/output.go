/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"fmt"
	"strings"
)

// BuildScheduleOutput formats a time group into an aligned table. The
// current discipline is marked with '>'.
func BuildScheduleOutput(tg *TimeGroup) string {
	cur := tg.CurrentIndex()

	type row struct{ mark, start, name, location, state string }
	var rows []row
	for idx, d := range tg.disciplines {
		mark := ""
		if idx == cur {
			mark = ">"
		}
		rows = append(rows, row{
			mark:     mark,
			start:    d.StartTime.Format("Mon 15:04"),
			name:     d.Name,
			location: d.Location,
			state:    d.State.String(),
		})
	}

	// Compute column widths
	maxT, maxN, maxL := len("Start"), len("Discipline"), len("Location")
	for _, r := range rows {
		if l := len(r.start); l > maxT {
			maxT = l
		}
		if l := len(r.name); l > maxN {
			maxN = l
		}
		if l := len(r.location); l > maxL {
			maxL = l
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v\n\n", tg.name))
	sb.WriteString(fmt.Sprintf("  %-*s  %-*s  %-*s  %s\n", maxT, "Start", maxN,
		"Discipline", maxL, "Location", "State"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%1s %-*s  %-*s  %-*s  %s\n", r.mark, maxT,
			r.start, maxN, r.name, maxL, r.location, r.state))
	}
	if tg.IsComplete() {
		sb.WriteString("\nAll disciplines finished.\n")
	}

	return sb.String()
}

// BuildOrderOutput formats a starting order. Track orders list each run
// with its lanes; default orders are numbered.
func BuildOrderOutput(order StartingOrder) string {
	var sb strings.Builder

	switch order.Kind {
	case OrderNone:
		sb.WriteString("No starting order\n")
	case OrderDefault:
		if len(order.Athletes) == 0 {
			sb.WriteString("No athletes\n")
		}
		width := len(fmt.Sprintf("%d", len(order.Athletes)))
		for idx, a := range order.Athletes {
			sb.WriteString(fmt.Sprintf("%*d. %v\n", width, idx+1, a))
		}
	case OrderTrack:
		if len(order.Runs) == 0 {
			sb.WriteString("No runs\n")
		}
		for _, r := range order.Runs {
			sb.WriteString(fmt.Sprintf("%v\n", r.Name))
			for lane, a := range r.Athletes {
				if a == nil {
					continue
				}
				sb.WriteString(fmt.Sprintf("  Lane %d: %v\n", lane+1, a))
			}
		}
	}

	return sb.String()
}
