/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"strconv"
	"strings"
)

// RosterEntry is the minimal identity of one athlete as far as ordering is
// concerned. An empty AgeGroup means the athlete carries no tag.
type RosterEntry struct {
	Name     string `json:"name" yaml:"name"`
	Surname  string `json:"surname" yaml:"surname"`
	AgeGroup string `json:"ageGroup,omitempty" yaml:"ageGroup,omitempty"`
}

// FullName is the identity of an entry; two entries with the same full name
// are the same athlete.
func (e RosterEntry) FullName() string {
	return strings.TrimSpace(e.Name + " " + e.Surname)
}

func (e RosterEntry) String() string {
	if e.AgeGroup == "" {
		return e.FullName()
	}
	return e.FullName() + " (" + e.AgeGroup + ")"
}

// dedupeRoster drops entries whose full name was already seen; the first
// occurrence wins.
func dedupeRoster(entries []RosterEntry) []RosterEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]RosterEntry, 0, len(entries))
	for _, e := range entries {
		key := e.FullName()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ageGroupLess orders age-group tags: untagged first, then "U<n>" tags by
// ascending number, then everything else lexicographically.
func ageGroupLess(a, b string) bool {
	if a == b {
		return false
	}
	if a == "" || b == "" {
		return a == ""
	}
	an, aok := underAge(a)
	bn, bok := underAge(b)
	if aok && bok {
		if an != bn {
			return an < bn
		}
		return a < b
	}
	// U-tags before other tags
	if aok != bok {
		return aok
	}
	return a < b
}

func underAge(tag string) (int, bool) {
	if !strings.HasPrefix(tag, "U") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(tag, "U"))
	if err != nil {
		return 0, false
	}
	return n, true
}
