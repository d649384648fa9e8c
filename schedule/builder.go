/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DisciplineConfig is the raw configuration of one discipline within a
// group. Time has the form "HH:MM, <day name>".
type DisciplineConfig struct {
	Time     string `json:"time" yaml:"time"`
	Location string `json:"location" yaml:"location"`
}

type buildOptions struct {
	loc *time.Location
}

type BuildOption func(*buildOptions)

// WithLocation sets the time zone start times are interpreted in. The
// default is time.Local.
func WithLocation(loc *time.Location) BuildOption {
	return func(o *buildOptions) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// Build constructs the time group of one competing group. disciplines maps
// discipline names to their time and location, dates maps day names to
// calendar dates and kinds maps discipline names to an ordering kind
// ("Track", "Default" or "None"). Any bad entry fails the whole build with a
// *ConfigError.
func Build(group string, disciplines map[string]DisciplineConfig,
	dates map[string]string, kinds map[string]string, roster []RosterEntry,
	opts ...BuildOption) (*TimeGroup, error) {

	bo := buildOptions{loc: time.Local}
	for _, o := range opts {
		o(&bo)
	}

	if len(disciplines) == 0 {
		return nil, &ConfigError{Group: group,
			Err: errors.New("group has no disciplines")}
	}

	defaultOrder, trackOrder := DeriveOrder(dedupeRoster(roster),
		GroupsByTag(group))

	// map iteration order is random; walk names sorted so errors and ties
	// are deterministic
	names := make([]string, 0, len(disciplines))
	for name := range disciplines {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]Discipline, 0, len(names))
	for _, name := range names {
		d, err := buildDiscipline(group, name, disciplines[name], dates, kinds,
			bo.loc)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartTime.Before(list[j].StartTime)
	})

	return &TimeGroup{
		name:         group,
		defaultOrder: defaultOrder,
		trackOrder:   trackOrder,
		disciplines:  list,
	}, nil
}

func buildDiscipline(group string, name string, cfg DisciplineConfig,
	dates map[string]string, kinds map[string]string,
	loc *time.Location) (Discipline, error) {

	start, err := parseStartTime(cfg.Time, dates, loc)
	if err != nil {
		return Discipline{}, &ConfigError{Group: group, Discipline: name,
			Field: "time", Value: cfg.Time, Err: err}
	}

	kindStr, ok := kinds[name]
	if !ok {
		return Discipline{}, &ConfigError{Group: group, Discipline: name,
			Field: "DisciplineTypes",
			Err:   errors.New("no ordering kind configured")}
	}
	kind, err := ParseOrderKind(kindStr)
	if err != nil {
		return Discipline{}, &ConfigError{Group: group, Discipline: name,
			Field: "DisciplineTypes", Value: kindStr, Err: err}
	}

	return Discipline{
		Name:      name,
		Location:  cfg.Location,
		StartTime: start,
		State:     BeforeStart,
		Type:      disciplineType(name, kind),
		OrderKind: kind,
	}, nil
}

func disciplineType(name string, kind OrderKind) DisciplineType {
	switch kind {
	case OrderTrack:
		return TypeTrack
	case OrderDefault:
		if _, ok := heightDisciplines[name]; ok {
			return TypeHeight
		}
		return TypeDistance
	default:
		return TypeTime
	}
}

// dateLayouts are the numeric date forms accepted in the Dates table. Slash
// dates are not among them; "06/07/2025" has no single reading.
var dateLayouts = []string{
	"2006-01-02",
	"2.1.2006",
}

// parseDate resolves a Dates entry. ISO and day-first dotted dates are
// matched against dateLayouts; anything else must be a date dateparse can
// read without a month/day ambiguity, e.g. "June 14, 2025".
func parseDate(s string) (int, time.Month, int, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), t.Month(), t.Day(), nil
		}
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("unrecognised date %q (use YYYY-MM-DD or DD.MM.YYYY): %w",
			s, err)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// parseStartTime parses "HH:MM, <day name>" using the date table.
func parseStartTime(s string, dates map[string]string,
	loc *time.Location) (time.Time, error) {

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("expected \"HH:MM, <day>\", got %v commas",
			len(parts)-1)
	}
	clock := strings.TrimSpace(parts[0])
	day := strings.TrimSpace(parts[1])

	date, ok := dates[day]
	if !ok {
		return time.Time{}, fmt.Errorf("day %q not found in Dates", day)
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock time %q: %w", clock, err)
	}
	year, month, mday, err := parseDate(strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(year, month, mday, hm.Hour(), hm.Minute(), 0, 0, loc), nil
}
