/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package meet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mikeb26/meetday/schedule"
	"github.com/mikeb26/meetday/store"
)

const testConfigYAML = `
Dates:
  Samstag: "2025-06-14"
DisciplineTypes:
  "100m": Track
  Weitsprung: Default
  "800m": None
Groups:
  "Gruppe 1":
    "100m": {time: "09:00, Samstag", location: "Bahn"}
    Weitsprung: {time: "10:00, Samstag", location: "Grube"}
    "800m": {time: "11:00, Samstag", location: "Bahn"}
  "Kinder":
    "100m": {time: "09:30, Samstag", location: "Bahn"}
`

func makeRoster(n int, tag string) []schedule.RosterEntry {
	ret := make([]schedule.RosterEntry, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, schedule.RosterEntry{
			Name:     fmt.Sprintf("Athlete%02d", i),
			Surname:  "Test",
			AgeGroup: tag,
		})
	}
	return ret
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg, err := schedule.LoadConfig(strings.NewReader(testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	svc := NewService(store.NewMemory(), schedule.WithLocation(time.UTC))
	rosters := map[string][]schedule.RosterEntry{
		"Gruppe 1": makeRoster(8, ""),
		"Kinder": {
			{Name: "Mia", Surname: "Lang", AgeGroup: "U10"},
			{Name: "Tom", Surname: "Kurz", AgeGroup: "U8"},
			{Name: "Ida", Surname: "Berg", AgeGroup: "U10"},
		},
	}
	if err := svc.Setup(context.Background(), cfg, rosters); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	return svc
}

func TestSetup(t *testing.T) {
	svc := newTestService(t)

	groups := svc.Groups()
	if len(groups) != 2 || groups[0] != "Gruppe 1" || groups[1] != "Kinder" {
		t.Fatalf("Groups = %v", groups)
	}
	ds, err := svc.Disciplines("Gruppe 1")
	if err != nil {
		t.Fatalf("Disciplines returned error: %v", err)
	}
	if len(ds) != 3 || ds[0].Name != "100m" {
		t.Errorf("Disciplines = %v", ds)
	}
	order, err := svc.DefaultStartingOrder("Gruppe 1")
	if err != nil || len(order) != 8 {
		t.Errorf("DefaultStartingOrder = %d entries, %v", len(order), err)
	}
	runs, err := svc.DefaultTrackOrder("Kinder")
	if err != nil {
		t.Fatalf("DefaultTrackOrder returned error: %v", err)
	}
	// youth groups split runs by age group
	if len(runs) != 2 {
		t.Errorf("Kinder has %d runs; want 2", len(runs))
	}
}

func TestSetupFailsAtomically(t *testing.T) {
	cfg, err := schedule.LoadConfig(strings.NewReader(testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	cfg.Groups["Kinder"]["100m"] = schedule.DisciplineConfig{
		Time: "9 Uhr", Location: "Bahn"}

	svc := NewService(store.NewMemory(), schedule.WithLocation(time.UTC))
	err = svc.Setup(context.Background(), cfg, nil)
	var cfgErr *schedule.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Setup error = %v; want ConfigError", err)
	}
	if groups := svc.Groups(); len(groups) != 0 {
		t.Errorf("Groups after failed setup = %v; want none", groups)
	}
}

func TestDisciplineProgress(t *testing.T) {
	svc := newTestService(t)

	cur, err := svc.CurrentDiscipline("Gruppe 1")
	if err != nil || cur.Name != "100m" {
		t.Fatalf("CurrentDiscipline = %v, %v; want 100m", cur.Name, err)
	}
	next, err := svc.NextDiscipline("Gruppe 1")
	if err != nil || next.Name != "Weitsprung" {
		t.Fatalf("NextDiscipline = %v, %v; want Weitsprung", next.Name, err)
	}

	msg, err := svc.ChangeDisciplineState("Gruppe 1", "100m", "finished")
	if err != nil {
		t.Fatalf("ChangeDisciplineState returned error: %v", err)
	}
	if !strings.Contains(msg, "Finished") {
		t.Errorf("message %q does not mention the new state", msg)
	}
	cur, err = svc.CurrentDiscipline("Gruppe 1")
	if err != nil || cur.Name != "Weitsprung" {
		t.Errorf("CurrentDiscipline after finish = %v, %v", cur.Name, err)
	}

	tests := []struct {
		name       string
		discipline string
		token      string
		want       error
	}{
		{"finished", "100m", "Active", schedule.ErrAlreadyFinished},
		{"unknown state", "Weitsprung", "paused", schedule.ErrUnknownState},
		{"unknown discipline", "Diskus", "Active", schedule.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChangeDisciplineState("Gruppe 1", tc.discipline,
				tc.token)
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v; want %v", err, tc.want)
			}
		})
	}
}

func TestNextDisciplineAtEnd(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.NextDiscipline("Kinder")
	if !errors.Is(err, schedule.ErrNoNextDiscipline) {
		t.Errorf("NextDiscipline error = %v; want ErrNoNextDiscipline", err)
	}
}

func TestUnknownGroup(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CurrentDiscipline("Gruppe 9"); !errors.Is(err,
		store.ErrNotFound) {
		t.Errorf("CurrentDiscipline error = %v; want store.ErrNotFound", err)
	}
	if _, err := svc.Schedule("Gruppe 9"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Schedule error = %v; want store.ErrNotFound", err)
	}
}

func TestChangeStartingOrder(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.DefaultStartingOrder("Gruppe 1")
	if err != nil {
		t.Fatalf("DefaultStartingOrder returned error: %v", err)
	}
	reversed := make([]schedule.RosterEntry, len(order))
	for i, e := range order {
		reversed[len(order)-1-i] = e
	}
	err = svc.ChangeStartingOrder("Gruppe 1", schedule.NewDefaultOrder(reversed))
	if err != nil {
		t.Fatalf("ChangeStartingOrder returned error: %v", err)
	}

	got, err := svc.StartingOrder("Gruppe 1", "Weitsprung")
	if err != nil {
		t.Fatalf("StartingOrder returned error: %v", err)
	}
	if got.Athletes[0] != order[len(order)-1] {
		t.Errorf("first athlete = %v; want %v", got.Athletes[0],
			order[len(order)-1])
	}
	track, err := svc.StartingOrder("Gruppe 1", "100m")
	if err != nil || track.Kind != schedule.OrderTrack {
		t.Errorf("100m order = %v, %v; want Track order", track.Kind, err)
	}
}

func TestUpdateAthletes(t *testing.T) {
	svc := newTestService(t)

	late := []schedule.RosterEntry{
		{Name: "Late", Surname: "Comer"},
		{Name: "Athlete00", Surname: "Test"},
	}
	if err := svc.UpdateAthletes("Gruppe 1", late); err != nil {
		t.Fatalf("UpdateAthletes returned error: %v", err)
	}
	order, err := svc.DefaultStartingOrder("Gruppe 1")
	if err != nil {
		t.Fatalf("DefaultStartingOrder returned error: %v", err)
	}
	if len(order) != 9 {
		t.Fatalf("order has %d athletes; want 9", len(order))
	}
	if order[8].FullName() != "Late Comer" {
		t.Errorf("last athlete = %v; want Late Comer", order[8])
	}
}

func TestSchedule(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Schedule("Gruppe 1")
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if !strings.HasPrefix(out, "Gruppe 1\n") {
		t.Errorf("schedule does not start with the group name:\n%v", out)
	}
	for _, want := range []string{"100m", "Weitsprung", "800m"} {
		if !strings.Contains(out, want) {
			t.Errorf("schedule is missing %v:\n%v", want, out)
		}
	}
}
