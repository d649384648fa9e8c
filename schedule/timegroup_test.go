/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func buildFourGroup(t *testing.T) *TimeGroup {
	t.Helper()
	disciplines := map[string]DisciplineConfig{
		"100m":       {Time: "09:00, Day1", Location: "Bahn"},
		"Weitsprung": {Time: "10:00, Day1", Location: "Grube"},
		"Hochsprung": {Time: "11:00, Day1", Location: "Anlage"},
		"800m":       {Time: "09:00, Day2", Location: "Bahn"},
	}
	kinds := map[string]string{
		"100m":       "Track",
		"Weitsprung": "Default",
		"Hochsprung": "Default",
		"800m":       "None",
	}
	tg, err := Build("Gruppe 1", disciplines, testDates, kinds,
		makeRoster(8, ""), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return tg
}

func TestChangeDisciplineStateAlreadyFinished(t *testing.T) {
	tg := buildTestGroup(t, "Gruppe 1", makeRoster(7, ""))

	if err := tg.ChangeDisciplineState("B", Finished); err != nil {
		t.Fatalf("finishing B returned error: %v", err)
	}
	err := tg.ChangeDisciplineState("B", Active)
	if !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("expected ErrAlreadyFinished, got %v", err)
	}
	err = tg.ChangeDisciplineState("B", Finished)
	if !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("expected ErrAlreadyFinished for a no-op change, got %v", err)
	}
}

func TestChangeDisciplineStateTransitions(t *testing.T) {
	tg := buildFourGroup(t)

	if err := tg.ChangeDisciplineState("Nope", Active); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := tg.ChangeDisciplineState("Weitsprung", Active); err != nil {
		t.Fatalf("activating Weitsprung returned error: %v", err)
	}
	if err := tg.ChangeDisciplineState("Weitsprung", Active); err != nil {
		t.Errorf("repeating the current state returned error: %v", err)
	}
	err := tg.ChangeDisciplineState("Weitsprung", BeforeStart)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	// skipping Active is a forward move
	if err := tg.ChangeDisciplineState("Hochsprung", Finished); err != nil {
		t.Errorf("finishing Hochsprung returned error: %v", err)
	}

	for _, d := range tg.Disciplines() {
		switch d.Name {
		case "Weitsprung":
			if d.State != Active {
				t.Errorf("Weitsprung is %v; want Active", d.State)
			}
		case "Hochsprung":
			if d.State != Finished {
				t.Errorf("Hochsprung is %v; want Finished", d.State)
			}
		}
	}
}

func TestCurrentDisciplineAdvances(t *testing.T) {
	tg := buildFourGroup(t)
	names := []string{"100m", "Weitsprung", "Hochsprung", "800m"}

	for i, name := range names {
		cur := tg.CurrentDiscipline()
		if cur.Name != name {
			t.Fatalf("step %d: current = %v; want %v", i, cur.Name, name)
		}
		if idx := tg.CurrentIndex(); idx != i {
			t.Errorf("step %d: cursor = %d", i, idx)
		}
		next, err := tg.NextDiscipline()
		if i < len(names)-1 {
			if err != nil || next.Name != names[i+1] {
				t.Errorf("step %d: next = %v, %v; want %v", i, next.Name, err,
					names[i+1])
			}
		} else if !errors.Is(err, ErrNoNextDiscipline) {
			t.Errorf("expected ErrNoNextDiscipline at the end, got %v", err)
		}
		if err := tg.ChangeDisciplineState(name, Active); err != nil {
			t.Fatalf("activating %v returned error: %v", name, err)
		}
		if tg.CurrentDiscipline().Name != name {
			t.Errorf("an active discipline must not advance the cursor")
		}
		if err := tg.ChangeDisciplineState(name, Finished); err != nil {
			t.Fatalf("finishing %v returned error: %v", name, err)
		}
	}

	// the cursor stays on the last discipline
	cur := tg.CurrentDiscipline()
	if cur.Name != "800m" || cur.State != Finished {
		t.Errorf("current = %v (%v); want finished 800m", cur.Name, cur.State)
	}
	if tg.CurrentIndex() != len(names)-1 {
		t.Errorf("cursor moved past the last discipline")
	}
	if !tg.IsComplete() {
		t.Errorf("expected schedule to be complete")
	}
}

func TestCurrentDisciplineSkipsSeveralFinished(t *testing.T) {
	tg := buildFourGroup(t)
	for _, name := range []string{"Weitsprung", "100m"} {
		if err := tg.ChangeDisciplineState(name, Finished); err != nil {
			t.Fatalf("finishing %v returned error: %v", name, err)
		}
	}
	if cur := tg.CurrentDiscipline(); cur.Name != "Hochsprung" {
		t.Errorf("current = %v; want Hochsprung", cur.Name)
	}
}

func TestChangeStartingOrderKeepsKinds(t *testing.T) {
	tg := buildFourGroup(t)
	before := make(map[string]OrderKind)
	for _, d := range tg.Disciplines() {
		before[d.Name] = d.OrderKind
	}

	reversed := tg.DefaultStartingOrder()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	_, runs := DeriveOrder(makeRoster(2, "X"), false)

	tg.ChangeStartingOrder(NewDefaultOrder(reversed))
	tg.ChangeStartingOrder(NewTrackOrder(runs))
	tg.ChangeStartingOrder(NoOrder())

	for _, d := range tg.Disciplines() {
		if d.OrderKind != before[d.Name] {
			t.Errorf("%v changed kind from %v to %v", d.Name, before[d.Name],
				d.OrderKind)
		}
		order, err := tg.StartingOrder(d.Name)
		if err != nil {
			t.Fatalf("StartingOrder(%v) returned error: %v", d.Name, err)
		}
		if order.Kind != d.OrderKind {
			t.Errorf("%v order kind %v; want %v", d.Name, order.Kind, d.OrderKind)
		}
	}

	order, _ := tg.StartingOrder("Weitsprung")
	if !reflect.DeepEqual(order.Athletes, reversed) {
		t.Errorf("Weitsprung did not pick up the new default order")
	}
	order, _ = tg.StartingOrder("100m")
	if !reflect.DeepEqual(order.Runs, runs) {
		t.Errorf("100m did not pick up the new track order")
	}
	if !reflect.DeepEqual(tg.DefaultTrackOrder(), runs) {
		t.Errorf("group track order not replaced")
	}
}

func TestChangeStartingOrderDropsDuplicates(t *testing.T) {
	tg := buildFourGroup(t)
	a := RosterEntry{Name: "Anna", Surname: "Muster"}
	b := RosterEntry{Name: "Ben", Surname: "Kurz"}

	tg.ChangeStartingOrder(NewDefaultOrder([]RosterEntry{a, b, a}))
	want := []RosterEntry{a, b}
	if got := tg.DefaultStartingOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("DefaultStartingOrder = %v; want %v", got, want)
	}
	order, err := tg.StartingOrder("Weitsprung")
	if err != nil {
		t.Fatalf("StartingOrder returned error: %v", err)
	}
	if !reflect.DeepEqual(order.Athletes, want) {
		t.Errorf("Weitsprung athletes = %v; want %v", order.Athletes, want)
	}

	run1 := Run{Name: "Run 1"}
	run1.Athletes[0], run1.Athletes[1] = &a, &b
	run2 := Run{Name: "Run 2"}
	run2.Athletes[0] = &a
	tg.ChangeStartingOrder(NewTrackOrder([]Run{run1, run2}))

	runs := tg.DefaultTrackOrder()
	if len(runs) != 2 {
		t.Fatalf("got %d runs; want 2", len(runs))
	}
	if runs[0].Len() != 2 || runs[1].Len() != 0 {
		t.Errorf("run sizes = %d, %d; want 2, 0", runs[0].Len(), runs[1].Len())
	}
	// the caller's runs are left alone
	if run2.Athletes[0] == nil {
		t.Errorf("ChangeStartingOrder modified its argument")
	}
}

func TestFinishedDisciplineKeepsItsOrder(t *testing.T) {
	tg := buildFourGroup(t)
	original, _ := tg.StartingOrder("Weitsprung")
	if err := tg.ChangeDisciplineState("Weitsprung", Finished); err != nil {
		t.Fatalf("finishing Weitsprung returned error: %v", err)
	}

	tg.ChangeStartingOrder(NewDefaultOrder(makeRoster(1, "Z")))
	tg.UpdateAthletes([]RosterEntry{{Name: "Late", Surname: "Comer"}})

	got, _ := tg.StartingOrder("Weitsprung")
	if !reflect.DeepEqual(got, original) {
		t.Errorf("finished discipline order changed:\ngot  %v\nwant %v", got,
			original)
	}
	other, _ := tg.StartingOrder("Hochsprung")
	if len(other.Athletes) != 2 {
		t.Errorf("unfinished Hochsprung has %d athletes; want 2",
			len(other.Athletes))
	}
}

func TestUpdateAthletesAppends(t *testing.T) {
	tg := buildFourGroup(t)
	before := tg.DefaultStartingOrder()

	late := []RosterEntry{
		{Name: "Late", Surname: "One"},
		{Name: "Late", Surname: "Two"},
		before[0], // already registered
		{Name: "Late", Surname: "One"},
	}
	tg.UpdateAthletes(late)

	after := tg.DefaultStartingOrder()
	if len(after) != len(before)+2 {
		t.Fatalf("order has %d athletes; want %d", len(after), len(before)+2)
	}
	if !reflect.DeepEqual(after[:len(before)], before) {
		t.Errorf("existing athletes were reordered")
	}
	seen := make(map[string]bool)
	for _, e := range after {
		if seen[e.FullName()] {
			t.Errorf("duplicate athlete %v", e.FullName())
		}
		seen[e.FullName()] = true
	}
	checkDerived(t, after, after, tg.DefaultTrackOrder(), false)

	order, _ := tg.StartingOrder("100m")
	if len(order.Runs) != 2 || order.Runs[1].Len() != 4 {
		t.Errorf("100m runs not re-derived: %v", order.Runs)
	}
}

func TestUpdateAthletesYouthGroup(t *testing.T) {
	tg := buildTestGroup(t, "Kinder", makeRoster(6, "U10"))
	tg.UpdateAthletes([]RosterEntry{
		{Name: "New", Surname: "Kid", AgeGroup: "U8"},
		{Name: "Other", Surname: "Kid", AgeGroup: "U10"},
	})
	order := tg.DefaultStartingOrder()
	runs := tg.DefaultTrackOrder()
	checkDerived(t, order, order, runs, true)
	if order[0].AgeGroup != "U8" {
		t.Errorf("expected U8 first after re-derive, got %v", order[0])
	}
	if len(runs) != 3 {
		t.Errorf("got %d runs; want 3", len(runs))
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	tg := buildFourGroup(t)
	order := tg.DefaultStartingOrder()
	order[0].Name = "Mutated"
	runs := tg.DefaultTrackOrder()
	runs[0].Athletes[0].Name = "Mutated"
	ds := tg.Disciplines()
	ds[0].State = Finished

	if tg.DefaultStartingOrder()[0].Name == "Mutated" ||
		tg.DefaultTrackOrder()[0].Athletes[0].Name == "Mutated" {
		t.Errorf("snapshot aliases group order")
	}
	if tg.Disciplines()[0].State == Finished {
		t.Errorf("Disciplines aliases internal state")
	}
}

func TestTimeGroupJSONRoundTrip(t *testing.T) {
	tg := buildFourGroup(t)
	if err := tg.ChangeDisciplineState("100m", Finished); err != nil {
		t.Fatalf("finishing 100m returned error: %v", err)
	}
	tg.CurrentDiscipline()

	data, err := json.Marshal(tg)
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}
	var back TimeGroup
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}

	if back.Name() != tg.Name() || back.CurrentIndex() != tg.CurrentIndex() {
		t.Errorf("name/cursor lost: %v %d", back.Name(), back.CurrentIndex())
	}
	if !reflect.DeepEqual(back.DefaultStartingOrder(), tg.DefaultStartingOrder()) {
		t.Errorf("default order lost")
	}
	if !reflect.DeepEqual(back.DefaultTrackOrder(), tg.DefaultTrackOrder()) {
		t.Errorf("track order lost")
	}
	got, want := back.Disciplines(), tg.Disciplines()
	for i := range want {
		if got[i].Name != want[i].Name || got[i].State != want[i].State ||
			got[i].OrderKind != want[i].OrderKind ||
			!got[i].StartTime.Equal(want[i].StartTime) {
			t.Errorf("discipline %d: got %+v; want %+v", i, got[i], want[i])
		}
	}
	final, _ := back.StartingOrder("100m")
	if final.Kind != OrderTrack || len(final.Runs) != 2 {
		t.Errorf("final order of 100m lost: %v", final)
	}
}

func TestTimeGroupUnmarshalRejectsBadCursor(t *testing.T) {
	data := []byte(`{"name":"x","disciplines":[{"name":"a","state":"Active","type":"Track","orderKind":"Track"}],"current":3}`)
	var tg TimeGroup
	if err := json.Unmarshal(data, &tg); err == nil {
		t.Errorf("expected error for cursor out of range")
	}
}
