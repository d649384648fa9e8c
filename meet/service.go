/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package meet

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/meetday/schedule"
	"github.com/mikeb26/meetday/store"
)

// Service exposes the schedule operations of a meet, addressed by group
// name. Every mutation is a fetch-mutate-store cycle through
// store.Store.Update.
type Service struct {
	store *store.Store
	opts  []schedule.BuildOption
}

func NewService(st *store.Store, opts ...schedule.BuildOption) *Service {
	return &Service{store: st, opts: opts}
}

// Setup builds the schedules of every configured group from cfg and the
// rosters keyed by group name. Groups are built concurrently; nothing is
// stored unless every group builds.
func (s *Service) Setup(ctx context.Context, cfg *schedule.Config,
	rosters map[string][]schedule.RosterEntry) error {

	names := cfg.GroupNames()
	built := make([]*schedule.TimeGroup, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for idx, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tg, err := cfg.Build(name, rosters[name], s.opts...)
			if err != nil {
				return err
			}
			built[idx] = tg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("meet.setup: %v", err)
		return err
	}

	for group := range rosters {
		if _, ok := cfg.Groups[group]; !ok && group != "" {
			log.Printf("meet.setup: ignoring roster for unconfigured group %q",
				group)
		}
	}

	for _, tg := range built {
		if err := s.store.Put(tg.Name(), tg); err != nil {
			return err
		}
		log.Printf("meet.setup: stored %v (%d disciplines, %d athletes)",
			tg.Name(), len(tg.Disciplines()), len(tg.DefaultStartingOrder()))
	}
	return nil
}

// Groups returns the names of all stored groups.
func (s *Service) Groups() []string {
	return s.store.Keys()
}

func (s *Service) Disciplines(group string) ([]schedule.Discipline, error) {
	tg, err := s.store.Get(group)
	if err != nil {
		return nil, err
	}
	return tg.Disciplines(), nil
}

// CurrentDiscipline returns the current discipline of group. Reading it may
// move the cursor past finished disciplines, so the read is stored too.
func (s *Service) CurrentDiscipline(group string) (schedule.Discipline, error) {
	var cur schedule.Discipline
	err := s.store.Update(group, func(tg *schedule.TimeGroup) error {
		cur = tg.CurrentDiscipline()
		return nil
	})
	return cur, err
}

func (s *Service) NextDiscipline(group string) (schedule.Discipline, error) {
	var next schedule.Discipline
	err := s.store.Update(group, func(tg *schedule.TimeGroup) error {
		var err error
		next, err = tg.NextDiscipline()
		return err
	})
	return next, err
}

// ChangeDisciplineState parses token and applies it to the named
// discipline. It returns a confirmation message for the operator.
func (s *Service) ChangeDisciplineState(group string, discipline string,
	token string) (string, error) {

	state, err := schedule.ParseState(token)
	if err != nil {
		return "", err
	}
	err = s.store.Update(group, func(tg *schedule.TimeGroup) error {
		return tg.ChangeDisciplineState(discipline, state)
	})
	if err != nil {
		log.Printf("meet.state: %v/%v -> %v: %v", group, discipline, state, err)
		return "", err
	}

	log.Printf("meet.state: %v/%v -> %v", group, discipline, state)
	return fmt.Sprintf("%v (%v) is now %v", discipline, group, state), nil
}

func (s *Service) DefaultStartingOrder(group string) ([]schedule.RosterEntry, error) {
	tg, err := s.store.Get(group)
	if err != nil {
		return nil, err
	}
	return tg.DefaultStartingOrder(), nil
}

func (s *Service) DefaultTrackOrder(group string) ([]schedule.Run, error) {
	tg, err := s.store.Get(group)
	if err != nil {
		return nil, err
	}
	return tg.DefaultTrackOrder(), nil
}

// StartingOrder returns the order in effect for one discipline of group.
func (s *Service) StartingOrder(group string,
	discipline string) (schedule.StartingOrder, error) {

	tg, err := s.store.Get(group)
	if err != nil {
		return schedule.StartingOrder{}, err
	}
	return tg.StartingOrder(discipline)
}

func (s *Service) ChangeStartingOrder(group string,
	order schedule.StartingOrder) error {

	return s.store.Update(group, func(tg *schedule.TimeGroup) error {
		tg.ChangeStartingOrder(order)
		return nil
	})
}

// UpdateAthletes adds late registrations to group.
func (s *Service) UpdateAthletes(group string,
	entries []schedule.RosterEntry) error {

	err := s.store.Update(group, func(tg *schedule.TimeGroup) error {
		tg.UpdateAthletes(entries)
		return nil
	})
	if err == nil {
		log.Printf("meet.athletes: added %d registrations to %v", len(entries),
			group)
	}
	return err
}

// Schedule returns the formatted schedule of group.
func (s *Service) Schedule(group string) (string, error) {
	var out string
	err := s.store.Update(group, func(tg *schedule.TimeGroup) error {
		out = schedule.BuildScheduleOutput(tg)
		return nil
	})
	return out, err
}
