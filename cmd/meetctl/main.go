/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gregjones/httpcache/diskcache"
	"github.com/urfave/cli/v2"

	"github.com/mikeb26/meetday/internal"
	"github.com/mikeb26/meetday/meet"
	"github.com/mikeb26/meetday/roster"
	"github.com/mikeb26/meetday/schedule"
	"github.com/mikeb26/meetday/store"
)

const (
	storeFlag      = "store"
	bucketFlag     = "bucket"
	gzipFlag       = "gzip"
	groupFlag      = "group"
	configFlag     = "config"
	rosterFlag     = "roster"
	defGroupFlag   = "default-group"
	disciplineFlag = "discipline"
	stateFlag      = "state"
	fileFlag       = "file"
	nameFlag       = "name"
	surnameFlag    = "surname"
	ageGroupFlag   = "age-group"

	rosterMaxAge = 10 * time.Minute
)

var build string
var semanticVersion = "v0.3.0" + build

var groupArg = &cli.StringFlag{
	Name:     groupFlag,
	Aliases:  []string{"g"},
	Usage:    "The time group to operate on",
	Required: true,
}

func main() {
	log.SetFlags(0)

	app := &cli.App{
		Name:    "meetctl",
		Usage:   "Run the schedule and starting orders of an athletics meet",
		Version: semanticVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  storeFlag,
				Usage: "Directory holding the meet's schedules",
				Value: internal.DefaultStoreDir,
			},
			&cli.StringFlag{
				Name:    bucketFlag,
				Usage:   "S3 bucket holding the meet's schedules (overrides --store)",
				EnvVars: []string{"MEETDAY_BUCKET"},
			},
			&cli.BoolFlag{
				Name:  gzipFlag,
				Usage: "Compress schedules stored in S3",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "setup",
				Usage: "Build every group's schedule from a meet configuration and registration lists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     configFlag,
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML or JSON meet configuration",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    rosterFlag,
						Aliases: []string{"r"},
						Usage:   "URL or path of a registration list (CSV or HTML); may be repeated",
					},
					&cli.StringFlag{
						Name:  defGroupFlag,
						Usage: "Group receiving athletes whose registration names no group",
					},
				},
				Action: handleSetup,
			},
			{
				Name:   "groups",
				Usage:  "List the groups of the meet",
				Action: handleGroups,
			},
			{
				Name:   "schedule",
				Usage:  "Show a group's schedule",
				Flags:  []cli.Flag{groupArg},
				Action: handleSchedule,
			},
			{
				Name:   "current",
				Usage:  "Show a group's current discipline",
				Flags:  []cli.Flag{groupArg},
				Action: handleCurrent,
			},
			{
				Name:   "next",
				Usage:  "Show the discipline after a group's current one",
				Flags:  []cli.Flag{groupArg},
				Action: handleNext,
			},
			{
				Name:  "state",
				Usage: "Change the state of a discipline (BeforeStart, Active, Finished)",
				Flags: []cli.Flag{
					groupArg,
					&cli.StringFlag{
						Name:     disciplineFlag,
						Aliases:  []string{"d"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     stateFlag,
						Aliases:  []string{"s"},
						Required: true,
					},
				},
				Action: handleState,
			},
			{
				Name:  "order",
				Usage: "Show the starting order of a discipline or the group's default orders",
				Flags: []cli.Flag{
					groupArg,
					&cli.StringFlag{
						Name:    disciplineFlag,
						Aliases: []string{"d"},
					},
				},
				Action: handleOrder,
			},
			{
				Name:  "set-order",
				Usage: "Replace a group's default or track order from a JSON file",
				Flags: []cli.Flag{
					groupArg,
					&cli.StringFlag{
						Name:     fileFlag,
						Aliases:  []string{"f"},
						Usage:    "JSON starting order; \"-\" reads stdin",
						Required: true,
					},
				},
				Action: handleSetOrder,
			},
			{
				Name:  "add",
				Usage: "Add a late registration to a group",
				Flags: []cli.Flag{
					groupArg,
					&cli.StringFlag{Name: nameFlag, Required: true},
					&cli.StringFlag{Name: surnameFlag, Required: true},
					&cli.StringFlag{Name: ageGroupFlag},
				},
				Action: handleAdd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openStore(cCtx *cli.Context) (*store.Store, error) {
	if bucket := cCtx.String(bucketFlag); bucket != "" {
		return store.NewS3(cCtx.Context, bucket, cCtx.Bool(gzipFlag))
	}
	return store.NewDisk(cCtx.String(storeFlag)), nil
}

func openService(cCtx *cli.Context) (*meet.Service, error) {
	st, err := openStore(cCtx)
	if err != nil {
		return nil, err
	}
	return meet.NewService(st), nil
}

func handleSetup(cCtx *cli.Context) error {
	f, err := os.Open(cCtx.String(configFlag))
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, err := schedule.LoadConfig(f)
	if err != nil {
		return err
	}

	rosters, err := loadRosters(cCtx.Context, cCtx.String(storeFlag),
		cCtx.StringSlice(rosterFlag))
	if err != nil {
		return err
	}
	rosters.Assign(cCtx.String(defGroupFlag))

	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	if err := svc.Setup(cCtx.Context, cfg, rosters); err != nil {
		return err
	}
	for _, g := range cfg.GroupNames() {
		fmt.Printf("%v: %d athletes\n", g, len(rosters[g]))
	}
	return nil
}

// loadRosters reads registration lists from local files and downloads the
// ones given as URLs. Downloads are cached next to the schedules.
func loadRosters(ctx context.Context, storeDir string,
	locations []string) (roster.Rosters, error) {

	out := make(roster.Rosters)
	var urls []string
	for _, loc := range locations {
		if u, err := url.ParseRequestURI(loc); err == nil && u.Scheme != "" &&
			u.Host != "" {
			urls = append(urls, loc)
			continue
		}
		r, err := readRosterFile(loc)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", loc, err)
		}
		out.Merge(r)
	}
	if len(urls) == 0 {
		return out, nil
	}

	client := internal.NewCachedHttpClient(
		diskcache.New(filepath.Join(storeDir, "http")), rosterMaxAge)
	fetched, err := roster.FetchAll(ctx, client, urls)
	if err != nil {
		return nil, err
	}
	out.Merge(fetched)

	return out, nil
}

func readRosterFile(path string) (roster.Rosters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return roster.ParseCSV(f)
	}
	return roster.ParseHTML(f)
}

func handleGroups(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	groups := svc.Groups()
	if len(groups) == 0 {
		fmt.Println("No groups; run setup first.")
		return nil
	}
	for _, g := range groups {
		fmt.Println(g)
	}
	return nil
}

func handleSchedule(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	out, err := svc.Schedule(cCtx.String(groupFlag))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func printDiscipline(d schedule.Discipline) {
	fmt.Printf("%v\n  Start:    %v\n  Location: %v\n  State:    %v\n",
		d.Name, d.StartTime.Format("Mon 15:04"), d.Location, d.State)
}

func handleCurrent(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	d, err := svc.CurrentDiscipline(cCtx.String(groupFlag))
	if err != nil {
		return err
	}
	printDiscipline(d)
	return nil
}

func handleNext(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	d, err := svc.NextDiscipline(cCtx.String(groupFlag))
	if err != nil {
		return err
	}
	printDiscipline(d)
	return nil
}

func handleState(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	msg, err := svc.ChangeDisciplineState(cCtx.String(groupFlag),
		cCtx.String(disciplineFlag), cCtx.String(stateFlag))
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func handleOrder(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	group := cCtx.String(groupFlag)

	if d := cCtx.String(disciplineFlag); d != "" {
		order, err := svc.StartingOrder(group, d)
		if err != nil {
			return err
		}
		fmt.Print(schedule.BuildOrderOutput(order))
		return nil
	}

	athletes, err := svc.DefaultStartingOrder(group)
	if err != nil {
		return err
	}
	runs, err := svc.DefaultTrackOrder(group)
	if err != nil {
		return err
	}
	fmt.Println("Default order")
	fmt.Print(schedule.BuildOrderOutput(schedule.NewDefaultOrder(athletes)))
	fmt.Println()
	fmt.Println("Track order")
	fmt.Print(schedule.BuildOrderOutput(schedule.NewTrackOrder(runs)))
	return nil
}

func handleSetOrder(cCtx *cli.Context) error {
	in := os.Stdin
	if path := cCtx.String(fileFlag); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var order schedule.StartingOrder
	if err := json.NewDecoder(in).Decode(&order); err != nil {
		return fmt.Errorf("unable to decode starting order: %w", err)
	}
	if order.Kind == schedule.OrderNone {
		return fmt.Errorf("starting order must be of kind %v or %v",
			schedule.OrderDefault, schedule.OrderTrack)
	}

	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	if err := svc.ChangeStartingOrder(cCtx.String(groupFlag), order); err != nil {
		return err
	}
	fmt.Printf("%v order of %v replaced\n", order.Kind, cCtx.String(groupFlag))
	return nil
}

func handleAdd(cCtx *cli.Context) error {
	svc, err := openService(cCtx)
	if err != nil {
		return err
	}
	entry := schedule.RosterEntry{
		Name:     internal.NormalizeName(cCtx.String(nameFlag)),
		Surname:  internal.NormalizeName(cCtx.String(surnameFlag)),
		AgeGroup: strings.TrimSpace(cCtx.String(ageGroupFlag)),
	}
	group := cCtx.String(groupFlag)
	if err := svc.UpdateAthletes(group, []schedule.RosterEntry{entry}); err != nil {
		return err
	}
	fmt.Printf("%v added to %v\n", entry.FullName(), group)
	return nil
}
