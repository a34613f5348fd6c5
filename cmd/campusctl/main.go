// Package main provides campusctl, an operator CLI for inspecting CampusBell
// data files and upstream feeds without running the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/campusbell/campusbell/internal/config"
	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/events/feed"
	"github.com/campusbell/campusbell/internal/schedule"
	"github.com/campusbell/campusbell/internal/wellness"
	"github.com/campusbell/campusbell/pkg/timefmt"
)

// Version is set at compile time via ldflags.
var Version = "dev"

type validateCmd struct{}

type todayCmd struct {
	Date string `arg:"-d,--date" help:"Resolve a specific M/D/YYYY date instead of today."`
	Mode string `arg:"-m,--mode" help:"Override the schedule mode."`
}

type eventsCmd struct {
	Date string `arg:"-d,--date" help:"Show only one M/D/YYYY date."`
}

type args struct {
	Config   string       `arg:"-c,--config" default:"campusbell.yaml" help:"Path to the configuration file."`
	Validate *validateCmd `arg:"subcommand:validate" help:"Validate the schedule and wellness data files."`
	Today    *todayCmd    `arg:"subcommand:today" help:"Print the resolved bell schedule for a date."`
	Events   *eventsCmd   `arg:"subcommand:events" help:"Fetch and print the district calendar feed."`
}

func (args) Version() string {
	return "campusctl " + Version
}

func main() {
	var cliArgs args
	parser := arg.MustParse(&cliArgs)

	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		fatal("loading config: %v", err)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		fatal("invalid timezone %q: %v", cfg.Timezone, err)
	}

	switch {
	case cliArgs.Validate != nil:
		runValidate(cfg)
	case cliArgs.Today != nil:
		runToday(cfg, cliArgs.Today, location)
	case cliArgs.Events != nil:
		runEvents(cfg, cliArgs.Events, location)
	default:
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
}

func runValidate(cfg *config.Config) {
	definitions, version, err := schedule.LoadFile(cfg.SchedulesPath)
	if err != nil {
		fatal("schedules: %v", err)
	}
	fmt.Printf("schedules: OK (%d definitions, version %s)\n", len(definitions), version)

	if cfg.WellnessPath != "" {
		hours, hoursErr := wellness.LoadHoursFile(cfg.WellnessPath)
		if hoursErr != nil {
			fatal("wellness hours: %v", hoursErr)
		}
		fmt.Printf("wellness hours: OK (%d regular, %d exceptions)\n",
			len(hours.RegularHours), len(hours.Exceptions))
	}

	if cfg.StaticEventsPath != "" {
		static, staticErr := events.LoadStaticFile(cfg.StaticEventsPath)
		if staticErr != nil {
			fatal("bundled events: %v", staticErr)
		}
		fmt.Printf("bundled events: OK (%d dates)\n", len(static))
	}
}

func runToday(cfg *config.Config, cmd *todayCmd, location *time.Location) {
	definitions, _, err := schedule.LoadFile(cfg.SchedulesPath)
	if err != nil {
		fatal("schedules: %v", err)
	}

	svc := schedule.NewService(schedule.ServiceConfig{
		Definitions:       definitions,
		Logger:            zerolog.Nop(),
		Clock:             func() time.Time { return time.Now().In(location) },
		RotationCycleDays: cfg.RotationCycleDays,
	})

	at := svc.Now()
	if cmd.Date != "" {
		at, err = schedule.ParseDate(cmd.Date, location)
		if err != nil {
			fatal("invalid date %q: %v", cmd.Date, err)
		}
	}

	info, err := svc.CurrentPeriodInfo(at, cmd.Mode)
	if err != nil {
		fatal("resolving schedule: %v", err)
	}

	if !info.IsSchoolDay {
		fmt.Printf("%s: no school\n", schedule.DateKey(at))
		return
	}

	fmt.Printf("%s: %s", schedule.DateKey(at), info.Schedule.Name)
	if info.Schedule.Mode != "" {
		fmt.Printf(" (%s)", info.Schedule.Mode)
	}
	fmt.Println()

	for _, p := range info.AllPeriods {
		marker := "  "
		if info.CurrentPeriod != nil && p.Period == *info.CurrentPeriod {
			marker = "> "
		}
		fmt.Printf("%speriod %-4s %s - %s\n", marker, p.Period,
			timefmt.FormatDisplayTime(p.StartTime),
			timefmt.FormatDisplayTime(p.EndTime))
	}

	if info.CurrentPeriod != nil {
		fmt.Printf("current period %s, %s remaining\n",
			*info.CurrentPeriod, timefmt.FormatCountdown(info.TimeRemaining))
	} else if info.NextPeriod != nil {
		fmt.Printf("next period %s in %s\n",
			*info.NextPeriod, timefmt.FormatCountdown(info.TimeUntilNext))
	}
}

func runEvents(cfg *config.Config, cmd *eventsCmd, location *time.Location) {
	if cfg.Feed.URL == "" {
		fatal("no feed URL configured")
	}

	client := feed.NewClient(feed.ClientConfig{
		URL:    cfg.Feed.URL,
		Logger: zerolog.Nop(),
	})

	svc := events.NewService(events.ServiceConfig{
		Provider: client,
		Logger:   zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventMap, err := svc.Refresh(ctx)
	if err != nil {
		fatal("fetching feed: %v", err)
	}

	keys := make([]string, 0, len(eventMap))
	for key := range eventMap {
		if cmd.Date != "" && key != cmd.Date {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := schedule.ParseDate(keys[i], location)
		b, _ := schedule.ParseDate(keys[j], location)
		return a.Before(b)
	})

	total := 0
	for _, key := range keys {
		fmt.Printf("%s:\n", key)
		for _, e := range eventMap[key] {
			total++
			if e.AllDay {
				fmt.Printf("  [all day] %s\n", e.Name)
				continue
			}
			start := time.UnixMilli(e.Start).In(location)
			fmt.Printf("  %s  %s (%s)\n",
				timefmt.FormatDisplayTime(start), e.Name, humanize.Time(start))
		}
	}
	fmt.Printf("%d events across %d dates\n", total, len(keys))
}

func fatal(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
