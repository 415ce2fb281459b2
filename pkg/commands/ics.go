package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-ical"

	"dayplan/pkg/agenda"
	"dayplan/pkg/api"
)

// WriteICS encodes schedules as an iCalendar document. Schedules without a
// start time are skipped.
func WriteICS(w io.Writer, schedules []api.Schedule, stamp time.Time) (int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//dayplan//EN")

	for _, s := range schedules {
		if !s.StartTime.Valid {
			continue
		}
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, s.ID+"@dayplan")
		ve.Props.SetText(ical.PropSummary, s.Title)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeStart, s.StartTime.Time.UTC())
		end := s.EndTime
		if !end.Valid || end.Time.Before(s.StartTime.Time) {
			end = s.StartTime
		}
		ve.Props.SetDateTime(ical.PropDateTimeEnd, end.Time.UTC())
		cal.Children = append(cal.Children, ve)
	}

	if len(cal.Children) == 0 {
		return 0, errors.New("no schedules to export")
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return 0, fmt.Errorf("encoding calendar: %w", err)
	}
	return len(cal.Children), nil
}

// ExportSchedules writes schedules to filename as .ics, or to the output
// when filename is "-". A non-empty day limits the export to that day.
func ExportSchedules(ctx context.Context, env *Env, filename, dayStr string) error {
	if _, err := env.RequireSession(ctx); err != nil {
		return err
	}
	schedules, err := env.Client.ListSchedules(ctx)
	if err != nil {
		return fmt.Errorf("loading schedules: %w", err)
	}
	if dayStr != "" {
		day, err := env.dayOrToday(dayStr)
		if err != nil {
			return err
		}
		var picked []api.Schedule
		for _, i := range agenda.SchedulesOn(env.Norm, schedules, day) {
			picked = append(picked, schedules[i])
		}
		schedules = picked
	}

	if filename == "-" {
		_, err := WriteICS(env.Out, schedules, env.now())
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	n, err := WriteICS(f, schedules, env.now())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filename)
		return err
	}
	fmt.Fprintf(env.Out, "Successfully exported %d schedule(s) to %s\n", n, filename)
	return nil
}
