package commands

import (
	"context"
	"errors"
	"fmt"

	"dayplan/pkg/agenda"
	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
)

func (e *Env) dayOrToday(s string) (datenorm.CalendarDay, error) {
	if s == "" {
		return e.today(), nil
	}
	return datenorm.ParseDay(s)
}

// ListSchedules prints the schedules starting on the days local days
// beginning at the given day, one header per day.
func ListSchedules(ctx context.Context, env *Env, dayStr string, days int) error {
	day, err := env.dayOrToday(dayStr)
	if err != nil {
		return err
	}
	if days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", days)
	}
	if _, err := env.RequireSession(ctx); err != nil {
		return err
	}
	schedules, err := env.Client.ListSchedules(ctx)
	if err != nil {
		return fmt.Errorf("loading schedules: %w", err)
	}

	idx, err := agenda.SchedulesBetween(env.Norm, schedules, day, days)
	if err != nil {
		return err
	}
	if len(idx) == 0 {
		if days == 1 {
			fmt.Fprintf(env.Out, "Nothing scheduled on %s.\n", day)
		} else {
			fmt.Fprintf(env.Out, "Nothing scheduled from %s to %s.\n", day, day.AddDays(days-1))
		}
		return nil
	}
	current := datenorm.UnknownDay
	for _, i := range idx {
		s := schedules[i]
		if d := env.Norm.InstantToLocalDay(s.StartTime); d != current {
			current = d
			fmt.Fprintf(env.Out, "%s:\n", d)
		}
		fmt.Fprintf(env.Out, "%s  %s-%s  %s\n", s.ID, env.Norm.LocalClock(s.StartTime), env.Norm.LocalClock(s.EndTime), s.Title)
	}
	return nil
}

// AddSchedule creates a schedule on day between two HH:MM wall-clock times.
func AddSchedule(ctx context.Context, env *Env, title, dayStr, start, end string) (api.Schedule, error) {
	day, err := env.dayOrToday(dayStr)
	if err != nil {
		return api.Schedule{}, err
	}
	startAt, err := clockOn(env.Norm, day, start)
	if err != nil {
		return api.Schedule{}, fmt.Errorf("start: %w", err)
	}
	endAt, err := clockOn(env.Norm, day, end)
	if err != nil {
		return api.Schedule{}, fmt.Errorf("end: %w", err)
	}
	if endAt.Time.Before(startAt.Time) {
		return api.Schedule{}, errors.New("end time must not be before start time")
	}
	if _, err := env.RequireSession(ctx); err != nil {
		return api.Schedule{}, err
	}

	created, err := env.Client.CreateSchedule(ctx, api.Schedule{Title: title, StartTime: startAt, EndTime: endAt, Status: api.ScheduleUpcoming})
	if err != nil {
		return api.Schedule{}, fmt.Errorf("adding schedule: %w", err)
	}
	fmt.Fprintf(env.Out, "Scheduled %s on %s %s-%s\n", created.Title, day, start, end)
	return created, nil
}

func clockOn(n datenorm.Normalizer, day datenorm.CalendarDay, clock string) (datenorm.Instant, error) {
	h, m, err := datenorm.ParseClock(clock)
	if err != nil {
		return datenorm.Instant{}, err
	}
	return n.LocalDayAndTimeToInstant(day, h, m)
}

// DeleteSchedule removes the schedule with id.
func DeleteSchedule(ctx context.Context, env *Env, id string) error {
	if _, err := env.RequireSession(ctx); err != nil {
		return err
	}
	if err := env.Client.DeleteSchedule(ctx, id); err != nil {
		return fmt.Errorf("deleting schedule %s: %w", id, notFound("schedule", id, err))
	}
	fmt.Fprintf(env.Out, "Deleted %s\n", id)
	return nil
}
