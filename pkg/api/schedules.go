package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const schedulePath = "/schedules/schedule"

// ListSchedules returns every schedule of the current user.
func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	resp, err := c.do(ctx, c.authed, http.MethodGet, schedulePath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Schedule](c.logger, resp.body, "schedules", "scheduleData"), nil
}

// CreateSchedule submits a new schedule.
func (c *Client) CreateSchedule(ctx context.Context, s Schedule) (Schedule, error) {
	s.Title = strings.TrimSpace(s.Title)
	if err := validateSchedule(s); err != nil {
		return Schedule{}, err
	}
	if s.Status == "" {
		s.Status = ScheduleUpcoming
	}
	s.ID = ""

	resp, err := c.do(ctx, c.authed, http.MethodPost, schedulePath, s)
	if err != nil {
		return Schedule{}, err
	}
	if created, ok := decodeOne(resp.body, func(v Schedule) bool { return v.ID != "" }, "schedule", "data", "newSchedule"); ok {
		return created, nil
	}
	return s, nil
}

// UpdateSchedule applies a partial update.
func (c *Client) UpdateSchedule(ctx context.Context, id string, p SchedulePatch) (Schedule, error) {
	if id == "" {
		return Schedule{}, validationError("schedule id is required")
	}
	if p.StartTime != nil && p.EndTime != nil && p.EndTime.Time.Before(p.StartTime.Time) {
		return Schedule{}, validationError("end time must not be before start time")
	}
	resp, err := c.do(ctx, c.authed, http.MethodPatch, schedulePath+"/"+url.PathEscape(id), p)
	if err != nil {
		return Schedule{}, err
	}
	updated, _ := decodeOne(resp.body, func(v Schedule) bool { return v.ID != "" }, "schedule", "data", "updatedSchedule")
	return updated, nil
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	if id == "" {
		return validationError("schedule id is required")
	}
	_, err := c.do(ctx, c.authed, http.MethodDelete, schedulePath+"/"+url.PathEscape(id), nil)
	return err
}

func validateSchedule(s Schedule) error {
	switch {
	case s.Title == "":
		return validationError("title is required")
	case !s.StartTime.Valid || !s.EndTime.Valid:
		return validationError("start and end time are required")
	case s.EndTime.Time.Before(s.StartTime.Time):
		return validationError("end time must not be before start time")
	}
	return nil
}
