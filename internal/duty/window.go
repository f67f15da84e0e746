package duty

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a local time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a "HH:MM" value.
func ParseClockTime(value string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("duty: invalid clock time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("duty: invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("duty: invalid minute in %q", value)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MinuteOfDay returns the clock time as minutes since midnight.
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// String renders the clock time back to "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseSchedule validates a stored schedule document. Documents missing a
// user, with unparseable times, or with an invalid day list are rejected so
// the caller can skip them without failing the pass.
func ParseSchedule(doc ScheduleDocument) (Schedule, error) {
	if strings.TrimSpace(doc.UserID) == "" {
		return Schedule{}, fmt.Errorf("duty: schedule %s has no user", doc.ID)
	}

	start, err := ParseClockTime(doc.StartTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("duty: schedule %s start: %w", doc.ID, err)
	}
	end, err := ParseClockTime(doc.EndTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("duty: schedule %s end: %w", doc.ID, err)
	}

	days, err := parseDays(doc.Days)
	if err != nil {
		return Schedule{}, fmt.Errorf("duty: schedule %s days: %w", doc.ID, err)
	}

	return Schedule{
		ID:     doc.ID,
		UserID: doc.UserID,
		Start:  start,
		End:    end,
		Days:   days,
		Active: doc.Active,
	}, nil
}

func parseDays(value string) ([]time.Weekday, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	seen := make(map[time.Weekday]struct{})
	days := make([]time.Weekday, 0, 7)
	for _, token := range strings.Split(trimmed, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || index < 0 || index > 6 {
			return nil, fmt.Errorf("invalid weekday index %q", token)
		}
		day := time.Weekday(index)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

// InWindow reports whether the reference instant falls inside this
// schedule's active interval, evaluated in the given timezone.
//
// The weekday filter is applied before wrap handling: an overnight shift
// restricted to Friday does not cover the Saturday-morning tail. A shift
// whose end is numerically at or before its start spans midnight and is
// checked date-naively as (now >= start || now < end).
func (s Schedule) InWindow(now time.Time, loc *time.Location) bool {
	local := now.In(loc)

	if len(s.Days) > 0 && !containsWeekday(s.Days, local.Weekday()) {
		return false
	}

	minute := local.Hour()*60 + local.Minute()
	start := s.Start.MinuteOfDay()
	end := s.End.MinuteOfDay()

	if end > start {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

// InAnyWindow folds schedules into per-user window membership: a user is in
// window when any of their active schedules covers the reference instant.
// The returned map is complete before any mutation is planned, so later
// schedules can only widen membership, never retract it.
func InAnyWindow(schedules []Schedule, now time.Time, loc *time.Location) map[string]bool {
	membership := make(map[string]bool)
	for _, schedule := range schedules {
		if !schedule.Active {
			continue
		}
		membership[schedule.UserID] = membership[schedule.UserID] || schedule.InWindow(now, loc)
	}
	return membership
}

func containsWeekday(days []time.Weekday, day time.Weekday) bool {
	for _, candidate := range days {
		if candidate == day {
			return true
		}
	}
	return false
}
