// Package cronexpr evaluates the 5-field cron dialect this engine schedules
// against: minute hour day month weekday, each a literal, "*", a "*/N" step,
// or (minute/hour only) a comma list. Day-of-month and day-of-week combine
// with OR semantics when both are restricted. Evaluation is pure, UTC-only,
// and deterministic.
package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expr is a parsed 5-field cron expression.
type Expr struct {
	minute  field
	hour    field
	day     field
	month   field
	weekday field
	raw     string
}

// field is the parsed representation of one cron field: either unrestricted
// ("*"), or an explicit set of accepted values (a "*/N" step is expanded
// into that set, starting at the field's minimum).
type field struct {
	any    bool
	values map[int]struct{}
}

func (f field) matches(v int) bool {
	if f.any {
		return true
	}
	_, ok := f.values[v]
	return ok
}

// Parse parses a 5-field cron expression, returning InvalidCron-wrapped
// errors for anything unrecognized.
func Parse(expr string) (*Expr, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidCron, len(parts))
	}

	minute, err := parseField(parts[0], 0, 59, true)
	if err != nil {
		return nil, fmt.Errorf("%w: minute: %v", ErrInvalidCron, err)
	}
	hour, err := parseField(parts[1], 0, 23, true)
	if err != nil {
		return nil, fmt.Errorf("%w: hour: %v", ErrInvalidCron, err)
	}
	day, err := parseField(parts[2], 1, 31, false)
	if err != nil {
		return nil, fmt.Errorf("%w: day: %v", ErrInvalidCron, err)
	}
	month, err := parseField(parts[3], 1, 12, false)
	if err != nil {
		return nil, fmt.Errorf("%w: month: %v", ErrInvalidCron, err)
	}
	weekday, err := parseField(parts[4], 0, 6, false)
	if err != nil {
		return nil, fmt.Errorf("%w: weekday: %v", ErrInvalidCron, err)
	}

	return &Expr{minute: minute, hour: hour, day: day, month: month, weekday: weekday, raw: expr}, nil
}

func parseField(raw string, min, max int, allowList bool) (field, error) {
	if raw == "*" {
		return field{any: true}, nil
	}

	if allowList && strings.Contains(raw, ",") {
		values := map[int]struct{}{}
		for _, piece := range strings.Split(raw, ",") {
			v, err := strconv.Atoi(piece)
			if err != nil {
				return field{}, fmt.Errorf("%q is not an integer", piece)
			}
			if v < min || v > max {
				return field{}, fmt.Errorf("%d out of range [%d,%d]", v, min, max)
			}
			values[v] = struct{}{}
		}
		return field{values: values}, nil
	}

	if strings.HasPrefix(raw, "*/") {
		step, err := strconv.Atoi(raw[2:])
		if err != nil {
			return field{}, fmt.Errorf("%q is not a valid step", raw)
		}
		if step <= 0 {
			return field{}, fmt.Errorf("step must be positive, got %d", step)
		}
		values := map[int]struct{}{}
		for v := min; v <= max; v += step {
			values[v] = struct{}{}
		}
		return field{values: values}, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return field{}, fmt.Errorf("%q is not an integer", raw)
	}
	if v < min || v > max {
		return field{}, fmt.Errorf("%d out of range [%d,%d]", v, min, max)
	}
	return field{values: map[int]struct{}{v: {}}}, nil
}

// dayRestricted reports whether the expression names specific days of month
// or specific weekdays, as opposed to "*" on both — the OR-semantics switch.
func (e *Expr) dayRestricted() bool  { return !e.day.any }
func (e *Expr) weekdayRestricted() bool { return !e.weekday.any }

func (e *Expr) matchesDate(t time.Time) bool {
	if !e.month.matches(int(t.Month())) {
		return false
	}

	dayRestricted := e.dayRestricted()
	weekdayRestricted := e.weekdayRestricted()

	dayOK := e.day.matches(t.Day())
	weekdayOK := e.weekday.matches(int(t.Weekday()))

	switch {
	case dayRestricted && weekdayRestricted:
		return dayOK || weekdayOK
	case dayRestricted:
		return dayOK
	case weekdayRestricted:
		return weekdayOK
	default:
		return true
	}
}

// NextAfter returns the smallest UTC instant strictly greater than after
// whose minute-aligned value satisfies every field of expr.
func NextAfter(expr string, after time.Time) (time.Time, error) {
	e, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return e.NextAfter(after)
}

// NextAfter is the method form, reusing an already-parsed expression — the
// Scheduler Worker calls this once per task per tick rather than reparsing.
func (e *Expr) NextAfter(after time.Time) (time.Time, error) {
	t := after.UTC().Truncate(time.Minute).Add(time.Minute)

	// Five years is far beyond any legitimate cron cadence; past that the
	// expression cannot be satisfied (e.g. day 31 in February forever).
	limit := after.UTC().AddDate(5, 0, 0)

	for !t.After(limit) {
		if e.matchesDate(t) && e.minute.matches(t.Minute()) && e.hour.matches(t.Hour()) {
			return t, nil
		}
		t = t.Add(time.Minute)
	}

	return time.Time{}, fmt.Errorf("%w: no fire time found for %q within 5 years of %s", ErrInvalidCron, e.raw, after)
}
