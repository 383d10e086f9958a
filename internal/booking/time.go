package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Operating window and grid constants. All reservations occupy exactly one
// hour-aligned slot between opening and closing time.
const (
	OpeningTime  = TimeOfDay(9 * 60)
	ClosingTime  = TimeOfDay(18 * 60)
	SlotDuration = 60
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a "HH:MM" string into a TimeOfDay.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// OnHour reports whether the time falls exactly on an hour boundary.
func (t TimeOfDay) OnHour() bool { return t.Minute() == 0 }

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Date is a calendar day in normalized "YYYY-MM-DD" form.
type Date string

// ParseDate validates and normalizes a "YYYY-MM-DD" string.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return Date(parsed.Format("2006-01-02")), nil
}

// DateOf converts a time.Time into a Date in the time's location.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

func (d Date) String() string { return string(d) }

// Slot is a one-hour reservation window on the daily grid.
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseSlot parses the wire format "<startHour>-<endHour>", e.g. "10-11".
// Hour bounds and duration are checked by ValidateWindow, not here; this
// rejects only structurally malformed input.
func ParseSlot(value string) (Slot, error) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("invalid slot %q: expected HH-HH", value)
	}
	startHour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Slot{}, fmt.Errorf("invalid slot %q: expected HH-HH", value)
	}
	endHour, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Slot{}, fmt.Errorf("invalid slot %q: expected HH-HH", value)
	}
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 24 {
		return Slot{}, fmt.Errorf("invalid slot %q: hours out of range", value)
	}
	return Slot{Start: TimeOfDay(startHour * 60), End: TimeOfDay(endHour * 60)}, nil
}

// String renders the slot in its wire format.
func (s Slot) String() string {
	return fmt.Sprintf("%d-%d", s.Start.Hour(), s.End.Hour())
}

// ValidateWindow checks a start/end pair against the operating window and
// the hourly grid. The check order determines which rejection is reported
// when several violations hold at once: window bounds first, then interval
// ordering, then duration and grid alignment.
func ValidateWindow(start, end TimeOfDay) *Rejection {
	if start < OpeningTime || end > ClosingTime {
		return Rejectf(OutsideOperatingHours,
			"booking time must be between %s and %s", OpeningTime, ClosingTime)
	}
	if start >= end {
		return Rejectf(InvalidInterval, "start time must be before end time")
	}
	if int(end-start) != SlotDuration || !start.OnHour() || !end.OnHour() {
		return Rejectf(NonHourlyDuration, "booking must cover exactly one hour-aligned slot")
	}
	return nil
}
