package booking

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "09:00", want: 9 * 60},
		{input: "18:00", want: 18 * 60},
		{input: "10:30", want: 10*60 + 30},
		{input: " 14:00 ", want: 14 * 60},
		{input: "24:00", wantErr: true},
		{input: "10:60", wantErr: true},
		{input: "10", wantErr: true},
		{input: "ten:00", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error, got %v", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	t.Parallel()

	if got := TimeOfDay(9 * 60).String(); got != "09:00" {
		t.Errorf("String() = %q, want 09:00", got)
	}
	if got := TimeOfDay(14*60 + 5).String(); got != "14:05" {
		t.Errorf("String() = %q, want 14:05", got)
	}
}

func TestParseSlot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input     string
		wantStart TimeOfDay
		wantEnd   TimeOfDay
		wantErr   bool
	}{
		{input: "10-11", wantStart: 10 * 60, wantEnd: 11 * 60},
		{input: "9-10", wantStart: 9 * 60, wantEnd: 10 * 60},
		{input: "17-18", wantStart: 17 * 60, wantEnd: 18 * 60},
		{input: " 10 - 11 ", wantStart: 10 * 60, wantEnd: 11 * 60},
		{input: "10", wantErr: true},
		{input: "ten-eleven", wantErr: true},
		{input: "25-26", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseSlot(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSlot(%q) expected error, got %+v", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSlot(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got.Start != tc.wantStart || got.End != tc.wantEnd {
			t.Errorf("ParseSlot(%q) = %v-%v, want %v-%v", tc.input, got.Start, got.End, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	if got, err := ParseDate("2024-01-10"); err != nil || got != "2024-01-10" {
		t.Errorf("ParseDate(2024-01-10) = %q, %v", got, err)
	}
	if _, err := ParseDate("10/01/2024"); err == nil {
		t.Error("ParseDate(10/01/2024) expected error")
	}
	if _, err := ParseDate("2024-13-40"); err == nil {
		t.Error("ParseDate(2024-13-40) expected error")
	}
}

func TestValidateWindow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		start, end TimeOfDay
		want       Reason
	}{
		{name: "valid morning slot", start: 9 * 60, end: 10 * 60},
		{name: "valid closing slot", start: 17 * 60, end: 18 * 60},
		{name: "before opening", start: 8 * 60, end: 9 * 60, want: OutsideOperatingHours},
		{name: "past closing", start: 18 * 60, end: 19 * 60, want: OutsideOperatingHours},
		{name: "reversed interval", start: 11 * 60, end: 10 * 60, want: InvalidInterval},
		{name: "zero length", start: 10 * 60, end: 10 * 60, want: InvalidInterval},
		{name: "half hour duration", start: 10 * 60, end: 10*60 + 30, want: NonHourlyDuration},
		{name: "two hour duration", start: 10 * 60, end: 12 * 60, want: NonHourlyDuration},
		{name: "off-grid hour", start: 10*60 + 30, end: 11*60 + 30, want: NonHourlyDuration},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rej := ValidateWindow(tc.start, tc.end)
			if tc.want == "" {
				if rej != nil {
					t.Fatalf("ValidateWindow(%v, %v) = %v, want accept", tc.start, tc.end, rej)
				}
				return
			}
			if rej == nil {
				t.Fatalf("ValidateWindow(%v, %v) accepted, want %s", tc.start, tc.end, tc.want)
			}
			if rej.Reason != tc.want {
				t.Fatalf("ValidateWindow(%v, %v) reason = %s, want %s", tc.start, tc.end, rej.Reason, tc.want)
			}
		})
	}
}
