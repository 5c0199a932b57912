package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: ""},
		{name: "Local returns local", timezone: "Local"},
		{name: "valid timezone UTC", timezone: "UTC"},
		{name: "valid timezone America/New_York", timezone: "America/New_York"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 20:00 UTC on the 1st is already the 2nd in Tokyo.
	instant := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	if got := DayKey(instant, time.UTC); got != "2026-05-01" {
		t.Errorf("DayKey(UTC) = %s, want 2026-05-01", got)
	}
	if got := DayKey(instant, tokyo); got != "2026-05-02" {
		t.Errorf("DayKey(Tokyo) = %s, want 2026-05-02", got)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		day  string
		n    int
		want string
	}{
		{"2026-01-31", 1, "2026-02-01"},
		{"2026-03-01", -1, "2026-02-28"},
		{"2028-03-01", -1, "2028-02-29"},
		{"2026-12-31", 1, "2027-01-01"},
		{"2026-06-15", 0, "2026-06-15"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.day, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%s, %d) error = %v", tt.day, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%s, %d) = %s, want %s", tt.day, tt.n, got, tt.want)
		}
	}

	if _, err := AddDays("garbage", 1); err == nil {
		t.Error("expected error for invalid day")
	}
}

func TestAddDaysAcrossDST(t *testing.T) {
	// US spring-forward on 2026-03-08; key arithmetic must not skip a day.
	got, err := AddDays("2026-03-07", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2026-03-09" {
		t.Errorf("AddDays across DST = %s, want 2026-03-09", got)
	}
}

func TestDaysBetween(t *testing.T) {
	days, err := DaysBetween("2026-02-27", "2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01"}
	if len(days) != len(want) {
		t.Fatalf("DaysBetween() = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("DaysBetween()[%d] = %s, want %s", i, days[i], want[i])
		}
	}

	empty, err := DaysBetween("2026-03-02", "2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("DaysBetween(same day) = %v, want empty", empty)
	}
}

func TestParseMoment(t *testing.T) {
	now := time.Date(2026, 7, 10, 9, 30, 0, 0, time.UTC)

	got, err := ParseMoment("18:45", now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 7, 10, 18, 45, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseMoment(clock) = %v, want %v", got, want)
	}

	got, err = ParseMoment("2026-07-12T08:00:00Z", now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 7, 12, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseMoment(RFC3339) = %v, want %v", got, want)
	}

	if _, err := ParseMoment("tomorrow", now, time.UTC); err == nil {
		t.Error("expected error for unparseable moment")
	}
}
