package subject

import (
	"testing"
	"time"
)

func TestNthWeekday(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		weekday time.Weekday
		n       int
		want    string
		wantOK  bool
	}{
		{"first Friday May 2024", 2024, time.May, time.Friday, 1, "2024-05-03", true},
		{"fifth Friday May 2024", 2024, time.May, time.Friday, 5, "2024-05-31", true},
		{"fifth Friday June 2024", 2024, time.June, time.Friday, 5, "", false},
		{"first Friday of month starting Friday", 2024, time.March, time.Friday, 1, "2024-03-01", true},
		{"third Thursday", 2024, time.June, time.Thursday, 3, "2024-06-20", true},
		{"zero ordinal", 2024, time.June, time.Friday, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NthWeekday(tt.year, tt.month, tt.weekday, tt.n)
			if ok != tt.wantOK {
				t.Fatalf("NthWeekday() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("NthWeekday() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWeeklyExpiry(t *testing.T) {
	fri, ok := WeeklyExpiry(2024, time.May, 2, false)
	if !ok || fri.String() != "2024-05-10" {
		t.Errorf("WeeklyExpiry(Friday) = %s, %v", fri, ok)
	}

	thu, ok := WeeklyExpiry(2024, time.May, 2, true)
	if !ok || thu.String() != "2024-05-09" {
		t.Errorf("WeeklyExpiry(Thursday) = %s, %v", thu, ok)
	}
}
