package ui

import (
	"testing"
	"time"
)

func TestFormatMinutes(t *testing.T) {
	minutes := func(n int) *time.Duration {
		d := time.Duration(n) * time.Minute
		return &d
	}
	cases := []struct {
		name     string
		duration *time.Duration
		want     string
	}{
		{name: "unset", duration: nil, want: "-"},
		{name: "minutes", duration: minutes(45), want: "45m"},
		{name: "whole hours", duration: minutes(120), want: "2h"},
		{name: "hours and minutes", duration: minutes(95), want: "1h35m"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatMinutes(tc.duration); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFormatWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sameDay := start.Add(90 * time.Minute)
	nextDay := start.Add(20 * time.Hour)

	if got := FormatWindow(&start, &sameDay); got != "2024-03-01 10:00-11:30" {
		t.Fatalf("unexpected same-day window %q", got)
	}
	if got := FormatWindow(&start, &nextDay); got != "2024-03-01 10:00-2024-03-02 06:00" {
		t.Fatalf("unexpected multi-day window %q", got)
	}
	if got := FormatWindow(nil, &sameDay); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if got := FormatTime(&start); got != "2024-03-01 10:00" {
		t.Fatalf("unexpected time %q", got)
	}
}
