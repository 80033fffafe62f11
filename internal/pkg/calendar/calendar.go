// Package calendar holds the month arithmetic behind the community calendar:
// week grids, month navigation and local month bounds.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinYear = 1
	MaxYear = 9999
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// ValidMonth reports whether year/month can be rendered.
func ValidMonth(year, month int) bool {
	return month >= 1 && month <= 12 && year >= MinYear && year <= MaxYear
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthGrid lays the month out as weeks of 7 slots starting on weekStart.
// Slots outside the month are 0.
func MonthGrid(year, month int, weekStart time.Weekday) [][]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	days := DaysIn(year, month)

	cells := lead + days
	if rem := cells % 7; rem != 0 {
		cells += 7 - rem
	}

	grid := make([][]int, 0, cells/7)
	for start := 0; start < cells; start += 7 {
		week := make([]int, 7)
		for i := range week {
			if day := start + i - lead + 1; day >= 1 && day <= days {
				week[i] = day
			}
		}
		grid = append(grid, week)
	}
	return grid
}

// Adjacent returns the previous and next year/month pairs.
func Adjacent(year, month int) (prevYear, prevMonth, nextYear, nextMonth int) {
	prevYear, prevMonth = year, month-1
	if prevMonth < 1 {
		prevYear, prevMonth = year-1, 12
	}
	nextYear, nextMonth = year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	return
}

// MonthBounds returns [start, end) of the month as instants in loc.
func MonthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// MonthName returns the Spanish month name used by the portal.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// ParseWeekStart accepts "monday" or "sunday"; empty means monday.
func ParseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "lunes":
		return time.Monday, nil
	case "sunday", "domingo":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unsupported week start %q", s)
	}
}

// WeekdayLabels returns short day headers in grid order.
func WeekdayLabels(weekStart time.Weekday) []string {
	names := [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}
	labels := make([]string, 7)
	for i := range labels {
		labels[i] = names[(int(weekStart)+i)%7]
	}
	return labels
}
