package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/korganrivera/kanban/internal/board"
	"github.com/korganrivera/kanban/internal/model"
)

// parseWhen accepts "2006-01-02" (taken as local midnight), "2006-01-02 15:04"
// or RFC 3339.
func parseWhen(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q (want YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)", raw)
}

func parseWeekdays(raw string) ([]int, error) {
	names := map[string]int{
		"sun": 0, "sunday": 0,
		"mon": 1, "monday": 1,
		"tue": 2, "tuesday": 2,
		"wed": 3, "wednesday": 3,
		"thu": 4, "thursday": 4,
		"fri": 5, "friday": 5,
		"sat": 6, "saturday": 6,
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		day, ok := names[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		out = append(out, day)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weekdays in %q", raw)
	}
	return out, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatState(v board.TaskView) string {
	s := string(v.EffectiveState)
	if v.Overdue {
		s += " (overdue)"
	}
	if v.Deadlock {
		s += " (deadlocked)"
	}
	return s
}

func findView(views []board.TaskView, id model.TaskID) (board.TaskView, bool) {
	for _, v := range views {
		if v.ID == id {
			return v, true
		}
	}
	return board.TaskView{}, false
}

// truncate shortens s to at most max runes. Counting runes keeps a cut
// from landing inside a multibyte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
