package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/agenda/internal/models"
)

var weekdayTags = map[time.Weekday]models.Weekday{
	time.Monday:    models.Monday,
	time.Tuesday:   models.Tuesday,
	time.Wednesday: models.Wednesday,
	time.Thursday:  models.Thursday,
	time.Friday:    models.Friday,
	time.Saturday:  models.Saturday,
	time.Sunday:    models.Sunday,
}

var dayNames = map[string]models.Weekday{
	"mon":       models.Monday,
	"monday":    models.Monday,
	"tue":       models.Tuesday,
	"tues":      models.Tuesday,
	"tuesday":   models.Tuesday,
	"wed":       models.Wednesday,
	"wednesday": models.Wednesday,
	"thu":       models.Thursday,
	"thur":      models.Thursday,
	"thursday":  models.Thursday,
	"fri":       models.Friday,
	"friday":    models.Friday,
	"sat":       models.Saturday,
	"saturday":  models.Saturday,
	"sun":       models.Sunday,
	"sunday":    models.Sunday,
}

// WeekdayOf returns the weekday tag of date.
func WeekdayOf(date time.Time) models.Weekday {
	return weekdayTags[date.Weekday()]
}

// ParseWeekdays parses a comma-separated list of weekdays such as "mon,wed".
// Full names and numbers (0=Sunday, 6=Saturday) are accepted too. The result
// has no duplicates and is ordered Monday first.
func ParseWeekdays(s string) ([]models.Weekday, error) {
	seen := make(map[models.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayNames[part]; ok {
			seen[wd] = true
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		seen[weekdayTags[time.Weekday(num)]] = true
	}

	return NormalizeWeekdays(seen), nil
}

// NormalizeWeekdays orders a weekday set Monday first.
func NormalizeWeekdays(set map[models.Weekday]bool) []models.Weekday {
	days := make([]models.Weekday, 0, len(set))
	for _, wd := range models.Weekdays {
		if set[wd] {
			days = append(days, wd)
		}
	}
	return days
}
