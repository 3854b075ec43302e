package validation

import (
	"strconv"
	"strings"
	"time"

	"todo-service/internal/models"
)

// ParseDueDate reads a year-month-day string whose components may omit
// leading zeros ("2021-4-2") and returns it in canonical yyyy-MM-dd form.
// Combinations that are not real calendar dates are rejected with
// ErrInvalidDueDate.
func ParseDueDate(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return "", ErrInvalidDueDate
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", ErrInvalidDueDate
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return "", ErrInvalidDueDate
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 1), so a round trip
	// catches days past the end of the month.
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return "", ErrInvalidDueDate
	}

	return date.Format(models.DueDateLayout), nil
}
