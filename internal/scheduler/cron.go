package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidCron = errors.New("invalid cron expression")

// Standard five field expressions, an optional leading seconds field and
// descriptors such as @daily or @every 5m.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseCronExpression returns a schedule or an error wrapping ErrInvalidCron.
func ParseCronExpression(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidCron)
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCron, err)
	}
	return schedule, nil
}

func ValidateCronExpression(expr string) error {
	_, err := ParseCronExpression(expr)
	return err
}

// NextRunAfter returns the first fire time strictly after t, evaluated in UTC.
func NextRunAfter(expr string, t time.Time) (time.Time, error) {
	schedule, err := ParseCronExpression(expr)
	if err != nil {
		return time.Time{}, err
	}
	next := schedule.Next(t.UTC())
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("%w: expression never fires", ErrInvalidCron)
	}
	return next.UTC(), nil
}
