package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// NextDaily ближайший момент hour:00 в поясе loc строго после now.
func NextDaily(now time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly ближайший момент weekday hour:00 в поясе loc строго после now.
func NextWeekly(now time.Time, weekday time.Weekday, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	days := (int(weekday) - int(local.Weekday()) + 7) % 7
	next := time.Date(local.Year(), local.Month(), local.Day()+days, hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Job периодическая задача.
type Job func(ctx context.Context) error

// RunSchedule выполняет job в моменты, которые возвращает next, пока ctx не отменен.
// Ошибка задачи логируется и не останавливает расписание.
func RunSchedule(ctx context.Context, name string, next func(time.Time) time.Time, job Job, logger *zerolog.Logger) {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	log := logger.With().Str("job", name).Logger()

	for {
		at := next(time.Now())
		log.Info().Time("next_run", at).Msg("job scheduled")

		if !sleep(ctx, time.Until(at)) {
			return
		}

		start := time.Now()
		if err := job(ctx); err != nil {
			log.Error().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
			continue
		}
		log.Info().Dur("duration", time.Since(start)).Msg("job finished")
	}
}
