package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coin-insights/internal/chat"
	"coin-insights/internal/notify"
	"coin-insights/internal/query"
	"coin-insights/internal/scheduler"
	"coin-insights/internal/storage"
)

// digestLockKey guards digest delivery across replicas sharing one database.
const digestLockKey int64 = 0x636f696e64677374

// Digest periodically sends the volatility report and the top picks of the configured year.
func (a *App) Digest(ctx context.Context, opts DigestOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, data, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer data.close()

	year := opts.Year
	if year <= 0 {
		year = a.Config.Digest.Year
	}
	d := a.newDigester(engine, data, a.Config.ResolveYear(year))

	if opts.Once {
		return d.run(ctx, time.Now().UTC())
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:       a.Config.Digest.Interval,
		AlignToBucket:  a.Config.Digest.AlignToBucket,
		StartupDelay:   a.Config.Digest.StartupDelay,
		RunImmediately: a.Config.Digest.RunImmediately,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Dur("interval", a.Config.Digest.Interval).Msg("starting market digest")
	err = sched.Run(ctx, d.run)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Logger.Info().Msg("market digest stopped")
	return nil
}

type digester struct {
	facade    *query.Facade
	responder *chat.Responder
	notifier  notify.Notifier
	locker    storage.AdvisoryLocker
	app       *App
}

// newDigester builds the digest job. With the postgres source the advisory lock is taken on the
// store that also serves the price table.
func (a *App) newDigester(engine *query.Engine, data *dataSource, year int) *digester {
	d := &digester{
		facade:    query.NewFacade(engine, year, a.Config.Chat.WindowDays),
		responder: chat.NewResponder(nil, a.Config.Chat.Seed),
		notifier:  a.newNotifier(),
		app:       a,
	}
	if data.store != nil {
		d.locker = data.store
	}
	return d
}

func (d *digester) run(ctx context.Context, tick time.Time) error {
	if d.locker != nil {
		unlock, acquired, err := d.locker.TryAdvisoryLock(ctx, digestLockKey)
		if err != nil {
			return fmt.Errorf("acquire digest lock: %w", err)
		}
		if !acquired {
			d.app.Logger.Info().Time("tick", tick).Msg("digest lock held elsewhere; skipping")
			return nil
		}
		defer unlock()
	}

	body, err := d.compose(ctx)
	if err != nil {
		return err
	}
	return d.notifier.Notify(ctx, notify.Message{Title: "Market digest", Body: body, SentAt: tick})
}

// compose renders the digest body. A section that cannot be computed is reported inline.
func (d *digester) compose(ctx context.Context) (string, error) {
	var sections []string
	var failures int

	volatility, err := d.facade.Volatility(ctx)
	if err != nil {
		failures++
		d.app.Logger.Warn().Err(err).Msg("digest volatility section failed")
		sections = append(sections, d.responder.Failure(chat.IntentVolatilityQuery, "", err))
	} else {
		sections = append(sections, d.responder.Volatility(volatility))
	}

	picks, err := d.facade.TopPicks(ctx)
	if err != nil {
		failures++
		d.app.Logger.Warn().Err(err).Msg("digest top picks section failed")
		sections = append(sections, d.responder.Failure(chat.IntentTopRecommendation, "", err))
	} else {
		sections = append(sections, d.responder.TopPicks(picks))
	}

	if failures == len(sections) {
		return "", fmt.Errorf("market digest: %w", err)
	}
	return strings.Join(sections, "\n\n"), nil
}
