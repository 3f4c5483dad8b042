package app

import (
	"context"
	"fmt"
	"time"

	"coin-insights/internal/errs"
	"coin-insights/internal/notify"
)

// Ask answers one question from the command line, optionally forwarding the reply.
func (a *App) Ask(ctx context.Context, opts AskOptions) error {
	engine, data, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer data.close()

	classifier, err := a.loadClassifier()
	if err != nil {
		return err
	}
	if !classifier.Loaded() {
		return fmt.Errorf("%w: no artifact at %s", errs.ErrModelNotLoaded, a.Config.Model.Path)
	}

	svc := a.newChat(engine, classifier, a.Config.ResolveYear(opts.Year))
	reply, err := svc.Ask(ctx, opts.Question)
	if err != nil {
		return err
	}
	a.Metrics.RecordIntent(string(reply.Intent))

	if !opts.Notify {
		fmt.Fprintln(a.Out, reply.Response)
		return nil
	}
	msg := notify.Message{
		Title:  "Coin insights",
		Body:   fmt.Sprintf("Q: %s\nA: %s", opts.Question, reply.Response),
		SentAt: time.Now(),
	}
	return a.newNotifier().Notify(ctx, msg)
}
