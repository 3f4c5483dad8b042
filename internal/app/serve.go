package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"coin-insights/internal/httpapi"
)

// Serve runs the HTTP API until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, data, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer data.close()

	classifier, err := a.loadClassifier()
	if err != nil {
		return err
	}

	var opts httpapi.Options
	if rps := a.Config.Server.RateLimitRPS; rps > 0 {
		burst := a.Config.Server.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		opts.ChatLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	api := httpapi.New(engine, a.newChat(engine, classifier, a.Config.Chat.DefaultYear), a.Metrics, opts, a.Logger)
	srv := &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	a.Logger.Info().Msg("http server stopped")
	return nil
}
