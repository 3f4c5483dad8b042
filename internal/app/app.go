package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"coin-insights/internal/chat"
	"coin-insights/internal/config"
	"coin-insights/internal/market"
	"coin-insights/internal/nlp"
	"coin-insights/internal/notify"
	"coin-insights/internal/observability"
	"coin-insights/internal/query"
	"coin-insights/internal/source"
	"coin-insights/internal/storage"
	"coin-insights/internal/storage/clickhouse"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Out     io.Writer
	Metrics *observability.Metrics
}

// NewApp constructs a new application handle printing command output to stdout.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:  cfg,
		Logger:  logger.With().Str("component", "app").Logger(),
		Out:     os.Stdout,
		Metrics: observability.NewMetrics(cfg.Metrics.Namespace),
	}
}

// meteredSource records load latency and table size for every load.
type meteredSource struct {
	source  query.Source
	name    string
	metrics *observability.Metrics
}

func (m meteredSource) Load(ctx context.Context) (*market.Table, error) {
	start := time.Now()
	t, err := m.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	m.metrics.RecordTableLoad(m.name, t.Len(), time.Since(start))
	return t, nil
}

// dataSource is an opened price source. store is set only for the postgres source so callers can
// reuse its pool; close is never nil.
type dataSource struct {
	query.Source
	store *storage.Store
	close func()
}

// openSource opens the configured price source.
func (a *App) openSource(ctx context.Context) (*dataSource, error) {
	var (
		src   query.Source
		store *storage.Store
		closer = func() {}
	)
	switch a.Config.Data.Source {
	case config.SourceCSV:
		src = source.NewCSVSource(a.Config.Data.CSVPath, a.Logger)
	case config.SourcePostgres:
		opened, closeStore, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		src, store, closer = opened, opened, closeStore
	case config.SourceClickHouse:
		ch, err := clickhouse.Open(ctx, a.Config.ClickHouse.DSN, a.Config.ClickHouse.Table)
		if err != nil {
			return nil, err
		}
		src = ch
		closer = func() {
			if err := ch.Close(); err != nil {
				a.Logger.Warn().Err(err).Msg("close clickhouse connection")
			}
		}
	default:
		return nil, fmt.Errorf("unknown data source %q", a.Config.Data.Source)
	}

	a.Logger.Debug().Str("source", a.Config.Data.Source).Msg("price source opened")
	return &dataSource{
		Source: meteredSource{source: src, name: a.Config.Data.Source, metrics: a.Metrics},
		store:  store,
		close:  closer,
	}, nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, storage.ErrNotConfigured
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool, a.Config.Database.Table)
	return store, store.Close, nil
}

func (a *App) newEngine(ctx context.Context) (*query.Engine, *dataSource, error) {
	data, err := a.openSource(ctx)
	if err != nil {
		return nil, nil, err
	}
	return query.NewEngine(data, a.Logger), data, nil
}

// loadClassifier reads the model artifact. A missing artifact yields an unloaded classifier so the
// server can still answer data queries; chat then reports the model as unavailable.
func (a *App) loadClassifier() (*nlp.Classifier, error) {
	classifier := &nlp.Classifier{}
	if err := classifier.LoadFile(a.Config.Model.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.Logger.Warn().Str("path", a.Config.Model.Path).Msg("model artifact not found; run `coininsights train` first")
			return classifier, nil
		}
		return nil, err
	}
	a.Logger.Info().Str("path", a.Config.Model.Path).Strs("classes", classifier.Classes()).Msg("intent classifier loaded")
	return classifier, nil
}

func (a *App) newChat(engine *query.Engine, classifier *nlp.Classifier, year int) *chat.Service {
	facade := query.NewFacade(engine, year, a.Config.Chat.WindowDays)
	responder := chat.NewResponder(nil, a.Config.Chat.Seed)
	return chat.NewService(classifier, facade, responder, a.Logger)
}

func (a *App) newNotifier() notify.Notifier {
	if a.Config.Notify.Telegram.Enabled {
		cfg := a.Config.Notify.Telegram
		return notify.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, a.Config.Notify.Timeout, a.Logger)
	}
	return notify.NewWriterNotifier(a.Out)
}

// ExportOptions hold parameters for exporting a coin's price range.
type ExportOptions struct {
	Coin    string
	From    string
	To      string
	PNGPath string
	CSVPath string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Coin  string
	Limit int
}

// TrainOptions locate the training data and the artifact to write.
type TrainOptions struct {
	DataPath  string
	ModelPath string
}

// AskOptions configure a one-off chat question.
type AskOptions struct {
	Question string
	Notify   bool
	Year     int
}

// ImportOptions configure a bulk load of a CSV file into a database.
type ImportOptions struct {
	Path    string
	Target  string
	Replace bool
}

// DigestOptions configure the periodic market digest.
type DigestOptions struct {
	Once bool
	Year int
}
