package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-insights/internal/config"
	"coin-insights/internal/errs"
	"coin-insights/internal/observability"
	"coin-insights/internal/source"
	"coin-insights/internal/storage"
)

const trainingData = "../../data/training_data.json"

// writePriceFile writes four coins with ten daily rows each in 2023.
func writePriceFile(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("coin_name,date,price,total_volume,market_cap\n")
	bases := map[string]float64{"BTC": 30000, "ETH": 2000, "DOGE": 0.08, "USDT": 1}
	steps := map[string]float64{"BTC": 450, "ETH": -35, "DOGE": 0.004, "USDT": 0.0001}
	day := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	for _, coin := range []string{"BTC", "DOGE", "ETH", "USDT"} {
		for i := 0; i < 10; i++ {
			wiggle := float64(i%3) * steps[coin] / 2
			price := bases[coin] + float64(i)*steps[coin] + wiggle
			fmt.Fprintf(&b, "%s,%s,%g,%d,%d\n", coin, day.AddDate(0, 0, i).Format("2006-01-02"), price, 1000+i, 50000+i*10)
		}
	}
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Data:    config.DataConfig{Source: config.SourceCSV, CSVPath: writePriceFile(t)},
		Model:   config.ModelConfig{Path: filepath.Join(t.TempDir(), "model", "intent.gob"), TrainingDataPath: trainingData, MaxFeatures: 1000},
		Chat:    config.ChatConfig{Seed: 42, WindowDays: 7},
		Digest:  config.DigestConfig{Interval: time.Hour},
		Export:  config.ExportConfig{Width: 640, Height: 480},
		Metrics: config.MetricsConfig{Namespace: "test"},
	}
	var out bytes.Buffer
	return &App{Config: cfg, Logger: zerolog.Nop(), Out: &out, Metrics: observability.NewMetrics("test")}, &out
}

func TestShowSummary(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, a.Show(context.Background(), ShowOptions{}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Coin"))
	assert.True(t, strings.HasPrefix(lines[1], "BTC"))
	assert.Contains(t, lines[1], "2023-06-10")
}

func TestShowCoinLimit(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, a.Show(context.Background(), ShowOptions{Coin: "eth", Limit: 3}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "2023-06-08"))
	assert.True(t, strings.HasPrefix(lines[3], "2023-06-10"))
}

func TestShowUnknownCoin(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Show(context.Background(), ShowOptions{Coin: "XRP"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestExportWritesCSVAndPNG(t *testing.T) {
	a, _ := newTestApp(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "btc.csv")
	pngPath := filepath.Join(dir, "out", "btc.png")

	require.NoError(t, a.Export(context.Background(), ExportOptions{
		Coin: "btc", From: "2023-06-02", To: "2023-06-09", CSVPath: csvPath, PNGPath: pngPath,
	}))

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, sentinels, err := source.ReadCSV(f)
	require.NoError(t, err)
	assert.Zero(t, sentinels)
	require.Len(t, rows, 8)
	assert.Equal(t, "BTC", rows[0].CoinName)
	assert.Equal(t, time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)

	png, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestExportValidation(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	assert.Error(t, a.Export(ctx, ExportOptions{Coin: "BTC"}))
	assert.ErrorIs(t, a.Export(ctx, ExportOptions{CSVPath: "x.csv"}), errs.ErrValidation)
	assert.ErrorIs(t, a.Export(ctx, ExportOptions{Coin: "BTC", From: "June", CSVPath: "x.csv"}), errs.ErrValidation)
	assert.ErrorIs(t, a.Export(ctx, ExportOptions{Coin: "BTC", From: "2023-06-09", To: "2023-06-01", CSVPath: "x.csv"}), errs.ErrValidation)
	assert.ErrorIs(t, a.Export(ctx, ExportOptions{Coin: "XRP", CSVPath: "x.csv"}), errs.ErrNotFound)
}

func TestAskWithoutModel(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Ask(context.Background(), AskOptions{Question: "What's the price of BTC?"})
	assert.ErrorIs(t, err, errs.ErrModelNotLoaded)
}

func TestTrainThenAsk(t *testing.T) {
	a, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.Train(ctx, TrainOptions{}))
	assert.FileExists(t, a.Config.Model.Path)
	assert.Contains(t, out.String(), "trained")

	out.Reset()
	require.NoError(t, a.Ask(ctx, AskOptions{Question: "What's the price of BTC?"}))
	assert.Contains(t, out.String(), "BTC")
	assert.Contains(t, out.String(), "$34050.00")

	out.Reset()
	require.NoError(t, a.Ask(ctx, AskOptions{Question: "What's the price of BTC?", Notify: true}))
	assert.True(t, strings.HasPrefix(out.String(), "[Coin insights]\n"))
	assert.Contains(t, out.String(), "Q: What's the price of BTC?")
}

func TestAskBlankQuestion(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Train(ctx, TrainOptions{}))
	assert.ErrorIs(t, a.Ask(ctx, AskOptions{Question: "   "}), errs.ErrValidation)
}

func TestDigestOnce(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, a.Digest(context.Background(), DigestOptions{Once: true}))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "[Market digest]\n"))
	assert.Contains(t, text, "Most volatile coin: BTC")
	assert.Contains(t, text, "Most stable coin: USDT")
	assert.Contains(t, text, "Data year: 2023")
}

func TestDigestFailsWhenNothingComputes(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Digest(context.Background(), DigestOptions{Once: true, Year: 2019})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestImportTargets(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	err := a.Import(ctx, ImportOptions{})
	assert.ErrorContains(t, err, "import target must be postgres or clickhouse")

	err = a.Import(ctx, ImportOptions{Target: config.SourcePostgres})
	assert.Error(t, err)

	err = a.Import(ctx, ImportOptions{Path: filepath.Join(t.TempDir(), "missing.csv"), Target: config.SourcePostgres})
	assert.ErrorContains(t, err, "open price file")
}

func TestOpenSourceUnknown(t *testing.T) {
	a, _ := newTestApp(t)
	a.Config.Data.Source = "parquet"
	_, err := a.openSource(context.Background())
	assert.ErrorContains(t, err, "unknown data source")
}

func TestLoadClassifierMissingArtifact(t *testing.T) {
	a, _ := newTestApp(t)
	classifier, err := a.loadClassifier()
	require.NoError(t, err)
	assert.False(t, classifier.Loaded())

	require.NoError(t, os.MkdirAll(filepath.Dir(a.Config.Model.Path), 0o755))
	require.NoError(t, os.WriteFile(a.Config.Model.Path, []byte("not a gob"), 0o644))
	_, err = a.loadClassifier()
	assert.Error(t, err)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestScheduledDigestSendsAtStartup(t *testing.T) {
	a, _ := newTestApp(t)
	out := &lockedBuffer{}
	a.Out = out
	a.Config.Digest.Interval = 24 * time.Hour
	a.Config.Digest.RunImmediately = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Digest(ctx, DigestOptions{}) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[Market digest]")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("digest did not stop after cancellation")
	}
}

func TestCSVSourceHasNoStore(t *testing.T) {
	a, _ := newTestApp(t)
	data, err := a.openSource(context.Background())
	require.NoError(t, err)
	defer data.close()

	assert.Nil(t, data.store)
	d := a.newDigester(nil, data, 0)
	assert.Nil(t, d.locker)
}

func TestDigesterLocksOnSourceStore(t *testing.T) {
	a, _ := newTestApp(t)
	store := &storage.Store{}
	data := &dataSource{store: store, close: func() {}}

	d := a.newDigester(nil, data, 2023)
	require.NotNil(t, d.locker)
	assert.Same(t, store, d.locker)
}
