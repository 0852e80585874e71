package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/DridhaTeamHQ/tria-server/internal/infra"
	"github.com/DridhaTeamHQ/tria-server/internal/infra/credentials"
	"github.com/DridhaTeamHQ/tria-server/internal/providers/imagegen"
	"github.com/DridhaTeamHQ/tria-server/internal/providers/llm"
	"github.com/DridhaTeamHQ/tria-server/internal/queue"
	"github.com/DridhaTeamHQ/tria-server/internal/sqlinline"
	"github.com/DridhaTeamHQ/tria-server/internal/storage"
	"github.com/DridhaTeamHQ/tria-server/internal/tryon"
)

const (
	dequeueTimeout = 5 * time.Second
	jobTimeout     = 5 * time.Minute
)

// Per-unit USD estimates used for the cost dashboard. A unit is one image
// render for Gemini and one completion call for OpenAI.
var usdPerUnit = map[string]float64{
	"gemini": 0.039,
	"openai": 0.003,
}

type jobOptions struct {
	PersonKey   string `json:"person_key"`
	GarmentKey  string `json:"garment_key"`
	PersonMIME  string `json:"person_mime"`
	GarmentMIME string `json:"garment_mime"`
	Pose        string `json:"pose,omitempty"`
	Quality     string `json:"quality,omitempty"`
}

type jobRecord struct {
	ID         string
	UserID     string
	Status     string
	PresetID   string
	AnchorZone string
	Options    jobOptions
}

type worker struct {
	cfg        *infra.Config
	runner     *infra.SQLRunner
	logger     infra.Logger
	store      *storage.FileStore
	queue      *queue.Queue
	pipeline   *tryon.Pipeline
	imageModel string
	llmModel   string
	llmEnabled bool
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	q, err := queue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer q.Close()

	storagePath := cfg.StoragePath
	if storagePath == "" {
		storagePath = "./storage"
	}
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	credStore := credentials.NewStore(runner)
	geminiKeys := cfg.GeminiAPIKeys
	if len(geminiKeys) == 0 {
		keys, err := credStore.GeminiAPIKeys(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load gemini keys from store")
		} else {
			geminiKeys = keys
		}
	}
	openAIKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if openAIKey == "" {
		key, err := credStore.OpenAIAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load openai key from store")
		} else {
			openAIKey = key
		}
	}

	generator, err := imagegen.NewGenerator(geminiKeys, cfg.GeminiImageModel, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure image provider")
	}
	proGenerator, err := imagegen.NewGenerator(geminiKeys, cfg.GeminiProModel, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure pro image provider")
	}

	var completer llm.Completer
	llmModel := ""
	if cfg.DirectorProvider != "openai" {
		logger.Warn().Str("provider", cfg.DirectorProvider).Msg("worker: unsupported director provider, analyzers run on defaults")
		openAIKey = ""
	}
	if openAIKey != "" {
		client, err := llm.NewOpenAIClient(llm.OpenAIOptions{
			APIKey:  openAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			OnWarning: func(reason, detail string) {
				logger.Warn().Str("reason", reason).Str("detail", detail).Msg("worker: openai model normalized")
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to configure openai client")
		}
		completer = client
		llmModel = client.Model()
	} else {
		logger.Warn().Msg("worker: openai key missing, analyzers run on defaults")
	}

	w := &worker{
		cfg:        cfg,
		runner:     runner,
		logger:     logger,
		store:      fileStore,
		queue:      q,
		imageModel: cfg.GeminiImageModel,
		llmModel:   llmModel,
		llmEnabled: completer != nil,
		pipeline: tryon.NewPipeline(
			tryon.NewAnalyzer(completer, logger),
			tryon.NewDirector(completer, logger),
			tryon.NewRenderer(generator, proGenerator, logger),
			cfg.PixelCorrection,
			logger,
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.WorkerCount; i++ {
		id := i + 1
		g.Go(func() error { return w.run(gctx, id) })
	}
	logger.Info().Int("workers", cfg.WorkerCount).Msg("worker: started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *worker) run(ctx context.Context, id int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		jobID, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error().Err(err).Int("worker_id", id).Msg("worker: dequeue failed")
			time.Sleep(time.Second)
			continue
		}
		w.process(ctx, id, jobID)
	}
}

func (w *worker) process(ctx context.Context, id int, jobID string) {
	w.logger.Info().Int("worker_id", id).Str("job_id", jobID).Msg("worker: picked job")

	if _, err := w.runner.Exec(ctx, sqlinline.QMarkJobRunning, jobID); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: mark running failed")
		return
	}
	job, err := w.loadJob(ctx, jobID)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: load job failed")
		w.markFailed(ctx, jobID, "job could not be loaded", nil)
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	started := time.Now()
	result, err := w.runPipeline(jobCtx, job)
	latency := time.Since(started)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: job failed")
		w.markFailed(ctx, job.ID, err.Error(), &result.Debug)
		w.recordRenderUsage(ctx, job, result.Model, result.Passes, false, latency)
		return
	}

	if err := w.persistResult(ctx, job, result); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: persist result failed")
		w.markFailed(ctx, job.ID, "result could not be stored", &result.Debug)
		return
	}
	w.recordRenderUsage(ctx, job, result.Model, result.Passes, true, latency)
	if w.llmEnabled {
		// Three analyses plus the director refinement per job.
		w.insertUsage(ctx, job, "openai", w.llmModel, "analysis", 4, true, latency)
	}
	w.logger.Info().
		Int("worker_id", id).
		Str("job_id", job.ID).
		Int("passes", result.Passes).
		Dur("took", latency).
		Msg("worker: job succeeded")
}

func (w *worker) loadJob(ctx context.Context, jobID string) (jobRecord, error) {
	row := w.runner.QueryRow(ctx, sqlinline.QSelectJobByID, jobID)
	var job jobRecord
	var optionsRaw, debugRaw []byte
	var errText string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&job.ID, &job.UserID, &job.Status, &job.PresetID, &job.AnchorZone,
		&optionsRaw, &errText, &debugRaw, &createdAt, &updatedAt); err != nil {
		return jobRecord{}, err
	}
	if err := json.Unmarshal(optionsRaw, &job.Options); err != nil {
		return jobRecord{}, fmt.Errorf("decode job options: %w", err)
	}
	return job, nil
}

func (w *worker) runPipeline(ctx context.Context, job jobRecord) (tryon.Result, error) {
	person, err := w.store.Read(ctx, job.Options.PersonKey)
	if err != nil {
		return tryon.Result{}, fmt.Errorf("read person upload: %w", err)
	}
	garment, err := w.store.Read(ctx, job.Options.GarmentKey)
	if err != nil {
		return tryon.Result{}, fmt.Errorf("read garment upload: %w", err)
	}
	return w.pipeline.Run(ctx, tryon.Request{
		PersonImage:  imagegen.InlineImage{MIME: job.Options.PersonMIME, Data: person},
		GarmentImage: imagegen.InlineImage{MIME: job.Options.GarmentMIME, Data: garment},
		PresetID:     job.PresetID,
		AnchorZone:   tryon.AnchorZone(job.AnchorZone),
		Pose:         tryon.Pose(job.Options.Pose),
		Quality:      tryon.NormalizeQuality(job.Options.Quality),
	})
}

func (w *worker) persistResult(ctx context.Context, job jobRecord, result tryon.Result) error {
	ext := "png"
	if result.Image.MIME == "image/jpeg" {
		ext = "jpg"
	}
	key := fmt.Sprintf("results/%s/%s/result.%s", job.UserID, job.ID, ext)
	if _, err := w.store.Write(ctx, key, result.Image.Data); err != nil {
		return err
	}

	width, height := 0, 0
	if imgCfg, _, err := image.DecodeConfig(bytes.NewReader(result.Image.Data)); err == nil {
		width, height = imgCfg.Width, imgCfg.Height
	}
	props := map[string]any{"model": result.Model, "passes": result.Passes}
	if len(result.Warnings) > 0 {
		props["warnings"] = result.Warnings
	}
	propsJSON, _ := json.Marshal(props)

	row := w.runner.QueryRow(ctx, sqlinline.QInsertTryonAsset,
		job.ID, job.UserID, "RESULT", key, result.Image.MIME,
		int64(len(result.Image.Data)), width, height, propsJSON)
	var assetID string
	if err := row.Scan(&assetID); err != nil {
		return err
	}

	debug := map[string]any{
		"stages":           result.Debug.Stages,
		"total_time_ms":    result.Debug.TotalTimeMs,
		"face_overwritten": result.Debug.FaceOverwritten,
		"warnings":         result.Warnings,
	}
	debugJSON, _ := json.Marshal(debug)
	_, err := w.runner.Exec(ctx, sqlinline.QMarkJobSucceeded, job.ID, debugJSON)
	return err
}

func (w *worker) markFailed(ctx context.Context, jobID, reason string, debug *tryon.Debug) {
	debugJSON := []byte(`{}`)
	if debug != nil {
		if raw, err := json.Marshal(debug); err == nil {
			debugJSON = raw
		}
	}
	if _, err := w.runner.Exec(ctx, sqlinline.QMarkJobFailed, jobID, reason, debugJSON); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: mark failed failed")
	}
}

func (w *worker) recordRenderUsage(ctx context.Context, job jobRecord, model string, passes int, success bool, latency time.Duration) {
	if model == "" {
		model = w.imageModel
	}
	if passes < 1 {
		passes = 1
	}
	w.insertUsage(ctx, job, "gemini", model, "render", passes, success, latency)
}

func (w *worker) insertUsage(ctx context.Context, job jobRecord, provider, model, eventType string, units int, success bool, latency time.Duration) {
	estimated := usdPerUnit[provider] * float64(units)
	if _, err := w.runner.Exec(ctx, sqlinline.QInsertUsageEvent,
		job.UserID, job.ID, provider, model, eventType,
		units, estimated, success, latency.Milliseconds(), []byte(`{}`)); err != nil {
		w.logger.Warn().Err(err).Str("job_id", job.ID).Msg("worker: usage event insert failed")
	}
}
