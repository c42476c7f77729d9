package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/config"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/acquisition"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/entities"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/keywords"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/scoring"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/usecase"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/address/libpostal"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/chunking"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/cmdrunner"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/corpus"
	corpusredis "github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/corpus/redis"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/dictionary"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/htmltext"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/httpjson"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/imaging"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/model/onnx"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/ner/httpner"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/ocr/tesseract"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/pdf"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/queue/nats"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/repository/postgres"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/repository/sqlite"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/resilience"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/spellcheck/hunspell"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/spellcheck/wordlist"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/storage/localfs"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/observability/metrics"
)

// Options select the optional outer surfaces. The in-process CLI analyzer
// runs without a message queue.
type Options struct {
	Service   string
	WithQueue bool
}

type App struct {
	Config config.Config

	Queue     *nats.Queue
	Metrics   *metrics.WorkerMetrics
	AnalyzeUC *usecase.AnalyzeDocumentUseCase
	Submitter ports.DocumentSubmitter
	ProcessUC *usecase.ProcessJobUseCase

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Service == "" {
		opts.Service = "docintel"
	}
	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	app.Metrics = metrics.NewWorkerMetrics(opts.Service)
	observer := metrics.NewPipelineMetrics(app.Metrics.Registry(), opts.Service)

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: cfg.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.RetryMaxBackoff,
		RetryJitter:         cfg.RetryJitter,
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}, logger)
	executor.OnStateChange(observer.ObserveBreakerState)

	store, overrides, err := app.openCorpus(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	corpusStore := corpus.NewResilientStore(store, executor, "corpus."+cfg.CorpusBackend)

	dictOpts := dictionary.Options{
		OverridePath: cfg.DictionaryOverridePath,
		TTL:          cfg.DictionaryCacheTTL,
		Logger:       logger,
	}
	if cfg.GlobalCorpusMinUsers > 0 {
		dictOpts.Values = map[string]float64{domain.KeyGlobalCorpusMinUsers: float64(cfg.GlobalCorpusMinUsers)}
	}
	if overrides != nil {
		dictOpts.Store = overrides
	}
	dict, err := dictionary.NewProvider(dictOpts)
	if err != nil {
		return nil, fmt.Errorf("init dictionary: %w", err)
	}

	runner := cmdrunner.New(logger)
	installed := func(binary string) bool {
		if binary == "" {
			return false
		}
		if !cmdrunner.Available(binary) {
			logger.Warn("external binary not found, capability disabled", "binary", binary)
			return false
		}
		return true
	}

	var spell ports.SpellChecker
	switch {
	case cfg.WordlistDir != "":
		spell = wordlist.New(cfg.WordlistDir)
	case installed(cfg.HunspellBinary):
		spell = hunspell.New(hunspell.Config{Binary: cfg.HunspellBinary}, runner)
	}

	var ner ports.NERDetector
	if cfg.NERURL != "" {
		ner = httpner.New(httpjson.New("ner", cfg.NERURL, httpjson.Options{
			Timeout:    cfg.CapabilityTimeout,
			RatePerSec: cfg.NERRatePerSec,
			Burst:      cfg.NERBurst,
			Executor:   executor,
		}), chunking.NewSplitter(cfg.NERMaxChars, cfg.NERMaxChars/10))
	}
	var address ports.AddressParser
	if cfg.AddressParserURL != "" {
		address = libpostal.New(httpjson.New("address", cfg.AddressParserURL, httpjson.Options{
			Timeout:    cfg.CapabilityTimeout,
			RatePerSec: cfg.AddressRatePerSec,
			Burst:      cfg.AddressBurst,
			Executor:   executor,
		}))
	}

	var model ports.ScoringModel
	if cfg.ModelDir != "" {
		m := onnx.New(onnx.Config{LibraryPath: cfg.ONNXLibraryPath, ModelDir: cfg.ModelDir}, logger)
		app.closeFns = append(app.closeFns, func() { _ = m.Close() })
		model = m
	}

	deps := acquisition.Deps{
		Inspector: pdf.NewInspector(logger),
		Images:    imaging.New(imaging.DefaultConfig()),
		HTML:      htmltext.New(),
		Quality:   acquisition.NewQualityAssessor(spell, observer, logger),
		Observer:  observer,
	}
	if installed(cfg.TesseractBinary) {
		deps.OCR = tesseract.New(tesseract.Config{Binary: cfg.TesseractBinary, TessdataDir: cfg.TessdataDir}, runner)
	}
	if installed(cfg.PdftoppmBinary) {
		deps.Renderer = pdf.NewRenderer(pdf.RendererConfig{
			PdftoppmBinary:  cfg.PdftoppmBinary,
			PdfimagesBinary: cfg.PdfimagesBinary,
		}, runner, logger)
	}
	acquirer := acquisition.NewAcquirer(acquisition.Config{
		TargetDPI:          cfg.RenderDPI,
		RasterDPIThreshold: cfg.RasterDPIThreshold,
		OSDMinConfidence:   cfg.OSDMinConfidence,
	}, deps, logger)

	analyzer := usecase.NewAnalyzeDocumentUseCase(
		dict,
		acquirer,
		entities.NewExtractor(ner, address, observer, logger),
		scoring.NewScorer(spell, corpusStore, model, observer, logger),
		keywords.NewExtractor(spell, corpusStore, observer, logger),
		observer,
		cfg.DefaultLanguage,
		logger,
	)
	app.AnalyzeUC = analyzer

	if opts.WithQueue {
		storage, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		queue, err := nats.New(cfg.NATSURL, nats.Subjects{
			Jobs:    cfg.NATSJobsSubject,
			Results: cfg.NATSResultsSubject,
		}, nats.Options{
			QueueGroup:         cfg.NATSQueueGroup,
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.closeFns = append(app.closeFns, queue.Close)
		app.Queue = queue
		app.Submitter = usecase.NewSubmitDocumentUseCase(storage, queue)
		app.ProcessUC = usecase.NewProcessJobUseCase(storage, analyzer, queue, cfg.PipelineTimeout, logger)
	}

	ok = true
	return app, nil
}

// openCorpus returns the configured corpus backend and, for Postgres, the
// scoring override store sharing its connection pool.
func (a *App) openCorpus(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.CorpusStatsStore, ports.ScoringOverrideStore, error) {
	switch cfg.CorpusBackend {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closeDB(db)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return postgres.NewCorpusRepository(db), postgres.NewOverridesRepository(db), nil
	case "sqlite":
		db, err := sqlite.OpenDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closeDB(db)
		repo := sqlite.NewCorpusRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure sqlite schema: %w", err)
		}
		return repo, nil, nil
	case "redis":
		store, err := corpusredis.New(corpusredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init redis corpus: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = store.Close() })
		return store, nil, nil
	case "memory":
		logger.Warn("using in-memory corpus statistics, counts are lost on exit")
		return corpus.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus backend %q", cfg.CorpusBackend)
	}
}

func (a *App) closeDB(db *sql.DB) {
	a.closeFns = append(a.closeFns, func() { _ = db.Close() })
}

// Healthy reports whether the queue connection, when configured, is up.
func (a *App) Healthy() bool {
	return a.Queue == nil || a.Queue.Healthy()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
