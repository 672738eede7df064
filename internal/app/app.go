package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/langtutor-backend/internal/adapter/embedding"
	"github.com/heartmarshall/langtutor-backend/internal/adapter/filestore"
	"github.com/heartmarshall/langtutor-backend/internal/adapter/provider/groq"
	"github.com/heartmarshall/langtutor-backend/internal/adapter/provider/local"
	"github.com/heartmarshall/langtutor-backend/internal/adapter/trainer/localexec"
	"github.com/heartmarshall/langtutor-backend/internal/adapter/trainer/openaitune"
	"github.com/heartmarshall/langtutor-backend/internal/adapter/vectorstore"
	"github.com/heartmarshall/langtutor-backend/internal/config"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
	"github.com/heartmarshall/langtutor-backend/internal/service/rag"
	"github.com/heartmarshall/langtutor-backend/internal/service/training"
	"github.com/heartmarshall/langtutor-backend/internal/service/trainingdata"
	"github.com/heartmarshall/langtutor-backend/internal/service/tutor"
	"github.com/heartmarshall/langtutor-backend/internal/transport/middleware"
	"github.com/heartmarshall/langtutor-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// adapters and services together, and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("log_level", cfg.Log.Level),
	)

	factory := provider.NewFactory()
	factory.Register("groq", func() (provider.Provider, error) {
		return groq.New(cfg.LLM.Groq, logger), nil
	})
	factory.Register("local", func() (provider.Provider, error) {
		return local.New(cfg.LLM.Local, logger), nil
	})

	llm, err := factory.New(cfg.LLM.Provider)
	if err != nil {
		return err
	}

	store, err := vectorstore.Open(cfg.VectorStore.Dir, logger)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder := embedding.New(cfg.Embedding, logger)
	ragService := rag.NewService(store, embedder, logger)

	// The knowledge base is an enhancement: failure to seed leaves chat
	// working without retrieval context.
	if err := ragService.Seed(ctx); err != nil {
		logger.Warn("knowledge base seeding failed", slog.String("error", err.Error()))
	}

	datasetStore, err := filestore.NewDatasetStore(cfg.Training.DataDir)
	if err != nil {
		return fmt.Errorf("open dataset store: %w", err)
	}
	jobStore, err := filestore.NewJobStore(cfg.Training.DataDir)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}

	dataService, err := trainingdata.NewService(datasetStore, cfg.Training.ExportDir, logger)
	if err != nil {
		return fmt.Errorf("init training data service: %w", err)
	}

	// the hosted backend is tried first; the local command is the fallback
	var trainers []training.Trainer
	if cfg.Training.FineTuneAPIKey != "" {
		trainers = append(trainers, openaitune.New(
			cfg.Training.FineTuneAPIKey,
			cfg.Training.FineTuneBaseURL,
			cfg.Training.PollInterval,
			logger,
		))
	}
	if cfg.Training.TrainerCommand != "" {
		trainers = append(trainers, localexec.New(cfg.Training.TrainerCommand, cfg.Training.ModelsDir, logger))
	}

	trainingService, err := training.NewService(jobStore, dataService, trainers, cfg.Training.ModelsDir, logger)
	if err != nil {
		return fmt.Errorf("init training service: %w", err)
	}

	var collector tutor.Collector
	if cfg.Training.AutoCollect {
		collector = dataService
	}
	tutorService := tutor.NewService(llm, ragService, collector, logger)

	handlers := rest.Handlers{
		Chat:       rest.NewChatHandler(tutorService, logger),
		Correction: rest.NewCorrectionHandler(tutorService, logger),
		Exercises:  rest.NewExerciseHandler(tutorService, logger),
		Data:       rest.NewTrainingDataHandler(dataService, logger),
		Jobs:       rest.NewTrainingJobHandler(trainingService, logger),
		Health:     rest.NewHealthHandler(llm.Name(), llm, ragService),
	}

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(rest.NewRouter(handlers))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
