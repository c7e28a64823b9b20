// Command doodlegram runs the diagram generation server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rmalnoult/doodlegram/internal/adapter/gateway"
	"github.com/Rmalnoult/doodlegram/internal/adapter/image"
	"github.com/Rmalnoult/doodlegram/internal/adapter/llm"
	"github.com/Rmalnoult/doodlegram/internal/adapter/store"
	"github.com/Rmalnoult/doodlegram/internal/adapter/tool"
	"github.com/Rmalnoult/doodlegram/internal/domain"
	"github.com/Rmalnoult/doodlegram/internal/element"
	"github.com/Rmalnoult/doodlegram/internal/infra/config"
	"github.com/Rmalnoult/doodlegram/internal/infra/logger"
	"github.com/Rmalnoult/doodlegram/internal/infra/tracer"
	"github.com/Rmalnoult/doodlegram/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	diagrams, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer diagrams.Close()

	provider := llm.NewAnthropicProvider(cfg.LLM, log)

	images := image.NewBreakerClient(
		image.NewFalClient(image.FalConfig{
			APIKey:  cfg.Images.APIKey,
			BaseURL: cfg.Images.BaseURL,
			Model:   cfg.Images.Model,
			Timeout: cfg.Images.Timeout,
		}, log),
		image.BreakerConfig{},
		log,
	)

	// Each generation session gets its own builder and registry, so
	// element ids stay session-local under concurrent requests.
	toolset := func() domain.ToolExecutor {
		return tool.NewSession(element.NewBuilder(), images, log)
	}

	generator := usecase.NewGenerator(usecase.GeneratorDeps{
		LLM:           provider,
		Toolset:       toolset,
		Logger:        log,
		MaxIterations: cfg.Agent.MaxIterations,
		MaxTokens:     cfg.LLM.MaxTokens,
	})
	quick := usecase.NewQuickTranslator(provider, cfg.LLM.MaxTokens/2, log)

	server := gateway.NewServer(cfg.Server, generator, quick, diagrams, log)
	if err := server.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}
