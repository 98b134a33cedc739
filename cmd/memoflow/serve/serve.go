// Package servecmder provides the serve command that runs the memoflow API
// server with its background enrichment workers.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memoflow/memoflow/api"
	"github.com/memoflow/memoflow/pkg/config"
	"github.com/memoflow/memoflow/pkg/enrich"
	enrichollama "github.com/memoflow/memoflow/pkg/enrich/ollama"
	enrichopenai "github.com/memoflow/memoflow/pkg/enrich/openai"
	"github.com/memoflow/memoflow/pkg/eventstream"
	eventkafka "github.com/memoflow/memoflow/pkg/eventstream/kafka"
	eventnop "github.com/memoflow/memoflow/pkg/eventstream/nop"
	"github.com/memoflow/memoflow/pkg/lifecycle"
	"github.com/memoflow/memoflow/pkg/logger"
	"github.com/memoflow/memoflow/pkg/query"
	"github.com/memoflow/memoflow/pkg/storage"
	"github.com/memoflow/memoflow/pkg/storage/inmemory"
	"github.com/memoflow/memoflow/pkg/storage/postgres"
	"github.com/memoflow/memoflow/pkg/storage/sqlite"
)

type ServeCommander struct {
	listen     string
	configPath string
	debug      bool
	config     *config.Config
	logger     *zap.Logger
}

const serveLongDesc string = `Run the memoflow API server.

The server stores memos durably and enriches them in the background.
Configuration comes from memoflow.toml, MEMOFLOW_* environment
variables, and flags. The OpenAI API key is read from OPENAI_API_KEY;
without it, enrichment runs in disabled mode and memos keep their
explicit tags only.`

const serveShortDesc string = "Run the memoflow API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configPath, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on (overrides config)")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configPath)
	if err != nil {
		return err
	}
	c.config, err = config.Load(v)
	if err != nil {
		return err
	}
	if c.listen != "" {
		c.config.API.Listen = c.listen
	}

	// Create the storage driver
	store, err := c.createDriver()
	if err != nil {
		return err
	}
	defer store.Close()

	// Create the enricher
	enricher := c.createEnricher()

	// Create the event publisher
	events, err := c.createPublisher()
	if err != nil {
		return err
	}
	defer events.Close()

	// Create the lifecycle manager
	manager, err := lifecycle.NewManager(&lifecycle.Config{
		Store:         store,
		Enricher:      enricher,
		Events:        events,
		NumWorkers:    c.config.Enrichment.Workers,
		QueueSize:     c.config.Enrichment.QueueSize,
		EnrichTimeout: time.Duration(c.config.Enrichment.TimeoutSeconds) * time.Second,
		Logger:        c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating lifecycle manager: %w", err)
	}

	// Create the API server
	apiConfig := api.Config{
		ListenAddr: c.config.API.Listen,
	}
	apiServer := api.NewServer(apiConfig, manager, query.NewFacade(store, c.logger), c.logger)

	c.logger.Info("starting api server",
		zap.String("api_addr", c.config.API.Listen),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		manager.Close()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		if err := apiServer.Shutdown(); err != nil {
			c.logger.Warn("api shutdown error", zap.Error(err))
		}
		// Drain queued enrichment jobs before releasing the store.
		manager.Close()
		return nil
	}
}

func (c *ServeCommander) createDriver() (storage.Driver, error) {
	switch c.config.Storage.Driver {
	case "sqlite":
		driver, err := sqlite.NewDriver(c.config.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		c.logger.Info("using SQLite storage", zap.String("path", c.config.Storage.SQLitePath))
		return driver, nil
	case "postgres":
		driver, err := postgres.NewDriver(context.Background(), c.config.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres driver: %w", err)
		}
		c.logger.Info("using Postgres storage")
		return driver, nil
	case "memory":
		c.logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.config.Storage.Driver)
	}
}

func (c *ServeCommander) createEnricher() enrich.Enricher {
	switch c.config.Enrichment.Provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			c.logger.Info("OPENAI_API_KEY not set, enrichment disabled")
			return enrich.NewDisabled()
		}
		completer, err := enrichopenai.NewCompleter(enrichopenai.Config{
			APIKey:  apiKey,
			BaseURL: c.config.Enrichment.Target,
			Model:   c.config.Enrichment.Model,
		})
		if err != nil {
			c.logger.Warn("could not create OpenAI completer, enrichment disabled", zap.Error(err))
			return enrich.NewDisabled()
		}
		c.logger.Info("enrichment enabled", zap.String("provider", completer.Name()))
		return enrich.NewService(completer, c.logger)
	case "ollama":
		completer := enrichollama.NewCompleter(enrichollama.Config{
			BaseURL: c.config.Enrichment.Target,
			Model:   c.config.Enrichment.Model,
		})
		c.logger.Info("enrichment enabled", zap.String("provider", completer.Name()))
		return enrich.NewService(completer, c.logger)
	case "disabled":
		c.logger.Info("enrichment disabled by config")
		return enrich.NewDisabled()
	default:
		c.logger.Warn("unknown enrichment provider, enrichment disabled",
			zap.String("provider", c.config.Enrichment.Provider),
		)
		return enrich.NewDisabled()
	}
}

func (c *ServeCommander) createPublisher() (eventstream.Publisher, error) {
	switch c.config.Events.Provider {
	case "kafka":
		publisher, err := eventkafka.NewPublisher(eventkafka.Config{
			Brokers: c.config.Events.Brokers,
			Topic:   c.config.Events.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}
		c.logger.Info("publishing memo events to Kafka",
			zap.Strings("brokers", c.config.Events.Brokers),
		)
		return publisher, nil
	case "nop":
		return eventnop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unknown events provider %q", c.config.Events.Provider)
	}
}
