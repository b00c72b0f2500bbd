// Package main provides the Fluxo server: the workflow API together with the
// schedule trigger runtime.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxo-hq/fluxo/pkg/auth"
	"github.com/fluxo-hq/fluxo/pkg/cmd"
	"github.com/fluxo-hq/fluxo/pkg/eventbus"
	"github.com/fluxo-hq/fluxo/pkg/log"
	"github.com/fluxo-hq/fluxo/pkg/otelhelper"
	"github.com/fluxo-hq/fluxo/pkg/scheduler"
	"github.com/fluxo-hq/fluxo/pkg/services"
	"github.com/fluxo-hq/fluxo/pkg/web"
	"github.com/fluxo-hq/fluxo/pkg/workflow"
)

const (
	defaultPort            = 8088
	defaultMaxConcurrent   = 10
	defaultShutdownTimeout = 30 * time.Second
)

func main() {
	logger := log.WithModule("fluxo")

	command := &cli.Command{
		Name:                  "fluxo",
		Usage:                 "Run the workflow automation server",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL (postgres://... or a file path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "jwt-secret",
				Usage:    "Secret key for signing bearer tokens",
				Required: true,
				Sources:  cli.EnvVars("JWT_SECRET"),
			},
			&cli.StringFlag{
				Name:     "jwt-algorithm",
				Usage:    "JWT signing algorithm (HS256, HS384, HS512)",
				Required: true,
				Sources:  cli.EnvVars("JWT_ALGORITHM"),
			},
			&cli.IntFlag{
				Name:     "jwt-expiry-minutes",
				Usage:    "Bearer token lifetime in minutes",
				Required: true,
				Sources:  cli.EnvVars("JWT_EXPIRY_MINUTES"),
			},
			&cli.IntFlag{
				Name:    "max-concurrent-runs",
				Usage:   "Maximum number of scheduled runs executing at once",
				Value:   defaultMaxConcurrent,
				Sources: cli.EnvVars("MAX_CONCURRENT_RUNS"),
			},
			&cli.BoolFlag{
				Name:    "enable-tracing",
				Usage:   "Export traces via OTLP",
				Sources: cli.EnvVars("ENABLE_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			return run(ctx, command)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("fluxo")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "Initializing Fluxo")

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(context.Background()); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	registry := cmd.NewRegistry(logger)

	bus := eventbus.NewGoChannelEventBus(logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	recorder := workflow.NewExecutionRecorder(persistence, logger)
	if err := recorder.Attach(ctx, bus); err != nil {
		return err
	}

	var tracer trace.Tracer

	if command.Bool("enable-tracing") {
		tracer, err = otelhelper.NewTracer(ctx, "fluxo")
		if err != nil {
			return err
		}
	}

	runner := workflow.NewRunner(workflow.NewEngine(logger), bus, tracer, logger)
	sched := scheduler.NewScheduler(runner, command.Int("max-concurrent-runs"), logger)

	authService, err := auth.NewService(
		persistence,
		command.String("jwt-secret"),
		command.String("jwt-algorithm"),
		time.Duration(command.Int("jwt-expiry-minutes"))*time.Minute,
	)
	if err != nil {
		return err
	}

	workflowService := services.NewWorkflow(persistence, registry, runner, sched, logger)
	userService := services.NewUser(persistence, logger)

	if err := workflowService.RestoreSchedules(ctx); err != nil {
		return err
	}

	sched.Start()

	app := web.NewApp(web.NewAPIHandlers(workflowService, userService, authService, registry))

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Listen(":" + strconv.Itoa(command.Int("port")))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}

	if err := sched.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down scheduler", "error", err)
	}

	return nil
}
