package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/handlers"
	"github.com/CrowderSoup/taskboard/notice"
	"github.com/CrowderSoup/taskboard/services"
)

var Version = "dev"

type rootOptions struct {
	envFile    string
	configPath string

	cfg Config
	log *zap.Logger
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Kanban board client for the task tracker",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				opts.log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(loginCmd(opts))
	rootCmd.AddCommand(logoutCmd(opts))
	rootCmd.AddCommand(whoamiCmd(opts))
	rootCmd.AddCommand(projectsCmd(opts))
	rootCmd.AddCommand(boardCmd(opts))
	rootCmd.AddCommand(moveCmd(opts))
	rootCmd.AddCommand(taskCmd(opts))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) setup() error {
	cfg, err := LoadConfig(o.envFile, o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	o.log = log

	if err := notice.InitTranslator(cfg.Language); err != nil {
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local dashboard API and view feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts.cfg, opts.log)
		},
	}
}

func serve(ctx context.Context, cfg Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := services.NewHub(log.Named("hub"))
	go hub.Run(ctx)

	a, err := newApp(cfg, log, hub, board.WithObserver(hub.PublishBoard))
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.identity.Refresh(ctx); err != nil {
		log.Warn("failed to load current user", zap.Error(err))
	}

	r := handlers.NewRouter(handlers.Deps{
		Auth:        a.auth,
		Identity:    a.identity,
		Workspace:   a.workspace,
		Tasks:       a.tasks,
		Board:       a.board,
		Data:        a.data,
		Hub:         hub,
		Log:         log.Named("http"),
		CheckOrigin: originChecker(cfg.AllowedOrigins),
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// originChecker accepts websocket handshakes from the allowed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return nil
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
