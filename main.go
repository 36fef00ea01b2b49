package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"simplenotes/config"
	"simplenotes/config/database"
	"simplenotes/internal/canvas"
	"simplenotes/internal/note/repository"
	"simplenotes/internal/note/service"
	"simplenotes/pkg/logger"
	"simplenotes/router"
	"simplenotes/socket"

	"github.com/spf13/cobra"
)

var logLevel string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "simplenotes",
		Short:         "Note store and drawing canvas server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP and WebSocket server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or upgrade the notes schema and exit",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print stored notes, most recently modified first",
			RunE:  runList,
		},
	)
	return root
}

// bootstrap loads configuration, starts logging and opens the note repository.
func bootstrap() (config.Config, *repository.NoteRepository, error) {
	cfg, found := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(cfg.LogLevel)
	if !found {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	repo := repository.Open(cfg.Database, database.Connect)
	if err := repo.Setup(); err != nil {
		repo.Close()
		return cfg, nil, err
	}
	logger.Sugar.Infof("Note storage ready (%s backend)", repo.Backend())
	return cfg, repo, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, repo, err := bootstrap()
	if err != nil {
		logger.Sugar.Fatalf("Could not initialise note storage: %v", err)
	}
	defer repo.Close()

	background, err := canvas.ParseHex(cfg.Canvas.Background)
	if err != nil {
		logger.Sugar.Warnf("Invalid CANVAS_BACKGROUND %q, using white: %v", cfg.Canvas.Background, err)
		background = canvas.White
	}

	hub := socket.NewHub(repo, cfg.Canvas.Width, cfg.Canvas.Height, background)
	hub.AllowedOrigin = cfg.CORSOrigin
	go hub.Run()
	defer hub.Stop()

	svc := service.NewNoteService(repo, hub, cfg.Canvas.ExportDir)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Setup(cfg, svc, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Go Backend listening on %s", cfg.HTTPAddr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, repo, err := bootstrap()
	if err != nil {
		return err
	}
	defer repo.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s backend)\n", repo.Backend())
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	_, repo, err := bootstrap()
	if err != nil {
		return err
	}
	defer repo.Close()

	notes, err := repo.GetAll()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODIFIED\tCATEGORY\tTITLE")
	for _, n := range notes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, n.LastModified.Format(time.DateTime), n.Category, n.Title)
	}
	return w.Flush()
}
