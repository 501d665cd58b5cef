package cli

import (
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-merger/internal/config"
	"github.com/nerdneilsfield/go-docx-merger/internal/extract"
	"github.com/nerdneilsfield/go-docx-merger/internal/logger"
	"github.com/nerdneilsfield/go-docx-merger/internal/server"
	"github.com/nerdneilsfield/go-docx-merger/internal/storage"
)

var serveAddr string

// NewServeCommand creates the serve command, which runs the HTTP service.
func NewServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the document merge HTTP service",
		Long: `Run the HTTP service with three endpoints:

  POST /merge    merge uploaded DOCX files into one document
  POST /extract  extract combined plain text from uploads via OpenAI
  POST /upload   store a file and return a signed download URL

Storage and OpenAI credentials come from the config file or the
SUPABASE_URL, SUPABASE_KEY, SUPABASE_BUCKET, and OPENAI_API_KEY
environment variables.`,
		RunE: runServeCommand,
	}

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	return serveCmd
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if debugMode {
		cfg.Debug = true
	}
	if err := cfg.ValidateService(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Debug)
	defer func() {
		_ = log.Sync()
	}()

	store := storage.NewClient(cfg.Storage, log)
	extractor := extract.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, log)
	srv := server.New(*cfg, store, extractor, log)

	log.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("bucket", cfg.Storage.Bucket))
	color.Cyan("Listening on %s", cfg.Server.Addr)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	return httpServer.ListenAndServe()
}
