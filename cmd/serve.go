package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/threatsketch/threatsketch/internal/apilog"
	"github.com/threatsketch/threatsketch/internal/config"
	"github.com/threatsketch/threatsketch/internal/display"
	"github.com/threatsketch/threatsketch/internal/llm"
	"github.com/threatsketch/threatsketch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ThreatSketch HTTP server",
	Long: `Starts the HTTP server on port 5000 (or $PORT).

Endpoints:
  GET  /                       - diagramming UI
  POST /generate_misuse_cases  - misuse-case generation
  POST /save                   - diagram save acknowledgment
  GET  /health                 - health status

The LLM provider key is read from GROQ_API_KEY (or llm.api_key in the
config file); without a key the server starts with AI features
disabled and the generation endpoint answers 503.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	// PORT env variable wins in container environments.
	if envPort := os.Getenv("PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}

	apiLog, err := apilog.New(cfg.Server.LogFile)
	if err != nil {
		return fmt.Errorf("open api log: %w", err)
	}
	defer apiLog.Close()

	var gateway llm.Gateway
	if cfg.LLM.Available() {
		client, err := llm.NewClient(&cfg.LLM)
		if err != nil {
			return fmt.Errorf("create LLM client: %w", err)
		}
		gateway = client
	} else {
		display.Warn("GROQ_API_KEY not set - AI features will be disabled")
		gateway = llm.Disabled{}
	}

	srv, err := server.New(server.Config{
		Gateway:     gateway,
		APILog:      apiLog,
		AppYAMLPath: cfg.Server.AppYAML,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	display.PrintBanner(display.ServerInfo{
		AppName:     "ThreatSketch",
		Version:     version,
		LLMModel:    cfg.LLM.Model,
		LLMBaseURL:  cfg.LLM.BaseURL,
		AIAvailable: gateway.Available(),
		LogFile:     cfg.Server.LogFile,
		Port:        port,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: srv.Handler(),
	}

	return httpServer.ListenAndServe()
}
