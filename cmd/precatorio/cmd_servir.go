package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/revisa/precatorio/api"
	"github.com/revisa/precatorio/config"
	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	servirIndicesCSV string
	servirPort       int
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var servirCmd = &cobra.Command{
	Use:   "servir",
	Short: "Sobe o servidor HTTP de calculo",
	Long: `Carrega a serie de indices e expoe o calculo via HTTP:

  POST /api/calcular   Roda uma correcao
  GET  /api/serie      Metadados da serie carregada
  GET  /health         Prova de vida

A porta vem de HTTP_PORT; a flag --port tem precedencia.`,
	RunE: runServir,
}

func init() {
	f := servirCmd.Flags()
	f.StringVar(&servirIndicesCSV, "indices-csv", "indices.csv", "CSV da serie de indices")
	f.IntVar(&servirPort, "port", 0, "Porta HTTP (0 = valor do ambiente)")

	rootCmd.AddCommand(servirCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runServir(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	serie, err := correcao.LoadSeriesFile(servirIndicesCSV)
	if err != nil {
		return err
	}
	log.Info("serie carregada",
		zap.Int("meses", serie.Len()),
		zap.String("ultimo_mes", serie.LastMonth().String()))

	port := servirPort
	if port <= 0 {
		port = cfg.HTTPPort
	}

	handler := api.NewHandler(correcao.Engine{Serie: serie}, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("servidor no ar", zap.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("encerrando servidor")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
