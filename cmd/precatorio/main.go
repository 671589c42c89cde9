/*
main.go - Application entry point

PURPOSE:
  Root command for the precatorio toolchain. Subcommands cover the whole
  pipeline: acquiring IPCA-E indices, running one calculation, batch
  processing pending rows, and serving the HTTP API.

SUBCOMMANDS:
  calcular           One correction from flags, report on stdout
  indices baixar     Download the IBGE historical series zip
  indices converter  Convert the extracted series to the CSV shape
  indices sidra      Fetch the series from the SIDRA API
  lote               Process pending database rows
  servir             HTTP API server

ENVIRONMENT:
  Settings shared by lote and servir come from the environment (see
  config/config.go); flags override where both exist.

SEE ALSO:
  - config/config.go: Environment settings
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "precatorio",
	Short: "Correcao monetaria de precatorios pelo IPCA-E",
	Long: `Ferramentas de correcao monetaria de precatorios:
composicao do IPCA-E por janelas ANTES e POS, juros simples de 2% a.a.,
aquisicao de indices do IBGE e processamento em lote.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger at the given level. Unknown levels
// fall back to info.
func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
