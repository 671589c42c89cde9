package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/revisa/precatorio/batch"
	"github.com/revisa/precatorio/config"
	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	loteIndicesCSV string
	loteLimit      int
	loteID         int64
	loteWorkers    int
	loteMigrar     bool
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var loteCmd = &cobra.Command{
	Use:   "lote",
	Short: "Processa em lote os precatorios pendentes no banco",
	Long: `Busca os processos ainda nao calculados, roda a correcao de cada um
e grava o resumo de volta, marcando a linha como processada.

A conexao com o banco e os overrides globais vem do ambiente (DB_DRIVER,
DB_DSN, OVERRIDE_ANTES, OVERRIDE_POS_IPCA); ver config/config.go.`,
	RunE: runLote,
}

func init() {
	f := loteCmd.Flags()
	f.StringVar(&loteIndicesCSV, "indices-csv", "indices.csv", "CSV da serie de indices")
	f.IntVar(&loteLimit, "limit", 0, "Maximo de linhas a processar (0 = todas)")
	f.Int64Var(&loteID, "id", 0, "Processa somente esta linha")
	f.IntVar(&loteWorkers, "workers", 0, "Trabalhadores concorrentes (0 = valor do ambiente)")
	f.BoolVar(&loteMigrar, "migrar", false, "Cria as tabelas antes de processar")

	rootCmd.AddCommand(loteCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runLote(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	serie, err := correcao.LoadSeriesFile(loteIndicesCSV)
	if err != nil {
		return err
	}

	store, err := batch.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if loteMigrar {
		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
	}

	workers := loteWorkers
	if workers <= 0 {
		workers = cfg.BatchWorkers
	}

	runner := &batch.Runner{
		Store:           store,
		Engine:          correcao.Engine{Serie: serie},
		Log:             log,
		Workers:         workers,
		OverrideAntes:   cfg.OverrideAntes,
		OverridePosIPCA: cfg.OverridePosIPCA,
	}
	summary, err := runner.Run(cmd.Context(), batch.RunOptions{Limit: loteLimit, ID: loteID})
	if err != nil {
		return err
	}

	log.Info("lote concluido",
		zap.Int("processados", summary.Processados),
		zap.Int("falhas", summary.Falhas))
	return nil
}
