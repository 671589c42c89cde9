package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revisa/precatorio/correcao"
	"github.com/revisa/precatorio/indices"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	indicesDestDir string
	indicesEntrada string
	indicesSaida   string
	indicesNome    string
	indicesAnoCol  int
	indicesMesCol  int
	indicesVarCol  int
	sidraDe        string
	sidraAte       string
	indicesLog     string
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Aquisicao e conversao da serie historica do IPCA-E",
}

var indicesBaixarCmd = &cobra.Command{
	Use:   "baixar",
	Short: "Baixa e extrai o zip da serie historica do IBGE",
	RunE:  runIndicesBaixar,
}

var indicesConverterCmd = &cobra.Command{
	Use:   "converter",
	Short: "Converte a planilha da serie historica para o CSV de indices",
	Long: `Converte a planilha extraida do zip do IBGE (um .xls que na pratica
e HTML) para o CSV de indices consumido por calcular e lote.`,
	RunE: runIndicesConverter,
}

var indicesSidraCmd = &cobra.Command{
	Use:   "sidra",
	Short: "Busca a serie mensal do IPCA-E na API SIDRA do IBGE",
	RunE:  runIndicesSidra,
}

func init() {
	indicesCmd.PersistentFlags().StringVar(&indicesLog, "log-level", "info", "Nivel de log: debug, info, warn, error")

	indicesBaixarCmd.Flags().StringVar(&indicesDestDir, "dest", ".", "Diretorio de destino do zip e dos arquivos extraidos")

	cf := indicesConverterCmd.Flags()
	cf.StringVar(&indicesEntrada, "entrada", "", "Planilha da serie historica (obrigatorio)")
	cf.StringVar(&indicesSaida, "saida", "indices.csv", "CSV de saida")
	cf.StringVar(&indicesNome, "indice", "IPCA-E", "Nome do indice gravado na coluna indice")
	cf.IntVar(&indicesAnoCol, "col-ano", 0, "Coluna do ano na planilha")
	cf.IntVar(&indicesMesCol, "col-mes", 1, "Coluna do mes na planilha")
	cf.IntVar(&indicesVarCol, "col-var", 3, "Coluna da variacao mensal na planilha")
	indicesConverterCmd.MarkFlagRequired("entrada")

	sf := indicesSidraCmd.Flags()
	sf.StringVar(&sidraDe, "de", "", "Primeiro mes (YYYY-MM; vazio = serie inteira)")
	sf.StringVar(&sidraAte, "ate", "", "Ultimo mes (YYYY-MM)")
	sf.StringVar(&indicesSaida, "saida", "indices.csv", "CSV de saida")

	indicesCmd.AddCommand(indicesBaixarCmd, indicesConverterCmd, indicesSidraCmd)
	rootCmd.AddCommand(indicesCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runIndicesBaixar(cmd *cobra.Command, args []string) error {
	log := newLogger(indicesLog)
	defer log.Sync()

	d := indices.NewDownloader(log)
	zipPath, err := d.Download(cmd.Context(), indicesDestDir)
	if err != nil {
		return err
	}
	extracted, err := indices.Extract(zipPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), zipPath)
	for _, f := range extracted {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

func runIndicesConverter(cmd *cobra.Command, args []string) error {
	in, err := os.Open(indicesEntrada)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := indices.ConvertOptions{
		Indice:   indicesNome,
		YearCol:  indicesAnoCol,
		MonthCol: indicesMesCol,
		VarCol:   indicesVarCol,
	}
	rows, err := indices.ConvertHTML(in, opts)
	if err != nil {
		return err
	}
	return writeRows(indicesSaida, rows)
}

func runIndicesSidra(cmd *cobra.Command, args []string) error {
	log := newLogger(indicesLog)
	defer log.Sync()

	var from, to *correcao.MonthKey
	if sidraDe != "" {
		mk, err := correcao.ParseMonthKey(sidraDe)
		if err != nil {
			return err
		}
		from = &mk
	}
	if sidraAte != "" {
		mk, err := correcao.ParseMonthKey(sidraAte)
		if err != nil {
			return err
		}
		to = &mk
	}

	c := indices.NewSidraClient(log)
	rows, err := c.FetchMonthly(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	return writeRows(indicesSaida, rows)
}

func writeRows(path string, rows []indices.Row) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := indices.WriteCSV(out, rows); err != nil {
		return err
	}
	return out.Close()
}
