package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	calcPrincipal       string
	calcAnoVenc         int
	calcIndicesCSV      string
	calcAntesMode       string
	calcJurosMoraAnt    string
	calcPosFim          string
	calcClipPos         bool
	calcJurosAAPos      string
	calcOverrideAntes   string
	calcOverridePosIPCA string
	calcDebug           bool
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var calcularCmd = &cobra.Command{
	Use:   "calcular",
	Short: "Calcula a correcao de um precatorio e imprime o relatorio",
	Long: `Calcula a correcao monetaria de um precatorio sobre a serie de
indices carregada de um CSV.

Exemplos:
  precatorio calcular --principal 150000.00 --ano-venc 2020 --indices-csv indices.csv
  precatorio calcular --principal 150000.00 --ano-venc 2020 --indices-csv indices.csv \
      --antes-mode full --pos-fim 2024-05 --debug`,
	RunE: runCalcular,
}

func init() {
	f := calcularCmd.Flags()
	f.StringVar(&calcPrincipal, "principal", "", "Valor principal bruto (obrigatorio)")
	f.IntVar(&calcAnoVenc, "ano-venc", 0, "Ano de vencimento do precatorio (obrigatorio)")
	f.StringVar(&calcIndicesCSV, "indices-csv", "indices.csv", "CSV da serie de indices")
	f.StringVar(&calcAntesMode, "antes-mode", "formacao", "Janela ANTES: formacao ou full")
	f.StringVar(&calcJurosMoraAnt, "juros-mora-ant", "0", "Juros moratorios anteriores (base)")
	f.StringVar(&calcPosFim, "pos-fim", "", "Fim da janela POS (YYYY-MM; vazio = fim da serie)")
	f.BoolVar(&calcClipPos, "clip-pos", false, "Recorta pos-fim ao fim da serie em vez de falhar")
	f.StringVar(&calcJurosAAPos, "juros-aa-pos", "0.02", "Taxa anual de juros simples da janela POS")
	f.StringVar(&calcOverrideAntes, "override-antes", "", "Fator ANTES fixo (substitui a composicao)")
	f.StringVar(&calcOverridePosIPCA, "override-pos-ipca", "", "Fator POS IPCA fixo (substitui a composicao)")
	f.BoolVar(&calcDebug, "debug", false, "Inclui o detalhamento mes a mes no relatorio")

	calcularCmd.MarkFlagRequired("principal")
	calcularCmd.MarkFlagRequired("ano-venc")

	rootCmd.AddCommand(calcularCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCalcular(cmd *cobra.Command, args []string) error {
	serie, err := correcao.LoadSeriesFile(calcIndicesCSV)
	if err != nil {
		return err
	}

	req := correcao.Request{
		AnoVenc:   calcAnoVenc,
		AntesMode: correcao.AntesMode(calcAntesMode),
		ClipPos:   calcClipPos,
		Trace:     calcDebug,
	}
	if req.Principal, err = decimal.NewFromString(calcPrincipal); err != nil {
		return fmt.Errorf("principal invalido %q: %w", calcPrincipal, err)
	}
	if req.JurosMoraAnt, err = decimal.NewFromString(calcJurosMoraAnt); err != nil {
		return fmt.Errorf("juros-mora-ant invalido %q: %w", calcJurosMoraAnt, err)
	}
	if req.JurosAAPos, err = decimal.NewFromString(calcJurosAAPos); err != nil {
		return fmt.Errorf("juros-aa-pos invalido %q: %w", calcJurosAAPos, err)
	}
	if calcPosFim != "" {
		mk, err := correcao.ParseMonthKey(calcPosFim)
		if err != nil {
			return err
		}
		req.PosFim = &mk
	}
	if calcOverrideAntes != "" {
		if req.OverrideAntes, err = correcao.ParseOverride("override-antes", calcOverrideAntes); err != nil {
			return err
		}
	}
	if calcOverridePosIPCA != "" {
		if req.OverridePosIPCA, err = correcao.ParseOverride("override-pos-ipca", calcOverridePosIPCA); err != nil {
			return err
		}
	}

	engine := correcao.Engine{Serie: serie}
	res, err := engine.Calculate(req)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Relatorio(calcDebug))
	return nil
}
