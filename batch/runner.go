/*
runner.go - Batch driver: one calculation per pending source row

PURPOSE:
  Pulls pending rows, normalizes their scraped text fields into a
  CalculationRequest, runs the engine in-process and persists the typed
  result. The engine is pure and stateless, so rows fan out across a
  small worker pool with no coordination beyond the channel.

FAILURE POLICY:
  A row that fails to normalize, calculate or persist is logged and
  counted; the run moves on. Retry policy lives here, never in the engine.
*/
package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/revisa/precatorio/correcao"
)

// Runner executes one batch pass.
type Runner struct {
	Store  *Store
	Engine correcao.Engine
	Log    *zap.Logger

	// Workers caps concurrent calculations; <= 0 means serial.
	Workers int

	// Global overrides applied to every row, normally sourced from the
	// environment to reconcile a whole run with an official memo.
	OverrideAntes   *decimal.Decimal
	OverridePosIPCA *decimal.Decimal
}

// RunOptions narrows a pass.
type RunOptions struct {
	Limit int   // 0 = everything pending
	ID    int64 // non-zero = only this row
}

// RunSummary reports what a pass did.
type RunSummary struct {
	Processados int
	Falhas      int
}

// Run processes pending rows and returns the tally. It only errors when
// the pending query itself fails; per-row failures are counted.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (RunSummary, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	rows, err := r.Store.Pendentes(ctx, opts.Limit, opts.ID)
	if err != nil {
		return RunSummary{}, err
	}
	if len(rows) == 0 {
		log.Info("nenhuma linha pendente")
		return RunSummary{}, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(rows) {
		workers = len(rows)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary RunSummary
		feed    = make(chan Processo)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range feed {
				err := r.processar(ctx, p)
				mu.Lock()
				if err != nil {
					summary.Falhas++
				} else {
					summary.Processados++
				}
				mu.Unlock()
				if err != nil {
					log.Error("linha falhou",
						zap.Int64("id", p.ID),
						zap.String("processo", p.NumeroProcessoCNJ.String),
						zap.Error(err))
				} else {
					log.Info("resumo gravado",
						zap.Int64("id", p.ID),
						zap.String("processo", p.NumeroProcessoCNJ.String))
				}
			}
		}()
	}

	for _, p := range rows {
		select {
		case feed <- p:
		case <-ctx.Done():
			close(feed)
			wg.Wait()
			return summary, ctx.Err()
		}
	}
	close(feed)
	wg.Wait()

	log.Info("lote concluido",
		zap.Int("processados", summary.Processados),
		zap.Int("falhas", summary.Falhas))
	return summary, nil
}

func (r *Runner) processar(ctx context.Context, p Processo) error {
	req, err := r.montarRequest(p)
	if err != nil {
		return err
	}
	res, err := r.Engine.Calculate(req)
	if err != nil {
		return err
	}
	return r.Store.GravarResumo(ctx, p, res)
}

func (r *Runner) montarRequest(p Processo) (correcao.Request, error) {
	principal, err := NormalizarMoeda(p.Principal.String)
	if err != nil {
		return correcao.Request{}, fmt.Errorf("principal %q: %w", p.Principal.String, err)
	}
	juros, err := NormalizarMoeda(p.JurosMora.String)
	if err != nil {
		return correcao.Request{}, fmt.Errorf("juros_mora %q: %w", p.JurosMora.String, err)
	}
	ano, err := AnoBase(p.DataBase.String)
	if err != nil {
		return correcao.Request{}, err
	}

	return correcao.Request{
		Principal:       principal,
		AnoVenc:         ano,
		JurosMoraAnt:    juros,
		OverrideAntes:   r.OverrideAntes,
		OverridePosIPCA: r.OverridePosIPCA,
	}, nil
}

// NormalizarMoeda turns scraped money text into a decimal: "R$ 1.234,56"
// and "1234.56" both parse; empty means zero so NOT-NULL destination
// columns always receive a value.
func NormalizarMoeda(v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(v, "R$", ""))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// AnoBase extracts the base year from the data_base_atualizacao column,
// which over time has carried "2008-07-15", "2008" and "2008.0".
func AnoBase(v string) (int, error) {
	s := strings.TrimSpace(v)
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return y, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), nil
	}
	return 0, fmt.Errorf("data_base_atualizacao %q: ano irreconhecivel", v)
}
