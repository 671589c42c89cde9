/*
store.go - SQL access for the batch pipeline

PURPOSE:
  Reads pending rows from esaj_detalhe_processos and writes the fourteen
  calculation fields into esaj_calc_precatorio_resumo, flipping the
  processed flag in the same transaction so a crashed run never leaves a
  row half-done.

DRIVERS:
  postgres (lib/pq) in production, sqlite3 for local runs and tests. All
  SQL here sticks to the portable subset; sqlx.Rebind handles the
  placeholder dialects.

SEE ALSO:
  - runner.go: drives this store row by row
*/
package batch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/revisa/precatorio/correcao"
)

// Store wraps the batch database.
type Store struct {
	db *sqlx.DB
}

// Open connects using the given driver ("postgres" or "sqlite3") and DSN.
func Open(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("conexao %s: %w", driver, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the two pipeline tables when absent. Production
// Postgres normally carries them already; local sqlite runs and tests
// rely on this.
func (s *Store) Migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS esaj_detalhe_processos (
			id BIGINT PRIMARY KEY,
			numero_ordem TEXT,
			cpf TEXT,
			numero_processo_cnj TEXT,
			valor_total_requisitado TEXT,
			valor_principal_bruto TEXT,
			data_base_atualizacao TEXT,
			juros_moratorios TEXT,
			process_calculo BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS esaj_calc_precatorio_resumo (
			cpf TEXT NOT NULL,
			numero_processo_cnj TEXT NOT NULL,
			fator_ipcae_antes NUMERIC NOT NULL,
			fator_ipcae_pos NUMERIC NOT NULL,
			fator_juros_2aa_simples NUMERIC NOT NULL,
			meses_para_2aa INTEGER NOT NULL,
			principal_original NUMERIC NOT NULL,
			principal_apos_antes NUMERIC NOT NULL,
			principal_pos_ipca NUMERIC NOT NULL,
			principal_final_ipca_2aa NUMERIC NOT NULL,
			juros_mora_anteriores_base NUMERIC NOT NULL,
			juros_mora_apos_antes NUMERIC NOT NULL,
			juros_mora_final_corrigido NUMERIC NOT NULL,
			total_corrigido NUMERIC NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migracao: %w", err)
		}
	}
	return nil
}

// Processo is one source row. Monetary and date columns arrive as text in
// whatever formatting the scraper captured; the runner normalizes them.
type Processo struct {
	ID                int64          `db:"id"`
	NumeroOrdem       sql.NullString `db:"numero_ordem"`
	CPF               sql.NullString `db:"cpf"`
	NumeroProcessoCNJ sql.NullString `db:"numero_processo_cnj"`
	ValorPrecatorio   sql.NullString `db:"valor_precatorio"`
	Principal         sql.NullString `db:"principal"`
	DataBase          sql.NullString `db:"data_base_atualizacao"`
	JurosMora         sql.NullString `db:"juros_mora"`
}

const pendentesSQL = `
SELECT
    id,
    numero_ordem,
    cpf,
    numero_processo_cnj,
    valor_total_requisitado AS valor_precatorio,
    valor_principal_bruto   AS principal,
    data_base_atualizacao,
    juros_moratorios        AS juros_mora
FROM esaj_detalhe_processos
WHERE data_base_atualizacao IS NOT NULL
  AND process_calculo = FALSE`

// Pendentes lists unprocessed rows. A non-zero id restricts to that row;
// otherwise limit caps the page (0 means everything).
func (s *Store) Pendentes(ctx context.Context, limit int, id int64) ([]Processo, error) {
	var b strings.Builder
	b.WriteString(pendentesSQL)
	var args []interface{}
	if id != 0 {
		b.WriteString(" AND id = ?")
		args = append(args, id)
	}
	b.WriteString(" ORDER BY id")
	if limit > 0 && id == 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	var rows []Processo
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("consulta de pendentes: %w", err)
	}
	return rows, nil
}

const insertResumoSQL = `
INSERT INTO esaj_calc_precatorio_resumo (
    cpf, numero_processo_cnj,
    fator_ipcae_antes, fator_ipcae_pos, fator_juros_2aa_simples, meses_para_2aa,
    principal_original, principal_apos_antes, principal_pos_ipca, principal_final_ipca_2aa,
    juros_mora_anteriores_base, juros_mora_apos_antes, juros_mora_final_corrigido,
    total_corrigido
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// GravarResumo inserts the calculation summary and marks the source row
// processed, atomically. Either both land or neither does.
func (s *Store) GravarResumo(ctx context.Context, p Processo, res *correcao.Result) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.db.Rebind(insertResumoSQL),
		p.CPF.String,
		p.NumeroProcessoCNJ.String,
		res.FatorIPCAEAntes.StringFixed(8),
		res.FatorIPCAEPos.StringFixed(8),
		res.FatorJuros2aaSimples.StringFixed(8),
		res.MesesPara2aa,
		res.PrincipalOriginal.StringFixed(2),
		res.PrincipalAposAntes.StringFixed(2),
		res.PrincipalPosIPCA.StringFixed(2),
		res.PrincipalFinalIPCA2aa.StringFixed(2),
		res.JurosMoraAnterioresBase.StringFixed(2),
		res.JurosMoraAposAntes.StringFixed(2),
		res.JurosMoraFinalCorrigido.StringFixed(2),
		res.TotalCorrigido.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("insert resumo (id=%d): %w", p.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		s.db.Rebind(`UPDATE esaj_detalhe_processos SET process_calculo = TRUE WHERE id = ?`),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update process_calculo (id=%d): %w", p.ID, err)
	}

	return tx.Commit()
}

// InserirProcesso seeds a source row; used by local runs and tests.
func (s *Store) InserirProcesso(ctx context.Context, p Processo) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO esaj_detalhe_processos (
			id, numero_ordem, cpf, numero_processo_cnj,
			valor_total_requisitado, valor_principal_bruto,
			data_base_atualizacao, juros_moratorios, process_calculo
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, FALSE)`),
		p.ID, p.NumeroOrdem, p.CPF, p.NumeroProcessoCNJ,
		p.ValorPrecatorio, p.Principal, p.DataBase, p.JurosMora,
	)
	return err
}
