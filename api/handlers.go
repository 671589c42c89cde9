/*
handlers.go - HTTP API handlers for the correction service

PURPOSE:
  Exposes the correction engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Calculation:
    POST   /api/calcular    Run one correction over the loaded series

  Series:
    GET    /api/serie       Metadata about the loaded index series

  Health:
    GET    /health          Liveness probe

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate and translate into a correcao.Request
  3. Call the engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, missing index months
  - 500: Internal errors
  Input errors are detected through the correcao sentinel chain, so a
  malformed pos_fim and a gap in the series both map to 400.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/revisa/precatorio/correcao"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. The engine (and the
// series behind it) is loaded once at startup and never mutated, so the
// handler is safe for concurrent requests.
type Handler struct {
	Engine correcao.Engine
	Log    *zap.Logger
}

// NewHandler creates a new handler over a loaded engine.
func NewHandler(engine correcao.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Engine: engine, Log: log}
}

// =============================================================================
// CALCULATION HANDLER
// =============================================================================

// Calcular runs one correction and returns the full typed result.
func (h *Handler) Calcular(w http.ResponseWriter, r *http.Request) {
	var body CalcularRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON invalido", err)
		return
	}

	req, err := h.toEngineRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "requisicao invalida", err)
		return
	}

	res, err := h.Engine.Calculate(req)
	if err != nil {
		// A month missing from the series is a request problem too: the
		// caller asked for a window the loaded series cannot cover.
		status := http.StatusInternalServerError
		if correcao.IsInputError(err) || errors.Is(err, correcao.ErrMissingIndex) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "calculo falhou", err)
		return
	}

	h.Log.Debug("calculo concluido",
		zap.Int("ano_venc", body.AnoVenc),
		zap.String("total", res.TotalCorrigido.StringFixed(2)))
	writeJSON(w, http.StatusOK, toResponse(res, body.Relatorio))
}

func (h *Handler) toEngineRequest(body CalcularRequest) (correcao.Request, error) {
	req := correcao.Request{
		AnoVenc:   body.AnoVenc,
		AntesMode: correcao.AntesMode(body.AntesMode),
		ClipPos:   body.ClipPos,
		Trace:     body.Trace,
	}

	var err error
	if req.Principal, err = parseMoney("principal", body.Principal); err != nil {
		return req, err
	}
	if req.JurosMoraAnt, err = parseMoney("juros_mora_ant", body.JurosMoraAnt); err != nil {
		return req, err
	}
	if req.JurosAAPos, err = parseMoney("juros_aa_pos", body.JurosAAPos); err != nil {
		return req, err
	}

	if s := strings.TrimSpace(body.PosFim); s != "" {
		mk, err := correcao.ParseMonthKey(s)
		if err != nil {
			return req, err
		}
		req.PosFim = &mk
	}

	if req.OverrideAntes, err = parseOverride("override_antes", body.OverrideAntes); err != nil {
		return req, err
	}
	if req.OverridePosIPCA, err = parseOverride("override_pos_ipca", body.OverridePosIPCA); err != nil {
		return req, err
	}
	return req, nil
}

// parseMoney treats blank as zero; engine defaults take over from there.
func parseMoney(name, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: valor nao numerico %q", name, raw)
	}
	return d, nil
}

func parseOverride(name, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return correcao.ParseOverride(name, raw)
}

// =============================================================================
// SERIES AND HEALTH
// =============================================================================

// Serie reports metadata about the loaded index series.
func (h *Handler) Serie(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"meses":      h.Engine.Serie.Len(),
		"ultimo_mes": h.Engine.Serie.LastMonth().String(),
	})
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Erro: message}
	if err != nil {
		resp.Erro = message + ": " + err.Error()
	}
	switch {
	case status >= 500:
		resp.Code = "internal"
	default:
		resp.Code = "invalid_input"
	}
	writeJSON(w, status, resp)
}
