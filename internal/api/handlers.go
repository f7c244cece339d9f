package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FundDesk/internal/desk"
	"FundDesk/internal/export"
	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
	"FundDesk/internal/recorder"
)

const signupTokenTTL = 24 * time.Hour

// Handler holds the desk service the HTTP handlers interact with.
type Handler struct {
	desk   *desk.Desk
	secret []byte
	log    *zap.Logger
}

// NewHandler creates a Handler. A nil logger disables handler logging.
func NewHandler(d *desk.Desk, secret []byte, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{desk: d, secret: secret, log: logger}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type redemptionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Type   model.Pool      `json:"type"`
	Date   string          `json:"date,omitempty"`
}

type performanceRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
}

type signupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "BAD_REQUEST", "Corpo da requisição inválido.")
		return false
	}
	return true
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// fail writes err as a JSON error. Rule violations keep their message; other
// errors are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, ok := statusFor(err)
	if ok {
		respondWithError(w, status, code, err.Error())
		return
	}
	h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	respondWithError(w, status, code, "Erro interno.")
}

func identity(r *http.Request) model.Identity {
	who, _ := IdentityFromContext(r.Context())
	return who
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || !strings.Contains(req.Email, "@") {
		respondWithError(w, http.StatusBadRequest, "BAD_REQUEST", "Nome e e-mail válidos são obrigatórios.")
		return
	}

	u, err := h.desk.CreateUser(r.Context(), ledger.NewUser{Name: req.Name, Email: req.Email, AvatarURL: req.AvatarURL})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := IssueToken(h.secret, model.Identity{ID: u.ID, Name: u.Name, Role: u.Role}, signupTokenTTL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("user signed up", zap.String("user_id", u.ID))
	respondWithJSON(w, http.StatusCreated, map[string]any{"user": u, "token": token})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.desk.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.desk.Transactions(r.Context(), identity(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, txs)
}

func (h *Handler) handleInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := h.desk.Investments(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, invs)
}

func (h *Handler) handleLiquidity(w http.ResponseWriter, r *http.Request) {
	at, ok := parseDate(r.URL.Query().Get("date"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "BAD_REQUEST", "Data inválida, use AAAA-MM-DD.")
		return
	}
	liquid, at, err := h.desk.Liquidity(r.Context(), at)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"date":          at.Format(time.DateOnly),
		"liquidCapital": liquid,
		"formatted":     liquid.Format(),
	})
}

func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, ok := h.amount(w, r, req.Amount)
	if !ok {
		return
	}
	tx, err := h.desk.Contribute(r.Context(), identity(r), amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, tx)
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redemptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	scheduled, ok := parseDate(req.Date)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "BAD_REQUEST", "Data inválida, use AAAA-MM-DD.")
		return
	}
	amount, ok := h.amount(w, r, req.Amount)
	if !ok {
		return
	}
	tx, msg, err := h.desk.RequestRedemption(r.Context(), ledger.RedemptionRequest{
		Amount:        amount,
		Pool:          model.Pool(strings.ToUpper(string(req.Type))),
		ScheduledDate: scheduled,
		Requester:     identity(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]any{"message": msg, "transaction": tx})
}

// amount converts a request amount to cents, answering 422 when it is out of range.
func (h *Handler) amount(w http.ResponseWriter, r *http.Request, d decimal.Decimal) (money.Cents, bool) {
	c, err := money.FromDecimal(d)
	if err != nil {
		h.fail(w, r, ledger.ErrAmountTooLarge)
		return 0, false
	}
	return c, true
}

func (h *Handler) handleReinvest(w http.ResponseWriter, r *http.Request) {
	amount, err := h.desk.Reinvest(r.Context(), identity(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"amount":  amount,
		"message": "Reinvestimento de " + amount.Format() + " realizado.",
	})
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	snap, err := h.desk.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txs, err := h.desk.Transactions(r.Context(), identity(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extrato.xlsx"`)
	if err := export.WriteStatement(w, snap, txs); err != nil {
		h.log.Error("write statement", zap.Error(err))
	}
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.desk.Pending(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pending)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	tx, err := h.desk.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("transaction approved", zap.String("tx_id", tx.ID), zap.String("admin", identity(r).ID))
	respondWithJSON(w, http.StatusOK, tx)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	tx, err := h.desk.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("transaction rejected", zap.String("tx_id", tx.ID), zap.String("admin", identity(r).ID))
	respondWithJSON(w, http.StatusOK, tx)
}

func (h *Handler) handleManualPerformance(w http.ResponseWriter, r *http.Request) {
	var req performanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dist, err := h.desk.DistributeManual(r.Context(), req.Percentage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dist)
}

func (h *Handler) handleAutoPerformance(w http.ResponseWriter, r *http.Request) {
	dist, err := h.desk.DistributeAuto(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dist)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.desk.Users(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) handleToggleVerification(w http.ResponseWriter, r *http.Request) {
	u, err := h.desk.ToggleVerification(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondWithError(w, http.StatusBadRequest, "BAD_REQUEST", "limit deve estar entre 1 e 500.")
			return
		}
		limit = n
	}
	history, err := h.desk.History(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if history == nil {
		history = []recorder.LedgerEvent{}
	}
	respondWithJSON(w, http.StatusOK, history)
}
