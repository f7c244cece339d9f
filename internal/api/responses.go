package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"FundDesk/internal/ledger"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	respondWithJSON(w, status, body)
}

// statusFor maps a ledger rule violation to an HTTP status. ok is false for
// errors that are not rule violations.
func statusFor(err error) (status int, code string, ok bool) {
	var rule *ledger.RuleError
	if !errors.As(err, &rule) {
		return http.StatusInternalServerError, "INTERNAL", false
	}
	switch rule.Code {
	case ledger.CodeTransactionNotFound, ledger.CodeUserNotFound:
		return http.StatusNotFound, string(rule.Code), true
	case ledger.CodeNotPending:
		return http.StatusConflict, string(rule.Code), true
	default:
		return http.StatusUnprocessableEntity, string(rule.Code), true
	}
}
