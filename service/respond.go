package service

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	errLedgerNotFound = errors.New("service: ledger not found")
	errNoBook         = errors.New("service: ledger has no holding book")
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
