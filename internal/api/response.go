package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/splitpay/splitpay/internal/calculator"
	"github.com/splitpay/splitpay/internal/models"
	"github.com/splitpay/splitpay/internal/service"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// SplitView is the external representation of a split: every stored
// attribute plus the derived payment status.
type SplitView struct {
	models.Split
	PaymentStatus calculator.PaymentStatus `json:"paymentStatus"`
}

func newSplitView(s *models.Split) SplitView {
	return SplitView{Split: *s, PaymentStatus: calculator.Progress(s)}
}

// statusByKind maps every lifecycle failure kind to a transport status.
// response_test.go checks the table is total over the enumeration.
var statusByKind = map[service.Kind]int{
	service.KindNotFound:            http.StatusNotFound,
	service.KindParticipantNotFound: http.StatusNotFound,
	service.KindNotActive:           http.StatusBadRequest,
	service.KindAlreadyJoined:       http.StatusBadRequest,
	service.KindFull:                http.StatusBadRequest,
	service.KindAlreadyPaid:         http.StatusBadRequest,
	service.KindNotCreator:          http.StatusForbidden,
	service.KindTokenSpaceExhausted: http.StatusInternalServerError,
	service.KindInternal:            http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeSplit(w http.ResponseWriter, status int, message string, split *models.Split) {
	writeJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    newSplitView(split),
	})
}

func writeValidationFailure(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "validation failed",
		Errors:  details,
	})
}

// writeServiceError maps a lifecycle error to its transport status.
// Internal detail leaves the process only in development mode.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	kind := service.KindOf(err)
	status := statusByKind[kind]

	message := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "kind", kind.String(), "error", err)
		if !s.devMode {
			message = "internal server error"
		}
	}

	writeJSON(w, status, Response{
		Success: false,
		Message: message,
		Errors:  []string{kind.String()},
	})
}
