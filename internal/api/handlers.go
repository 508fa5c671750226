// Package api exposes the Split Pay HTTP/JSON surface. It validates
// request shape before any store access and maps every lifecycle failure
// kind to a transport status.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitpay/splitpay/internal/models"
	"github.com/splitpay/splitpay/internal/service"
	"github.com/splitpay/splitpay/internal/token"
)

var (
	splitsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpay_splits_created_total",
		Help: "Number of splits created.",
	})
	paymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpay_payments_recorded_total",
		Help: "Number of participant payments marked.",
	})
	splitsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpay_splits_completed_total",
		Help: "Number of splits that reached completed status.",
	})
)

// Server holds the handlers for the split API.
type Server struct {
	splits  *service.SplitService
	devMode bool
}

// NewServer creates a Server. With devMode set, internal error detail is
// included in responses; production callers get a generic message.
func NewServer(splits *service.SplitService, devMode bool) *Server {
	return &Server{splits: splits, devMode: devMode}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/splits", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/splits/{token}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/api/splits/{token}/join", s.handleJoin).Methods(http.MethodPost)
	r.HandleFunc("/api/splits/{token}/pay", s.handlePay).Methods(http.MethodPost)
	r.HandleFunc("/api/splits/{token}/cancel", s.handleCancel).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// decodeJSON parses the body into v, reporting a validation failure on
// malformed JSON so no handler touches the store with bad input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeValidationFailure(w, []string{"request body must be valid JSON: " + err.Error()})
		return false
	}
	return true
}

// shareToken extracts and shape-checks the {token} path variable.
func shareToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	tok := mux.Vars(r)["token"]
	if !token.Valid(tok) {
		writeValidationFailure(w, []string{"token must be 12 characters from [A-Z0-9]"})
		return "", false
	}
	return tok, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailure(w, details)
		return
	}

	receive := models.TokenPreference{}
	if req.ReceiveToken != nil {
		receive = *req.ReceiveToken
	}

	split, err := s.splits.Create(r.Context(), service.CreateInput{
		Name:           req.Name,
		Description:    req.Description,
		Amount:         req.Amount,
		Participants:   req.Participants,
		CreatorAddress: req.CreatorAddress,
		CreatorChain:   req.CreatorChain,
		ReceiveToken:   receive,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	splitsCreated.Inc()
	writeSplit(w, http.StatusCreated, "split created", split)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	tok, ok := shareToken(w, r)
	if !ok {
		return
	}

	split, err := s.splits.Get(r.Context(), tok)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSplit(w, http.StatusOK, "", split)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	tok, ok := shareToken(w, r)
	if !ok {
		return
	}
	var req JoinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailure(w, details)
		return
	}

	split, err := s.splits.Join(r.Context(), tok, req.Address, req.Chain)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSplit(w, http.StatusOK, "joined split", split)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	tok, ok := shareToken(w, r)
	if !ok {
		return
	}
	var req PayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailure(w, details)
		return
	}

	split, err := s.splits.MarkPaid(r.Context(), tok, req.Address, req.TxReference)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	paymentsRecorded.Inc()
	if split.Status == models.StatusCompleted {
		splitsCompleted.Inc()
	}
	writeSplit(w, http.StatusOK, "payment recorded", split)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	tok, ok := shareToken(w, r)
	if !ok {
		return
	}
	var req CancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailure(w, details)
		return
	}

	split, err := s.splits.Cancel(r.Context(), tok, req.Address)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSplit(w, http.StatusOK, "split cancelled", split)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "ok"})
}
