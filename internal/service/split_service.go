// Package service enforces the split lifecycle state machine. It is the
// only component permitted to construct or mutate Split entities.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitpay/splitpay/internal/calculator"
	"github.com/splitpay/splitpay/internal/models"
	"github.com/splitpay/splitpay/internal/storage"
	"github.com/splitpay/splitpay/internal/token"
)

// tokenAttempts bounds retry-until-unique token generation.
const tokenAttempts = 10

// SplitService implements split creation, joining, payment marking and
// cancellation on top of a storage.Store.
//
// Mutating operations are read-modify-write sequences against the store,
// so mu serializes them: a split is mutated by at most one in-flight
// operation at a time regardless of how many goroutines serve requests.
type SplitService struct {
	store storage.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput carries the already-validated fields for Create. Shape and
// range validation happen at the API layer before this point.
type CreateInput struct {
	Name           string
	Description    string
	Amount         decimal.Decimal
	Participants   int
	CreatorAddress string
	CreatorChain   string
	ReceiveToken   models.TokenPreference
}

// Create constructs a split with the creator as pre-paid first
// participant and persists it. The share token is generated with bounded
// retries against the store's token index.
func (s *SplitService) Create(ctx context.Context, in CreateInput) (*models.Split, error) {
	perPerson, err := calculator.PerPersonAmount(in.Amount, in.Participants)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Msg: "compute per-person amount", Err: err}
	}

	now := s.now()
	split := &models.Split{
		ID:                uuid.New().String(),
		Name:              in.Name,
		Description:       in.Description,
		TotalAmount:       in.Amount,
		ParticipantTarget: in.Participants,
		AmountPerPerson:   perPerson,
		CreatorAddress:    in.CreatorAddress,
		CreatorChain:      in.CreatorChain,
		ReceiveToken:      in.ReceiveToken,
		Status:            models.StatusActive,
		Participants: []models.Participant{
			{
				Address: in.CreatorAddress,
				Chain:   in.CreatorChain,
				Amount:  perPerson,
				Paid:    true,
				PaidAt:  &now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		tok, err := token.New()
		if err != nil {
			return nil, &Error{Kind: KindInternal, Msg: "generate share token", Err: err}
		}
		split.Token = tok

		err = s.store.Put(ctx, split)
		if err == nil {
			slog.Info("Split created",
				"id", split.ID,
				"token", split.Token,
				"amount", split.TotalAmount,
				"participants", split.ParticipantTarget,
			)
			return split, nil
		}
		if errors.Is(err, storage.ErrDuplicateToken) {
			slog.Warn("Share token collision, regenerating", "attempt", attempt+1)
			continue
		}
		return nil, &Error{Kind: KindInternal, Msg: "store split", Err: err}
	}

	return nil, errf(KindTokenSpaceExhausted, "could not generate a unique share token after %d attempts", tokenAttempts)
}

// Get retrieves a split by share token.
func (s *SplitService) Get(ctx context.Context, tok string) (*models.Split, error) {
	split, err := s.store.GetByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errf(KindNotFound, "no split for token %s", tok)
		}
		return nil, &Error{Kind: KindInternal, Msg: "load split", Err: err}
	}
	return split, nil
}

// Join appends a new unpaid participant to an active, non-full split.
// Address comparison is lower-cased at every site.
func (s *SplitService) Join(ctx context.Context, tok, address, chain string) (*models.Split, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.Get(ctx, tok)
	if err != nil {
		return nil, err
	}

	if split.Status != models.StatusActive {
		return nil, errf(KindNotActive, "split is %s", split.Status)
	}
	if split.FindParticipant(address) >= 0 {
		return nil, errf(KindAlreadyJoined, "address %s already joined", address)
	}
	if split.Full() {
		return nil, errf(KindFull, "split already has %d participants", split.ParticipantTarget)
	}

	split.Participants = append(split.Participants, models.Participant{
		Address: address,
		Chain:   chain,
		Amount:  split.AmountPerPerson,
		Paid:    false,
	})
	split.UpdatedAt = s.now()

	if err := s.store.Update(ctx, split); err != nil {
		return nil, &Error{Kind: KindInternal, Msg: "store join", Err: err}
	}

	slog.Info("Participant joined",
		"token", split.Token,
		"address", address,
		"count", len(split.Participants),
		"target", split.ParticipantTarget,
	)
	return split, nil
}

// MarkPaid records a participant's payment exactly once and completes
// the split when the last participant pays.
func (s *SplitService) MarkPaid(ctx context.Context, tok, address, txReference string) (*models.Split, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.Get(ctx, tok)
	if err != nil {
		return nil, err
	}

	if split.Status == models.StatusCancelled {
		return nil, errf(KindNotActive, "split is cancelled")
	}

	idx := split.FindParticipant(address)
	if idx < 0 {
		return nil, errf(KindParticipantNotFound, "address %s is not a participant", address)
	}
	if split.Participants[idx].Paid {
		return nil, errf(KindAlreadyPaid, "address %s already paid", address)
	}

	now := s.now()
	split.Participants[idx].Paid = true
	split.Participants[idx].PaidAt = &now
	split.Participants[idx].TxReference = txReference
	split.UpdatedAt = now

	if split.PaidCount() == len(split.Participants) {
		split.Status = models.StatusCompleted
		slog.Info("Split completed", "token", split.Token, "id", split.ID)
	}

	if err := s.store.Update(ctx, split); err != nil {
		return nil, &Error{Kind: KindInternal, Msg: "store payment", Err: err}
	}

	slog.Info("Payment recorded",
		"token", split.Token,
		"address", address,
		"tx", txReference,
		"status", split.Status,
	)
	return split, nil
}

// Cancel moves an active split to the cancelled terminal state. Only the
// creator may cancel.
func (s *SplitService) Cancel(ctx context.Context, tok, requesterAddress string) (*models.Split, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	split, err := s.Get(ctx, tok)
	if err != nil {
		return nil, err
	}

	if split.Status != models.StatusActive {
		return nil, errf(KindNotActive, "split is %s", split.Status)
	}
	if !strings.EqualFold(split.CreatorAddress, requesterAddress) {
		return nil, errf(KindNotCreator, "only the creator may cancel")
	}

	split.Status = models.StatusCancelled
	split.UpdatedAt = s.now()

	if err := s.store.Update(ctx, split); err != nil {
		return nil, &Error{Kind: KindInternal, Msg: "store cancel", Err: err}
	}

	slog.Info("Split cancelled", "token", split.Token, "id", split.ID)
	return split, nil
}

// Status returns the derived payment progress of a split.
func (s *SplitService) Status(ctx context.Context, tok string) (calculator.PaymentStatus, error) {
	split, err := s.Get(ctx, tok)
	if err != nil {
		return calculator.PaymentStatus{}, err
	}
	return calculator.Progress(split), nil
}
