package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SplitStatus is the lifecycle state of a Split.
type SplitStatus string

const (
	// StatusActive accepts joins and payments.
	StatusActive SplitStatus = "active"

	// StatusCompleted is terminal; set automatically when the last
	// participant is marked paid.
	StatusCompleted SplitStatus = "completed"

	// StatusCancelled is terminal; set by an explicit creator-initiated
	// cancel while the split is still active.
	StatusCancelled SplitStatus = "cancelled"
)

// Terminal reports whether no further mutation is allowed.
func (s SplitStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TokenPreference describes the asset the creator wants to receive.
// A zero value means the native asset of the creator's chain.
type TokenPreference struct {
	// Address is the token contract address, empty for the native asset.
	Address string `json:"address,omitempty"`

	// Symbol is the display symbol (e.g. "USDC").
	Symbol string `json:"symbol,omitempty"`

	// Decimals is the token's decimal precision.
	Decimals int `json:"decimals,omitempty"`
}

// Native reports whether the preference is the chain's native asset.
func (p TokenPreference) Native() bool {
	return p.Address == ""
}

// Split represents a shared expense to be collected from a fixed number
// of participants.
type Split struct {
	// ID is the opaque internal identifier (UUID format), immutable.
	ID string `json:"id"`

	// Token is the human-shareable identifier: 12 characters from
	// [A-Z0-9], unique within the store, immutable.
	Token string `json:"token"`

	// Name is the display name (non-empty, at most 100 characters).
	Name string `json:"name"`

	// Description is optional free text (at most 500 characters).
	Description string `json:"description,omitempty"`

	// TotalAmount is the full amount to collect, strictly positive.
	TotalAmount decimal.Decimal `json:"totalAmount"`

	// ParticipantTarget is how many people split the amount, 2-50
	// inclusive, fixed at creation.
	ParticipantTarget int `json:"participantTarget"`

	// AmountPerPerson is TotalAmount / ParticipantTarget, computed once
	// at creation and never recomputed.
	AmountPerPerson decimal.Decimal `json:"amountPerPerson"`

	// CreatorAddress is the chain account of the creator, who is assumed
	// to have funded the full amount upfront.
	CreatorAddress string `json:"creatorAddress"`

	// CreatorChain identifies the chain the creator wants to be paid on.
	CreatorChain string `json:"creatorChain"`

	// ReceiveToken is the asset the creator wants to receive.
	ReceiveToken TokenPreference `json:"receiveToken"`

	// Status is the lifecycle state.
	Status SplitStatus `json:"status"`

	// Participants is insertion-ordered; the first entry is always the
	// creator, pre-marked paid. Length never exceeds ParticipantTarget.
	Participants []Participant `json:"participants"`

	// CreatedAt is set at construction, immutable.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is bumped on every mutating operation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Participant is one payer's entry inside a Split.
type Participant struct {
	// Address is the chain account, unique within the split's list.
	Address string `json:"address"`

	// Chain identifies the network the participant pays from.
	Chain string `json:"chain"`

	// Amount is the share owed, copied from the split's AmountPerPerson
	// at join time.
	Amount decimal.Decimal `json:"amount"`

	// Paid flips false->true exactly once and never reverts.
	Paid bool `json:"paid"`

	// PaidAt is nil until Paid flips.
	PaidAt *time.Time `json:"paidAt,omitempty"`

	// TxReference is an optional free-form reference to the payment
	// transaction, recorded when the payment is marked.
	TxReference string `json:"txReference,omitempty"`
}

// FindParticipant returns the index of the participant with the given
// address, comparing lower-cased forms, or -1 if absent.
func (s *Split) FindParticipant(address string) int {
	want := strings.ToLower(address)
	for i := range s.Participants {
		if strings.ToLower(s.Participants[i].Address) == want {
			return i
		}
	}
	return -1
}

// PaidCount returns how many participants have paid.
func (s *Split) PaidCount() int {
	n := 0
	for i := range s.Participants {
		if s.Participants[i].Paid {
			n++
		}
	}
	return n
}

// Full reports whether the participant list has reached the target.
func (s *Split) Full() bool {
	return len(s.Participants) >= s.ParticipantTarget
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Split) Clone() *Split {
	out := *s
	out.Participants = make([]Participant, len(s.Participants))
	copy(out.Participants, s.Participants)
	for i := range out.Participants {
		if p := s.Participants[i].PaidAt; p != nil {
			t := *p
			out.Participants[i].PaidAt = &t
		}
	}
	return &out
}
