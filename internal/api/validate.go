package api

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/splitpay/splitpay/internal/models"
)

// Participant target bounds are inclusive. Name and description limits
// are counted in runes, not bytes.
const (
	minParticipants = 2
	maxParticipants = 50

	maxNameLen        = 100
	maxDescriptionLen = 500
)

// addressPattern matches a 0x-prefixed 40-hex-digit chain account.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// CreateRequest is the input shape for split creation.
type CreateRequest struct {
	Name           string                  `json:"name"`
	Amount         decimal.Decimal         `json:"amount"`
	Participants   int                     `json:"participants"`
	Description    string                  `json:"description,omitempty"`
	CreatorAddress string                  `json:"creatorAddress"`
	CreatorChain   string                  `json:"creatorChain"`
	ReceiveToken   *models.TokenPreference `json:"receiveToken,omitempty"`
}

// validate returns every shape problem; an empty slice means the request
// may reach the lifecycle service.
func (r *CreateRequest) validate() []string {
	var details []string
	if r.Name == "" {
		details = append(details, "name must not be empty")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLen {
		details = append(details, fmt.Sprintf("name must be at most %d characters", maxNameLen))
	}
	if !r.Amount.IsPositive() {
		details = append(details, "amount must be a positive number")
	}
	if r.Participants < minParticipants || r.Participants > maxParticipants {
		details = append(details, fmt.Sprintf("participants must be between %d and %d", minParticipants, maxParticipants))
	}
	if utf8.RuneCountInString(r.Description) > maxDescriptionLen {
		details = append(details, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if !addressPattern.MatchString(r.CreatorAddress) {
		details = append(details, "creatorAddress must be a 0x-prefixed 40-hex-digit address")
	}
	if r.CreatorChain == "" {
		details = append(details, "creatorChain must not be empty")
	}
	return details
}

// JoinRequest is the input shape for joining a split.
type JoinRequest struct {
	Address string `json:"address"`
	Chain   string `json:"chain"`
}

func (r *JoinRequest) validate() []string {
	var details []string
	if !addressPattern.MatchString(r.Address) {
		details = append(details, "address must be a 0x-prefixed 40-hex-digit address")
	}
	if r.Chain == "" {
		details = append(details, "chain must not be empty")
	}
	return details
}

// PayRequest is the input shape for marking a participant paid.
type PayRequest struct {
	Address     string `json:"address"`
	TxReference string `json:"txReference,omitempty"`
}

func (r *PayRequest) validate() []string {
	var details []string
	if !addressPattern.MatchString(r.Address) {
		details = append(details, "address must be a 0x-prefixed 40-hex-digit address")
	}
	return details
}

// CancelRequest is the input shape for cancelling a split.
type CancelRequest struct {
	Address string `json:"address"`
}

func (r *CancelRequest) validate() []string {
	var details []string
	if !addressPattern.MatchString(r.Address) {
		details = append(details, "address must be a 0x-prefixed 40-hex-digit address")
	}
	return details
}
