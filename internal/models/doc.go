// Package models defines the core domain models for Split Pay.
//
// # Models
//
//   - Split: a shared expense, addressable by a human-shareable token
//   - Participant: one payer's entry inside a Split
//   - TokenPreference: the asset the creator wants to be paid in
//
// Participants are identified by chain account addresses (0x-prefixed hex).
// Address comparison is always performed on the lower-cased form; the models
// store addresses as received so checksum casing survives for display.
//
// # Design Principles
//
//  1. **Money is decimal**: amounts use shopspring/decimal, never floats
//  2. **Splits are self-contained**: participants are nested value records,
//     not independently addressable entities
//  3. **Mutation lives in the service layer**: models carry data and pure
//     derived views only
package models
