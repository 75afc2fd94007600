// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a rejected operation.
type Kind uint8

const (
	KindValidation Kind = iota + 1 // malformed input, retry with corrected input
	KindCapacity                   // a bounded queue is full, retry once entries mature or are cancelled
	KindState                      // current state forbids the operation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCapacity:
		return "capacity"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// ErrRevert is a rejected operation. It never leaves partial state behind.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func NewValidation(message string) *ErrRevert { return New(KindValidation, message) }
func NewCapacity(message string) *ErrRevert   { return New(KindCapacity, message) }
func NewState(message string) *ErrRevert      { return New(KindState, message) }

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

var (
	ErrZeroAmount            = NewValidation("amount must be positive")
	ErrZeroHeight            = NewValidation("height must be positive")
	ErrCurrencyMismatch      = NewValidation("currency mismatch")
	ErrInvalidFraction       = NewValidation("slash fraction must be within [0, 1]")
	ErrSameDelegatee         = NewValidation("source and destination delegatee are the same")
	ErrZeroShares            = NewValidation("amount too small to mint any share")
	ErrHeightRegression      = NewValidation("height must be greater than the latest rewards record")
	ErrInvalidJailHeight     = NewValidation("jail release height must be in the future")
	ErrInvalidConfig         = NewValidation("invalid delegatee config")
	ErrHeightOverflow        = NewValidation("maturity height overflows")
	ErrLockInFull            = NewCapacity("unbond lock-in queue is full")
	ErrGraceFull             = NewCapacity("rebond grace queue is full")
	ErrTombstoned            = NewState("delegatee is tombstoned")
	ErrJailed                = NewState("delegatee is jailed")
	ErrUnknownDelegatee      = NewState("delegatee not found")
	ErrDelegateeExists       = NewState("delegatee already exists")
	ErrInsufficientShare     = NewState("insufficient share")
	ErrInsufficientUnbonding = NewState("insufficient unbonding value")
	ErrNotJailed             = NewState("delegatee is not jailed")
	ErrStillJailed           = NewState("delegatee is still jailed")
)

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

func isKind(err error, kind Kind) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.kind == kind
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsCapacity(err error) bool   { return isKind(err, KindCapacity) }
func IsState(err error) bool      { return isKind(err, KindState) }
