// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

// ErrorCode identifies a consensus rule violation.
type ErrorCode int

const (
	// ErrInvalidDifficultyBits indicates a block's difficulty field does
	// not match the value the LWMA-120 controller requires.
	ErrInvalidDifficultyBits ErrorCode = iota

	// ErrHighHash indicates a block's PoW digest does not meet the
	// target implied by its difficulty.
	ErrHighHash

	// ErrReorgDepthExceeded indicates a competing chain would require
	// reorganizing more than MaxReorgDepth blocks.
	ErrReorgDepthExceeded

	// ErrTimeTooNew indicates a block's timestamp is too far ahead of
	// the local clock.
	ErrTimeTooNew

	// ErrTimeTooOld indicates a block's timestamp does not exceed the
	// median time of the preceding MTPSpan blocks, or lags the local
	// clock by more than MaxTimeDrift.
	ErrTimeTooOld

	// ErrBadPrevHash indicates a block's prev_hash does not match its
	// parent's header hash.
	ErrBadPrevHash

	// ErrBadMerkleRoot indicates a block's transactions_root does not
	// match the merkle root recomputed over its transaction list.
	ErrBadMerkleRoot

	// ErrBadHeight indicates a block's height is not exactly one more
	// than its parent's.
	ErrBadHeight

	// ErrCashGenesisReplay indicates an attempt to apply the one-shot
	// CASH genesis ledger a second time.
	ErrCashGenesisReplay

	// ErrTitheSplitInvalid indicates a configured tithe split does not
	// sum to 10000 basis points.
	ErrTitheSplitInvalid

	// ErrTestnetSunset indicates the chain has reached its configured
	// testnet sunset height and refuses to extend further.
	ErrTestnetSunset

	// ErrBlockOneTx indicates block one's coinbase does not satisfy the
	// CASH genesis ledger's structural requirements.
	ErrBlockOneTx

	// ErrBlockOneInputs indicates block one's coinbase input is
	// malformed.
	ErrBlockOneInputs

	// ErrBlockOneOutputs indicates block one's coinbase outputs do not
	// match the configured ledger.
	ErrBlockOneOutputs

	// ErrDuplicateBlock indicates a block with this hash has already
	// been accepted, on the active chain or a side chain.
	ErrDuplicateBlock

	// ErrMissingParent indicates a block's prev_hash does not reference
	// any block this node has previously accepted.
	ErrMissingParent
)

var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidDifficultyBits: "ErrInvalidDifficultyBits",
	ErrHighHash:              "ErrHighHash",
	ErrReorgDepthExceeded:    "ErrReorgDepthExceeded",
	ErrTimeTooNew:            "ErrTimeTooNew",
	ErrTimeTooOld:            "ErrTimeTooOld",
	ErrBadPrevHash:           "ErrBadPrevHash",
	ErrBadMerkleRoot:         "ErrBadMerkleRoot",
	ErrBadHeight:             "ErrBadHeight",
	ErrCashGenesisReplay:     "ErrCashGenesisReplay",
	ErrTitheSplitInvalid:     "ErrTitheSplitInvalid",
	ErrTestnetSunset:         "ErrTestnetSunset",
	ErrBlockOneTx:            "ErrBlockOneTx",
	ErrBlockOneInputs:        "ErrBlockOneInputs",
	ErrBlockOneOutputs:       "ErrBlockOneOutputs",
	ErrDuplicateBlock:        "ErrDuplicateBlock",
	ErrMissingParent:         "ErrMissingParent",
}

// String returns the ErrorCode's human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return "ErrorCode(unknown)"
}

// RuleError identifies a rejected block or header along with the
// specific consensus rule it violated.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
