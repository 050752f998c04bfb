// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/visionx-network/visionx/wire"
)

// Broadcaster is the external collaborator the block submitter hands a
// freshly-accepted block to for relay; the P2P transport layer
// satisfies it by building and gossiping a compact-block announcement.
type Broadcaster interface {
	BroadcastBlock(block *wire.Block) error
}

// Submitter is the single entry point a miner manager or an inbound
// block-relay handler calls to get a candidate block into the chain.
type Submitter struct {
	chain       *Chain
	broadcaster Broadcaster
}

// NewSubmitter builds a Submitter over chain, relaying newly accepted
// blocks through broadcaster.
func NewSubmitter(chain *Chain, broadcaster Broadcaster) *Submitter {
	return &Submitter{chain: chain, broadcaster: broadcaster}
}

// Submit validates and applies block via the Chain, then broadcasts it
// on success. deedHolders and fees are only consulted when block falls
// in the Staking phase; callers in the Mining phase may pass nil/0.
func (s *Submitter) Submit(block *wire.Block, now uint64, deedHolders []wire.Address, fees uint64) (*AcceptResult, error) {
	result, err := s.chain.AcceptBlock(block, now, deedHolders, fees)
	if err != nil {
		log.Debugf("rejected block at height %d: %v", block.Header.Height, err)
		return nil, err
	}

	log.Infof("accepted block %s at height %d (%s phase)", result.Hash, result.Height, result.Phase)

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastBlock(block); err != nil {
			log.Warnf("failed to broadcast accepted block %s: %v", result.Hash, err)
		}
	}

	return result, nil
}
