// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"

	"github.com/visionx-network/visionx/chainhash"
)

// Address is a 32-byte account identifier used everywhere outside the
// header's packed 120-byte layout: balances, nonces, deed ownership,
// and the foundation addresses.
type Address [32]byte

// Tx is the consensus core's minimal, opaque view of a transaction: the
// rest of a transaction's structure (inputs, outputs, signatures) is
// owned by the external transaction subsystem.
type Tx struct {
	ID        chainhash.Hash
	SizeBytes uint32
}

// Block is a header plus its ordered transaction list. Blocks are
// immutable once accepted.
type Block struct {
	Header       BlockHeader
	Transactions []Tx
}

// TxIDs returns the ordered transaction IDs of the block, the leaves fed
// into MerkleRoot.
func (b *Block) TxIDs() []chainhash.Hash {
	ids := make([]chainhash.Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		ids[i] = tx.ID
	}
	return ids
}

// MerkleRoot computes the BLAKE3 merkle root over a list of transaction
// IDs, duplicating the last element whenever a level has an odd number
// of nodes. The empty-list root is the all-zero
// hash, matching the convention used for an as-yet-empty mining job
// template.
func MerkleRoot(ids []chainhash.Hash) chainhash.Hash {
	if len(ids) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(ids))
	copy(level, ids)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			pair := make([]byte, 0, chainhash.HashSize*2)
			pair = append(pair, level[2*i][:]...)
			pair = append(pair, level[2*i+1][:]...)
			next[i] = chainhash.HashH(pair)
		}
		level = next
	}
	return level[0]
}

// ComputeTransactionsRoot fills in and returns the block header's
// transactions_root from its current transaction list.
func (b *Block) ComputeTransactionsRoot() chainhash.Hash {
	root := MerkleRoot(b.TxIDs())
	b.Header.TransactionsRoot = root
	return root
}

// HeaderHash returns the block's header hash.
func (b *Block) HeaderHash() chainhash.Hash {
	return b.Header.HeaderHash()
}

// IsGenesis reports whether the block is a height-0 genesis block: its
// prev_hash must be the all-zero hash.
func (b *Block) IsGenesis() bool {
	return b.Header.Height == 0 && b.Header.PrevHash == (chainhash.Hash{})
}

// EncodeBlock serializes b (header plus full transaction list) into its
// canonical at-rest representation, reusing the same codec MsgBlock
// uses to relay a block over the peer-to-peer wire.
func EncodeBlock(b *Block) ([]byte, error) {
	var buf bytes.Buffer
	msg := MsgBlock{Block: *b}
	if err := msg.BtcEncode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBlock parses the at-rest representation produced by
// EncodeBlock.
func DecodeBlock(data []byte) (*Block, error) {
	var msg MsgBlock
	if err := msg.BtcDecode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &msg.Block, nil
}

// EncodeTx serializes a single transaction record into the same
// at-rest representation MsgBlock writes inline for each of a block's
// transactions.
func EncodeTx(tx Tx) []byte {
	var buf bytes.Buffer
	// writeHash/writeUint32 only fail on a write error, which a
	// bytes.Buffer never produces.
	_ = encodeTx(&buf, tx)
	return buf.Bytes()
}

// DecodeTx parses the at-rest representation produced by EncodeTx.
func DecodeTx(data []byte) (Tx, error) {
	return decodeTx(bytes.NewReader(data))
}
