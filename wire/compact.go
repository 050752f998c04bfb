// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/visionx-network/visionx/chainhash"
)

const maxCompactPrefilled = 1 << 16
const maxCompactShortIDs = 1 << 20

// PrefilledTx is a full transaction embedded directly in a compact
// block, addressed by its position in the original block's transaction
// list.
type PrefilledTx struct {
	Index uint32
	Tx    Tx
}

// MsgBlockAnnouncement is the compact-block announcement: a header, a
// random per-block nonce used to key short IDs, a handful of prefilled
// transactions (typically just the coinbase), and the short IDs of
// everything else.
type MsgBlockAnnouncement struct {
	Header    BlockHeader
	Nonce     uint64
	Prefilled []PrefilledTx
	ShortIDs  []uint64 // low 48 bits significant
}

// Tag implements Message.
func (m *MsgBlockAnnouncement) Tag() MessageTag { return TagBlockAnnouncement }

// BtcEncode implements Message.
func (m *MsgBlockAnnouncement) BtcEncode(w io.Writer) error {
	if err := writeFixedBytes(w, m.Header.Serialize()); err != nil {
		return err
	}
	if err := writeUint64(w, m.Nonce); err != nil {
		return err
	}
	if err := writeVarCount(w, len(m.Prefilled)); err != nil {
		return err
	}
	for _, p := range m.Prefilled {
		if err := writeUint32(w, p.Index); err != nil {
			return err
		}
		if err := encodeTx(w, p.Tx); err != nil {
			return err
		}
	}
	if err := writeVarCount(w, len(m.ShortIDs)); err != nil {
		return err
	}
	for _, id := range m.ShortIDs {
		var b [6]byte
		for i := 0; i < 6; i++ {
			b[i] = byte(id >> (8 * i))
		}
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgBlockAnnouncement) BtcDecode(r io.Reader) error {
	hbuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hbuf); err != nil {
		return err
	}
	h, err := DeserializeHeader(hbuf)
	if err != nil {
		return err
	}
	m.Header = *h

	if m.Nonce, err = readUint64(r); err != nil {
		return err
	}

	prefilledCount, err := readVarCount(r, maxCompactPrefilled, "compact.prefilled")
	if err != nil {
		return err
	}
	m.Prefilled = make([]PrefilledTx, prefilledCount)
	for i := range m.Prefilled {
		idx, err := readUint32(r)
		if err != nil {
			return err
		}
		tx, err := decodeTx(r)
		if err != nil {
			return err
		}
		m.Prefilled[i] = PrefilledTx{Index: idx, Tx: tx}
	}

	shortIDCount, err := readVarCount(r, maxCompactShortIDs, "compact.shortids")
	if err != nil {
		return err
	}
	m.ShortIDs = make([]uint64, shortIDCount)
	var b [6]byte
	for i := range m.ShortIDs {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		var id uint64
		for j := 5; j >= 0; j-- {
			id = (id << 8) | uint64(b[j])
		}
		m.ShortIDs[i] = id
	}
	return nil
}

// MsgGetBlockTxns asks the announcer for the full transactions at the
// listed indices within the block it just announced.
type MsgGetBlockTxns struct {
	BlockHash chainhash.Hash
	Indices   []uint32
}

// Tag implements Message.
func (m *MsgGetBlockTxns) Tag() MessageTag { return TagGetBlockTxns }

// BtcEncode implements Message.
func (m *MsgGetBlockTxns) BtcEncode(w io.Writer) error {
	if err := writeHash(w, m.BlockHash); err != nil {
		return err
	}
	if err := writeVarCount(w, len(m.Indices)); err != nil {
		return err
	}
	for _, idx := range m.Indices {
		if err := writeUint32(w, idx); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgGetBlockTxns) BtcDecode(r io.Reader) error {
	var err error
	if m.BlockHash, err = readHash(r); err != nil {
		return err
	}
	n, err := readVarCount(r, maxTxsPerBlockMsg, "getblocktxns.indices")
	if err != nil {
		return err
	}
	m.Indices = make([]uint32, n)
	for i := range m.Indices {
		if m.Indices[i], err = readUint32(r); err != nil {
			return err
		}
	}
	return nil
}

// MsgBlockTxns answers MsgGetBlockTxns with the requested transactions,
// in the same order as the requested indices.
type MsgBlockTxns struct {
	BlockHash    chainhash.Hash
	Indices      []uint32
	Transactions []Tx
}

// Tag implements Message.
func (m *MsgBlockTxns) Tag() MessageTag { return TagBlockTxns }

// BtcEncode implements Message.
func (m *MsgBlockTxns) BtcEncode(w io.Writer) error {
	if err := writeHash(w, m.BlockHash); err != nil {
		return err
	}
	if len(m.Indices) != len(m.Transactions) {
		return messageError("MsgBlockTxns.BtcEncode", "indices/transactions length mismatch")
	}
	if err := writeVarCount(w, len(m.Indices)); err != nil {
		return err
	}
	for i, idx := range m.Indices {
		if err := writeUint32(w, idx); err != nil {
			return err
		}
		if err := encodeTx(w, m.Transactions[i]); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgBlockTxns) BtcDecode(r io.Reader) error {
	var err error
	if m.BlockHash, err = readHash(r); err != nil {
		return err
	}
	n, err := readVarCount(r, maxTxsPerBlockMsg, "blocktxns")
	if err != nil {
		return err
	}
	m.Indices = make([]uint32, n)
	m.Transactions = make([]Tx, n)
	for i := range m.Indices {
		if m.Indices[i], err = readUint32(r); err != nil {
			return err
		}
		if m.Transactions[i], err = decodeTx(r); err != nil {
			return err
		}
	}
	return nil
}

// BuildCompactBlock assembles a compact-block announcement for block
// using nonce as the SipHash key seed. indices selects which positions
// in block.Transactions are sent in full (prefilled) rather than as
// short IDs; callers typically prefill at least the coinbase (index 0)
// plus any transaction they believe the receiver's mempool lacks.
func BuildCompactBlock(block *Block, nonce uint64, prefillIndices map[int]bool) *MsgBlockAnnouncement {
	cb := &MsgBlockAnnouncement{
		Header: block.Header,
		Nonce:  nonce,
	}
	for i, tx := range block.Transactions {
		if prefillIndices[i] {
			cb.Prefilled = append(cb.Prefilled, PrefilledTx{Index: uint32(i), Tx: tx})
			continue
		}
		cb.ShortIDs = append(cb.ShortIDs, chainhash.ShortID(nonce, tx.ID))
	}
	return cb
}

// MempoolLookup is the minimal external collaborator compact-block
// reconstruction needs from the local mempool.
type MempoolLookup interface {
	ForEach(fn func(id chainhash.Hash, tx Tx))
}

// ErrCompactBlockMissing indicates one or more short IDs could not be
// resolved from the local mempool and a GetBlockTxns round trip is
// required.
type ErrCompactBlockMissing struct {
	MissingIndices []uint32
}

func (e *ErrCompactBlockMissing) Error() string {
	return fmt.Sprintf("wire: %d short IDs unresolved", len(e.MissingIndices))
}

// Reconstruct rebuilds the full block a compact announcement describes,
// resolving short IDs against the supplied mempool. On success it
// returns the full block with header_hash equal to the announcement's
//. On a missing short ID or a collision
// between two mempool transactions claiming the same short ID at the
// same position, it returns *ErrCompactBlockMissing listing every
// unresolved index so the caller can fall back to MsgGetBlockTxns.
func Reconstruct(cb *MsgBlockAnnouncement, mempool MempoolLookup) (*Block, error) {
	total := len(cb.Prefilled) + len(cb.ShortIDs)
	slots := make([]*Tx, total)
	for _, p := range cb.Prefilled {
		if int(p.Index) >= total {
			return nil, messageError("Reconstruct", "prefilled index out of range")
		}
		tx := p.Tx
		slots[p.Index] = &tx
	}

	// The short IDs fill the slots a prefilled transaction didn't, in
	// block order.
	shortIDSlots := make([]int, 0, len(cb.ShortIDs))
	for i := 0; i < total; i++ {
		if slots[i] == nil {
			shortIDSlots = append(shortIDSlots, i)
		}
	}
	if len(shortIDSlots) != len(cb.ShortIDs) {
		return nil, messageError("Reconstruct", "short ID count does not fill remaining slots")
	}

	// Index every mempool transaction by its short ID under this
	// block's key; a short ID claimed by more than one distinct
	// mempool transaction is a collision at every slot that wants it.
	candidates := make(map[uint64][]Tx)
	mempool.ForEach(func(id chainhash.Hash, tx Tx) {
		sid := chainhash.ShortID(cb.Nonce, id)
		candidates[sid] = append(candidates[sid], Tx{ID: id, SizeBytes: tx.SizeBytes})
	})

	var missing []uint32
	for slotPos, idx := range shortIDSlots {
		matches := candidates[cb.ShortIDs[slotPos]]
		switch len(matches) {
		case 0:
			missing = append(missing, uint32(idx))
		case 1:
			tx := matches[0]
			slots[idx] = &tx
		default:
			missing = append(missing, uint32(idx))
		}
	}
	if len(missing) > 0 {
		return nil, &ErrCompactBlockMissing{MissingIndices: missing}
	}

	txs := make([]Tx, total)
	for i, s := range slots {
		if s == nil {
			return nil, messageError("Reconstruct", "unfilled slot after resolution")
		}
		txs[i] = *s
	}

	block := &Block{Header: cb.Header, Transactions: txs}
	if block.HeaderHash() != cb.Header.HeaderHash() {
		return nil, messageError("Reconstruct", "reconstructed header_hash mismatch")
	}
	return block, nil
}

// ApplyBlockTxns merges a BlockTxns reply back into a partially
// reconstructed block's transaction slice, used after a GetBlockTxns
// round trip resolves the previously-missing indices.
func ApplyBlockTxns(cb *MsgBlockAnnouncement, resolved *MsgBlockTxns) (*Block, error) {
	total := len(cb.Prefilled) + len(cb.ShortIDs)
	slots := make([]*Tx, total)
	for _, p := range cb.Prefilled {
		tx := p.Tx
		slots[p.Index] = &tx
	}
	for i, idx := range resolved.Indices {
		tx := resolved.Transactions[i]
		slots[idx] = &tx
	}
	txs := make([]Tx, total)
	for i, s := range slots {
		if s == nil {
			return nil, messageError("ApplyBlockTxns", "unresolved index after BlockTxns reply")
		}
		txs[i] = *s
	}
	block := &Block{Header: cb.Header, Transactions: txs}
	if block.HeaderHash() != cb.Header.HeaderHash() {
		return nil, messageError("ApplyBlockTxns", "reconstructed header_hash mismatch")
	}
	return block, nil
}
