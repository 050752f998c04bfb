// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the canonical block/header encoding, the
// compact-block codec, and the peer-to-peer message framing VisionX
// nodes speak to each other.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/visionx-network/visionx/chainhash"
)

// HeaderSize is the fixed, packed, little-endian length of a canonical
// block header.
const HeaderSize = 120

// NonceOffset is the fixed byte offset of the nonce field within a
// canonical header, letting miners rewrite only the nonce between
// hashing attempts without re-serializing the rest of the header.
const NonceOffset = 60

// MinerAddressSize is the width of the miner_address field. The fixed
// 120-byte header total and the nonce_offset=60 contract only leave
// room for a 20-byte address after version+height+prev_hash+timestamp+
// difficulty+nonce+transactions_root, so the wire-level byte layout
// wins over a looser "32B" description elsewhere (see DESIGN.md).
const MinerAddressSize = 20

// BlockHeader is the fixed-layout consensus header.
type BlockHeader struct {
	Version          uint32
	Height           uint64
	PrevHash         chainhash.Hash
	Timestamp        uint64 // seconds since Unix epoch
	Difficulty       uint64
	Nonce            uint64
	TransactionsRoot chainhash.Hash
	MinerAddress     [MinerAddressSize]byte
}

// headerBytes serializes the header into its 120-byte canonical
// little-endian form, with the nonce at NonceOffset:
// version(4) ‖ height(8) ‖ prev_hash(32) ‖ timestamp(8) ‖ difficulty(8) ‖
// nonce(8) ‖ transactions_root(32) ‖ miner_address(20).
func (h *BlockHeader) headerBytes() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Version)
	binary.LittleEndian.PutUint64(buf[4:12], h.Height)
	copy(buf[12:44], h.PrevHash[:])
	binary.LittleEndian.PutUint64(buf[44:52], h.Timestamp)
	binary.LittleEndian.PutUint64(buf[52:60], h.Difficulty)
	binary.LittleEndian.PutUint64(buf[60:68], h.Nonce)
	copy(buf[68:100], h.TransactionsRoot[:])
	copy(buf[100:120], h.MinerAddress[:])
	return buf
}

// Serialize returns the canonical encoding of the header.
func (h *BlockHeader) Serialize() []byte {
	return h.headerBytes()
}

// DeserializeHeader parses a canonical header.
func DeserializeHeader(b []byte) (*BlockHeader, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("wire: invalid header length %d, want %d", len(b), HeaderSize)
	}
	h := &BlockHeader{}
	h.Version = binary.LittleEndian.Uint32(b[0:4])
	h.Height = binary.LittleEndian.Uint64(b[4:12])
	copy(h.PrevHash[:], b[12:44])
	h.Timestamp = binary.LittleEndian.Uint64(b[44:52])
	h.Difficulty = binary.LittleEndian.Uint64(b[52:60])
	h.Nonce = binary.LittleEndian.Uint64(b[60:68])
	copy(h.TransactionsRoot[:], b[68:100])
	copy(h.MinerAddress[:], b[100:120])
	return h, nil
}

// SetNonce rewrites only the nonce field of an already-serialized
// canonical header in place, which is the operation the miner hot loop
// performs on every attempt instead of re-serializing the whole header.
func SetNonce(header []byte, nonce uint64) {
	binary.LittleEndian.PutUint64(header[NonceOffset:NonceOffset+8], nonce)
}

// HeaderHash returns BLAKE3(canonical_header), distinct from the
// VisionX PoW digest.
func (h *BlockHeader) HeaderHash() chainhash.Hash {
	return chainhash.HashH(h.headerBytes())
}
