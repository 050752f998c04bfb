// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the two hash primitives VisionX uses
// everywhere else in the tree: BLAKE3-256 for general purpose hashing
// (header hashes, merkle roots, transaction IDs) and SipHash-2-4 for
// the 48-bit short IDs used by the compact-block codec.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// HashSize is the size, in bytes, of a hash produced by HashB or HashH.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified
// a hash string that has too many characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is a 32-byte BLAKE3 hash, used for header hashes, merkle roots,
// and transaction IDs throughout the consensus core.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the convention used when displaying block/transaction
// hashes to humans.
func (h Hash) String() string {
	for i := 0; i < HashSize/2; i++ {
		h[i], h[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	hexStr := make([]byte, HashSize*2)
	hex.Encode(hexStr, h[:])
	return string(hexStr)
}

// Bytes returns a copy of the bytes backing the hash.
func (h Hash) Bytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// SetBytes sets the bytes which represent the hash. An error is returned
// if the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	if err := sh.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string, interpreting the
// string as big-endian (human-displayed) hex.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	return ret, err
}

// Decode decodes the human-readable hash string into its destination hash.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}
	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1, len(src)+1)
		srcBytes[0] = '0'
		srcBytes = append(srcBytes, src...)
	}
	var reversedHash Hash
	if _, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes); err != nil {
		return err
	}
	for i, b := range reversedHash[:HashSize/2] {
		reversedHash[i], reversedHash[HashSize-1-i] = reversedHash[HashSize-1-i], b
	}
	*dst = reversedHash
	return nil
}

// HashB returns the BLAKE3-256 digest of the provided data as a raw
// 32-byte slice.
func HashB(b []byte) []byte {
	sum := blake3.Sum256(b)
	return sum[:]
}

// HashH computes the BLAKE3-256 digest of the provided data and returns
// it as a Hash.
func HashH(b []byte) Hash {
	return blake3.Sum256(b)
}

// HashFunc returns a BLAKE3 hasher ready to absorb streamed writes, used
// when the caller does not already have the full input contiguous in
// memory (e.g. merkle tree construction over many leaves).
func HashFunc() *blake3.Hasher {
	return blake3.New()
}
