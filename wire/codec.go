// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/visionx-network/visionx/chainhash"
)

// messageError is a convenience function to create a wire error with the
// caller's function name and a formatted message, mirroring the
// teacher's wire package error style.
func messageError(fn, desc string) error {
	return fmt.Errorf("wire: %s: %s", fn, desc)
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func writeHash(w io.Writer, h chainhash.Hash) error {
	_, err := w.Write(h[:])
	return err
}

func readHash(r io.Reader) (chainhash.Hash, error) {
	var h chainhash.Hash
	_, err := io.ReadFull(r, h[:])
	return h, err
}

func writeFixedBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// writeVarBytes writes a u32-le length prefix followed by the bytes
// themselves, the canonical "length-prefixed byte strings" encoding
// every variable-length field in this package uses.
func writeVarBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// readVarBytes reads a length-prefixed byte string, rejecting anything
// larger than maxSize to bound memory use on malformed or hostile input.
func readVarBytes(r io.Reader, maxSize uint32, fieldName string) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > maxSize {
		return nil, messageError("readVarBytes",
			fmt.Sprintf("%s length %d exceeds max of %d", fieldName, n, maxSize))
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// writeVarCount writes a u32-le vector count, the canonical "vectors
// tagged by u32-le count" encoding every variable-length list in this
// package uses.
func writeVarCount(w io.Writer, n int) error {
	return writeUint32(w, uint32(n))
}

func readVarCount(r io.Reader, maxCount uint32, fieldName string) (uint32, error) {
	n, err := readUint32(r)
	if err != nil {
		return 0, err
	}
	if n > maxCount {
		return 0, messageError("readVarCount",
			fmt.Sprintf("%s count %d exceeds max of %d", fieldName, n, maxCount))
	}
	return n, nil
}
