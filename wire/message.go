// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
)

// Consensus-fixed transport limits.
const (
	// MaxMessagePayload is the largest payload any non-handshake
	// message may carry.
	MaxMessagePayload = 10 * 1024 * 1024

	// MaxHandshakePayload bounds the handshake message specifically,
	// since it is exchanged before either side trusts the other.
	MaxHandshakePayload = 10 * 1024

	// frameLengthSize is the width of the big-endian length prefix
	// that precedes every framed message.
	frameLengthSize = 4
)

// MessageTag identifies the payload type and is always the leading byte
// of a framed message's payload.
type MessageTag uint8

// Message tag catalogue.
const (
	TagHandshake MessageTag = iota
	TagPing
	TagPong
	TagGetPeers
	TagPeerList
	TagBlockAnnouncement // compact block
	TagGetBlockTxns
	TagBlockTxns
	TagGetHeaders
	TagHeaders
	TagGetBlock
	TagBlock
	TagTx
	TagGetMempool
	TagMempool
)

func (t MessageTag) String() string {
	switch t {
	case TagHandshake:
		return "handshake"
	case TagPing:
		return "ping"
	case TagPong:
		return "pong"
	case TagGetPeers:
		return "getpeers"
	case TagPeerList:
		return "peerlist"
	case TagBlockAnnouncement:
		return "blockannouncement"
	case TagGetBlockTxns:
		return "getblocktxns"
	case TagBlockTxns:
		return "blocktxns"
	case TagGetHeaders:
		return "getheaders"
	case TagHeaders:
		return "headers"
	case TagGetBlock:
		return "getblock"
	case TagBlock:
		return "block"
	case TagTx:
		return "tx"
	case TagGetMempool:
		return "getmempool"
	case TagMempool:
		return "mempool"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Message is implemented by every wire payload type. BtcEncode/BtcDecode
// keep the btcsuite-derived naming convention even though the transport
// isn't Bitcoin's.
type Message interface {
	Tag() MessageTag
	BtcEncode(w io.Writer) error
	BtcDecode(r io.Reader) error
}

// newMessageForTag returns a zero-value Message for the given tag so
// ReadMessage can dispatch into it, or an error if the tag is unknown —
// an unrecognized tag is a protocol violation.
func newMessageForTag(tag MessageTag) (Message, error) {
	switch tag {
	case TagHandshake:
		return &MsgHandshake{}, nil
	case TagPing:
		return &MsgPing{}, nil
	case TagPong:
		return &MsgPong{}, nil
	case TagGetPeers:
		return &MsgGetPeers{}, nil
	case TagPeerList:
		return &MsgPeerList{}, nil
	case TagBlockAnnouncement:
		return &MsgBlockAnnouncement{}, nil
	case TagGetBlockTxns:
		return &MsgGetBlockTxns{}, nil
	case TagBlockTxns:
		return &MsgBlockTxns{}, nil
	case TagGetHeaders:
		return &MsgGetHeaders{}, nil
	case TagHeaders:
		return &MsgHeaders{}, nil
	case TagGetBlock:
		return &MsgGetBlock{}, nil
	case TagBlock:
		return &MsgBlock{}, nil
	case TagTx:
		return &MsgTx{}, nil
	case TagGetMempool:
		return &MsgGetMempool{}, nil
	case TagMempool:
		return &MsgMempool{}, nil
	default:
		return nil, messageError("newMessageForTag", fmt.Sprintf("unknown tag %d", tag))
	}
}

// WriteMessage frames msg as [u32-be length][u8 tag][payload] and writes
// it to w.
func WriteMessage(w io.Writer, msg Message) error {
	var payload bytes.Buffer
	payload.WriteByte(byte(msg.Tag()))
	if err := msg.BtcEncode(&payload); err != nil {
		return err
	}

	maxAllowed := uint32(MaxMessagePayload)
	if msg.Tag() == TagHandshake {
		maxAllowed = MaxHandshakePayload
	}
	if uint32(payload.Len()) > maxAllowed {
		return messageError("WriteMessage",
			fmt.Sprintf("payload of %d bytes exceeds max of %d for %s",
				payload.Len(), maxAllowed, msg.Tag()))
	}

	lenBuf := make([]byte, frameLengthSize)
	putUint32BE(lenBuf, uint32(payload.Len()))
	if _, err := w.Write(lenBuf); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// ReadMessage reads one framed message from r, enforcing the
// handshake/non-handshake payload size caps.
func ReadMessage(r io.Reader) (Message, error) {
	lenBuf := make([]byte, frameLengthSize)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, err
	}
	n := uint32BE(lenBuf)
	if n < 1 {
		return nil, messageError("ReadMessage", "empty payload")
	}
	if n > MaxMessagePayload {
		return nil, messageError("ReadMessage",
			fmt.Sprintf("frame of %d bytes exceeds max message size %d", n, MaxMessagePayload))
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	tag := MessageTag(payload[0])
	if tag == TagHandshake && n-1 > MaxHandshakePayload {
		return nil, messageError("ReadMessage",
			fmt.Sprintf("handshake payload of %d bytes exceeds max of %d", n-1, MaxHandshakePayload))
	}

	msg, err := newMessageForTag(tag)
	if err != nil {
		return nil, err
	}
	if err := msg.BtcDecode(bytes.NewReader(payload[1:])); err != nil {
		return nil, err
	}
	return msg, nil
}

func putUint32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func uint32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
