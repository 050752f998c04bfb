// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/visionx-network/visionx/chainhash"
)

// NetworkType identifies which VisionX network a peer belongs to.
type NetworkType uint8

// Network types.
const (
	Testnet NetworkType = 0
	Mainnet NetworkType = 1
)

// MsgHandshake is the first message exchanged on every connection.
type MsgHandshake struct {
	ProtocolVersion uint32
	ChainID         [8]byte
	GenesisHash     chainhash.Hash
	NetworkType     NetworkType
	ChainHeight     uint64
	PeerID          [16]byte
	ListenPort      uint16
}

// Tag implements Message.
func (m *MsgHandshake) Tag() MessageTag { return TagHandshake }

// BtcEncode implements Message.
func (m *MsgHandshake) BtcEncode(w io.Writer) error {
	if err := writeUint32(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := writeFixedBytes(w, m.ChainID[:]); err != nil {
		return err
	}
	if err := writeHash(w, m.GenesisHash); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(m.NetworkType)}); err != nil {
		return err
	}
	if err := writeUint64(w, m.ChainHeight); err != nil {
		return err
	}
	if err := writeFixedBytes(w, m.PeerID[:]); err != nil {
		return err
	}
	return writeUint16(w, m.ListenPort)
}

// BtcDecode implements Message.
func (m *MsgHandshake) BtcDecode(r io.Reader) error {
	var err error
	if m.ProtocolVersion, err = readUint32(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.ChainID[:]); err != nil {
		return err
	}
	if m.GenesisHash, err = readHash(r); err != nil {
		return err
	}
	var netByte [1]byte
	if _, err = io.ReadFull(r, netByte[:]); err != nil {
		return err
	}
	m.NetworkType = NetworkType(netByte[0])
	if m.ChainHeight, err = readUint64(r); err != nil {
		return err
	}
	if _, err = io.ReadFull(r, m.PeerID[:]); err != nil {
		return err
	}
	m.ListenPort, err = readUint16(r)
	return err
}

// MsgPing is a keepalive/latency probe.
type MsgPing struct{ Nonce uint64 }

// Tag implements Message.
func (m *MsgPing) Tag() MessageTag { return TagPing }

// BtcEncode implements Message.
func (m *MsgPing) BtcEncode(w io.Writer) error { return writeUint64(w, m.Nonce) }

// BtcDecode implements Message.
func (m *MsgPing) BtcDecode(r io.Reader) (err error) { m.Nonce, err = readUint64(r); return err }

// MsgPong answers a MsgPing with the same nonce.
type MsgPong struct{ Nonce uint64 }

// Tag implements Message.
func (m *MsgPong) Tag() MessageTag { return TagPong }

// BtcEncode implements Message.
func (m *MsgPong) BtcEncode(w io.Writer) error { return writeUint64(w, m.Nonce) }

// BtcDecode implements Message.
func (m *MsgPong) BtcDecode(r io.Reader) (err error) { m.Nonce, err = readUint64(r); return err }

// MsgGetPeers requests the remote's known-peer list.
type MsgGetPeers struct{}

// Tag implements Message.
func (m *MsgGetPeers) Tag() MessageTag { return TagGetPeers }

// BtcEncode implements Message.
func (m *MsgGetPeers) BtcEncode(io.Writer) error { return nil }

// BtcDecode implements Message.
func (m *MsgGetPeers) BtcDecode(io.Reader) error { return nil }

// PeerAddress is one entry in a MsgPeerList.
type PeerAddress struct {
	Host string
	Port uint16
}

// MsgPeerList is a gossip response to MsgGetPeers.
type MsgPeerList struct {
	Peers []PeerAddress
}

const maxGossipPeers = 1000

// Tag implements Message.
func (m *MsgPeerList) Tag() MessageTag { return TagPeerList }

// BtcEncode implements Message.
func (m *MsgPeerList) BtcEncode(w io.Writer) error {
	if err := writeVarCount(w, len(m.Peers)); err != nil {
		return err
	}
	for _, p := range m.Peers {
		if err := writeVarBytes(w, []byte(p.Host)); err != nil {
			return err
		}
		if err := writeUint16(w, p.Port); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgPeerList) BtcDecode(r io.Reader) error {
	n, err := readVarCount(r, maxGossipPeers, "peerlist")
	if err != nil {
		return err
	}
	m.Peers = make([]PeerAddress, n)
	for i := range m.Peers {
		host, err := readVarBytes(r, 256, "peerlist.host")
		if err != nil {
			return err
		}
		port, err := readUint16(r)
		if err != nil {
			return err
		}
		m.Peers[i] = PeerAddress{Host: string(host), Port: port}
	}
	return nil
}

// MsgGetHeaders requests headers starting after a known locator hash.
type MsgGetHeaders struct {
	StartHash chainhash.Hash
	StopHash  chainhash.Hash
}

// Tag implements Message.
func (m *MsgGetHeaders) Tag() MessageTag { return TagGetHeaders }

// BtcEncode implements Message.
func (m *MsgGetHeaders) BtcEncode(w io.Writer) error {
	if err := writeHash(w, m.StartHash); err != nil {
		return err
	}
	return writeHash(w, m.StopHash)
}

// BtcDecode implements Message.
func (m *MsgGetHeaders) BtcDecode(r io.Reader) (err error) {
	if m.StartHash, err = readHash(r); err != nil {
		return err
	}
	m.StopHash, err = readHash(r)
	return err
}

const maxHeadersPerMsg = 2000

// MsgHeaders answers MsgGetHeaders with a batch of serialized headers.
type MsgHeaders struct {
	Headers []BlockHeader
}

// Tag implements Message.
func (m *MsgHeaders) Tag() MessageTag { return TagHeaders }

// BtcEncode implements Message.
func (m *MsgHeaders) BtcEncode(w io.Writer) error {
	if err := writeVarCount(w, len(m.Headers)); err != nil {
		return err
	}
	for i := range m.Headers {
		if err := writeFixedBytes(w, m.Headers[i].Serialize()); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgHeaders) BtcDecode(r io.Reader) error {
	n, err := readVarCount(r, maxHeadersPerMsg, "headers")
	if err != nil {
		return err
	}
	m.Headers = make([]BlockHeader, n)
	buf := make([]byte, HeaderSize)
	for i := range m.Headers {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		h, err := DeserializeHeader(buf)
		if err != nil {
			return err
		}
		m.Headers[i] = *h
	}
	return nil
}

// MsgGetBlock requests a full block by hash.
type MsgGetBlock struct{ Hash chainhash.Hash }

// Tag implements Message.
func (m *MsgGetBlock) Tag() MessageTag { return TagGetBlock }

// BtcEncode implements Message.
func (m *MsgGetBlock) BtcEncode(w io.Writer) error { return writeHash(w, m.Hash) }

// BtcDecode implements Message.
func (m *MsgGetBlock) BtcDecode(r io.Reader) (err error) { m.Hash, err = readHash(r); return err }

const maxTxsPerBlockMsg = 1 << 20

// MsgBlock carries a full block.
type MsgBlock struct{ Block Block }

// Tag implements Message.
func (m *MsgBlock) Tag() MessageTag { return TagBlock }

// BtcEncode implements Message.
func (m *MsgBlock) BtcEncode(w io.Writer) error {
	if err := writeFixedBytes(w, m.Block.Header.Serialize()); err != nil {
		return err
	}
	if err := writeVarCount(w, len(m.Block.Transactions)); err != nil {
		return err
	}
	for _, tx := range m.Block.Transactions {
		if err := encodeTx(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgBlock) BtcDecode(r io.Reader) error {
	hbuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hbuf); err != nil {
		return err
	}
	h, err := DeserializeHeader(hbuf)
	if err != nil {
		return err
	}
	m.Block.Header = *h

	n, err := readVarCount(r, maxTxsPerBlockMsg, "block.transactions")
	if err != nil {
		return err
	}
	m.Block.Transactions = make([]Tx, n)
	for i := range m.Block.Transactions {
		tx, err := decodeTx(r)
		if err != nil {
			return err
		}
		m.Block.Transactions[i] = tx
	}
	return nil
}

func encodeTx(w io.Writer, tx Tx) error {
	if err := writeHash(w, tx.ID); err != nil {
		return err
	}
	return writeUint32(w, tx.SizeBytes)
}

func decodeTx(r io.Reader) (Tx, error) {
	id, err := readHash(r)
	if err != nil {
		return Tx{}, err
	}
	size, err := readUint32(r)
	if err != nil {
		return Tx{}, err
	}
	return Tx{ID: id, SizeBytes: size}, nil
}

// MsgTx carries a single transaction, used to gossip mempool entries.
type MsgTx struct{ Transaction Tx }

// Tag implements Message.
func (m *MsgTx) Tag() MessageTag { return TagTx }

// BtcEncode implements Message.
func (m *MsgTx) BtcEncode(w io.Writer) error { return encodeTx(w, m.Transaction) }

// BtcDecode implements Message.
func (m *MsgTx) BtcDecode(r io.Reader) (err error) { m.Transaction, err = decodeTx(r); return err }

// MsgGetMempool requests the remote's current mempool transaction IDs.
type MsgGetMempool struct{}

// Tag implements Message.
func (m *MsgGetMempool) Tag() MessageTag { return TagGetMempool }

// BtcEncode implements Message.
func (m *MsgGetMempool) BtcEncode(io.Writer) error { return nil }

// BtcDecode implements Message.
func (m *MsgGetMempool) BtcDecode(io.Reader) error { return nil }

const maxMempoolEntries = 1 << 20

// MsgMempool answers MsgGetMempool with a list of transaction IDs.
type MsgMempool struct{ TxIDs []chainhash.Hash }

// Tag implements Message.
func (m *MsgMempool) Tag() MessageTag { return TagMempool }

// BtcEncode implements Message.
func (m *MsgMempool) BtcEncode(w io.Writer) error {
	if err := writeVarCount(w, len(m.TxIDs)); err != nil {
		return err
	}
	for _, id := range m.TxIDs {
		if err := writeHash(w, id); err != nil {
			return err
		}
	}
	return nil
}

// BtcDecode implements Message.
func (m *MsgMempool) BtcDecode(r io.Reader) error {
	n, err := readVarCount(r, maxMempoolEntries, "mempool")
	if err != nil {
		return err
	}
	m.TxIDs = make([]chainhash.Hash, n)
	for i := range m.TxIDs {
		if m.TxIDs[i], err = readHash(r); err != nil {
			return err
		}
	}
	return nil
}
