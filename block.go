package blockchain

import (
	"strconv"
	"strings"
)

// Block is a sealed unit of the ledger. It is created once by the miner
// and never mutated afterwards; replacing the chain replaces whole blocks.
type Block struct {
	Index        uint64        `json:"index"`
	Nonce        uint64        `json:"nonce"`
	Timestamp    int64         `json:"timestamp"` // unix milliseconds
	PreviousHash string        `json:"previous_hash,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

// Header returns the raw header string: index, timestamp, previous hash
// and every transaction ID, in that order and without separators. The
// nonce is not part of the header.
func (b Block) Header() string {
	return HeaderString(b.Index, b.Timestamp, b.PreviousHash, b.Transactions)
}

// Hash returns the proof-of-work hash identifying the block.
func (b Block) Hash() string {
	return ProofHash(b.Nonce, b.Header())
}

// IsGenesis reports whether the block claims to be the first of a chain.
func (b Block) IsGenesis() bool {
	return b.Index == 0 && b.PreviousHash == ""
}

// TransactionIDs returns the set of IDs committed by the block.
func (b Block) TransactionIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(b.Transactions))
	for _, tx := range b.Transactions {
		ids[tx.ID] = struct{}{}
	}
	return ids
}

// Copy returns a block that shares no slice memory with b.
func (b Block) Copy() Block {
	c := b
	c.Transactions = make([]Transaction, len(b.Transactions))
	copy(c.Transactions, b.Transactions)
	return c
}

// HeaderString builds the header of a block from its fields. The encoding
// is part of the protocol and must be identical on every node.
func HeaderString(index uint64, timestamp int64, previousHash string, txs []Transaction) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(index, 10))
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteString(previousHash)
	for _, tx := range txs {
		b.WriteString(tx.ID)
	}
	return b.String()
}

// ProofHash hashes the decimal nonce prefixed to the header.
func ProofHash(nonce uint64, header string) string {
	return HashString(strconv.FormatUint(nonce, 10) + header)
}

func copyBlocks(blocks []Block) []Block {
	c := make([]Block, len(blocks))
	for i, b := range blocks {
		c[i] = b.Copy()
	}
	return c
}

func formatIndex(index uint64) string {
	return strconv.FormatUint(index, 10)
}

func shortHash(hash string) string {
	if len(hash) < 6 {
		return hash
	}
	return hash[:6]
}
