package mock

import (
	"context"
	"fmt"

	blockchain "github.com/laszlourszuly/basic-blockchain"
)

// BaseTimestamp is the creation time, in unix milliseconds, of the first
// mock transaction and of the mock genesis block.
const BaseTimestamp int64 = 1600000000000

// Transfer is the raw input of a transaction as a client would submit it.
type Transfer struct {
	Sender    string
	Receiver  string
	Payload   string
	CreatedAt int64
}

// NewTransfer returns the i-th deterministic transfer. Different i never
// produce the same transaction ID.
func NewTransfer(i int) Transfer {
	return Transfer{
		Sender:    fmt.Sprintf("sender-%d", i),
		Receiver:  fmt.Sprintf("receiver-%d", i%3),
		Payload:   fmt.Sprintf("%d coins", 10+i),
		CreatedAt: BaseTimestamp + int64(i)}
}

// Transfers returns n transfers starting at NewTransfer(from).
func Transfers(from, n int) []Transfer {
	ts := make([]Transfer, n)
	for i := range ts {
		ts[i] = NewTransfer(from + i)
	}
	return ts
}

// NewTransaction builds the transaction of NewTransfer(i).
func NewTransaction(i int) blockchain.Transaction {
	t := NewTransfer(i)
	tx, err := blockchain.NewTransaction(t.Sender, t.Receiver, t.Payload, t.CreatedAt)
	if err != nil {
		panic(err)
	}
	return tx
}

// Transactions returns n transactions starting at NewTransaction(from).
func Transactions(from, n int) []blockchain.Transaction {
	txs := make([]blockchain.Transaction, n)
	for i := range txs {
		txs[i] = NewTransaction(from + i)
	}
	return txs
}

// Chain mines a valid chain of n blocks, genesis included, at the given
// difficulty. Block i > 0 carries txPerBlock fresh transactions; the
// genesis block carries none.
func Chain(difficulty blockchain.Difficulty, n, txPerBlock int) []blockchain.Block {
	return Extend(difficulty, nil, n, txPerBlock)
}

// Extend mines n more blocks on top of chain and returns the longer chain.
// chain itself is not modified. Transactions are numbered after the ones
// already in chain so an extension never repeats an ID of its base.
func Extend(difficulty blockchain.Difficulty, chain []blockchain.Block, n, txPerBlock int) []blockchain.Block {
	return ExtendFrom(difficulty, chain, n, txPerBlock, 1000*len(chain))
}

// ExtendFrom is like Extend, numbering the new transactions from txSeed.
// Two extensions of the same base with different seeds are competing forks
// that share no transactions.
func ExtendFrom(difficulty blockchain.Difficulty, chain []blockchain.Block, n, txPerBlock, txSeed int) []blockchain.Block {
	miner := blockchain.NewMiner(difficulty)
	out := make([]blockchain.Block, len(chain), len(chain)+n)
	for i, b := range chain {
		out[i] = b.Copy()
	}

	seq := txSeed
	for i := 0; i < n; i++ {
		tpl := blockchain.Template{
			Index:     uint64(len(out)),
			Timestamp: BaseTimestamp + int64(len(out))*1000 + int64(txSeed)}
		if len(out) > 0 {
			tpl.PreviousHash = out[len(out)-1].Hash()
			tpl.Transactions = Transactions(seq, txPerBlock)
			seq += txPerBlock
		}

		b, _, err := miner.Search(context.Background(), tpl)
		if err != nil {
			panic(err)
		}
		out = append(out, b)
	}
	return out
}

// Remine searches a new nonce for b after its fields were altered, so that
// b is a well-formed block at the difficulty again. Links to other blocks
// are not repaired.
func Remine(difficulty blockchain.Difficulty, b blockchain.Block) blockchain.Block {
	tpl := blockchain.Template{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		Transactions: b.Transactions}
	mined, _, err := blockchain.NewMiner(difficulty).Search(context.Background(), tpl)
	if err != nil {
		panic(err)
	}
	return mined
}
