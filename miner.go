// Copyright © 2018 J. Strobus White.
// This file is part of the blocktop blockchain development kit.
//
// Blocktop is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Blocktop is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with blocktop. If not, see <http://www.gnu.org/licenses/>.

package blockchain

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
)

// Template is the frozen input of one proof-of-work search: the next
// index, the tip it extends, the timestamp and a snapshot of the pool.
type Template struct {
	Index        uint64
	Timestamp    int64
	PreviousHash string
	Transactions []Transaction
}

// NewTemplate snapshots the ledger tip and the pending transactions.
func NewTemplate(ledger *Ledger, pool *TransactionPool) Template {
	return Template{
		Index:        ledger.NextIndex(),
		Timestamp:    nowMillis(),
		PreviousHash: ledger.TipHash(),
		Transactions: pool.Snapshot()}
}

// SearchResult describes the work performed by one search.
type SearchResult struct {
	Iterations uint64
	Duration   time.Duration
}

// HashRate returns hashes per second, or zero for an instant search.
func (r SearchResult) HashRate() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Duration.Seconds()
}

// Miner runs the proof-of-work search for one difficulty.
type Miner struct {
	difficulty Difficulty
}

func NewMiner(difficulty Difficulty) *Miner {
	return &Miner{difficulty: difficulty}
}

// Search increments the nonce from 1 until the hash of the nonce and the
// template header meets the difficulty. The search has no upper bound; it
// polls ctx every iteration and returns ErrMiningCancelled when ctx is done.
// Search has no side effects besides the returned block.
func (m *Miner) Search(ctx context.Context, tpl Template) (Block, SearchResult, error) {
	start := time.Now()
	txs := make([]Transaction, len(tpl.Transactions))
	copy(txs, tpl.Transactions)
	header := HeaderString(tpl.Index, tpl.Timestamp, tpl.PreviousHash, txs)
	done := ctx.Done()

	glog.V(2).Infof("Search: entering block %d with %d transactions", tpl.Index, len(txs))

	var nonce uint64
	for {
		select {
		case <-done:
			res := SearchResult{Iterations: nonce, Duration: time.Since(start)}
			glog.V(1).Infof("Search: leaving, cancelled block %d after %d iterations", tpl.Index, nonce)
			return Block{}, res, fmt.Errorf("%w: %v", ErrMiningCancelled, ctx.Err())
		default:
		}

		nonce++
		hash := ProofHash(nonce, header)
		if m.difficulty.MetBy(hash) {
			res := SearchResult{Iterations: nonce, Duration: time.Since(start)}
			glog.V(1).Infof("Search: leaving, found block %d:%s after %d iterations", tpl.Index, shortHash(hash), nonce)
			return Block{
				Index:        tpl.Index,
				Nonce:        nonce,
				Timestamp:    tpl.Timestamp,
				PreviousHash: tpl.PreviousHash,
				Transactions: txs}, res, nil
		}
	}
}
