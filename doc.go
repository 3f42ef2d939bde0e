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

/*
Package blockchain provides the ledger engine of a small proof-of-work
blockchain node. The ledger is an append-only chain of blocks, each sealing
a batch of pending transactions with a nonce whose SHA-256 hash starts with
a fixed number of '0' hex digits.

The Engine owns one ledger and one transaction pool. All mutations, from
transaction submission to chain replacement, run in order on a single worker
goroutine, while queries read published copies and never wait for mining.
Competing chains received from peers are resolved by the longest valid chain
rule: only a strictly longer chain that verifies end to end replaces the
local one.

Example pseudo code of a node program:
		cfg, err := blockchain.ReadConfig(viper.GetViper())
		...
		e, err := blockchain.NewEngine(cfg)
		...
		defer e.Stop()

		e.OnChainReplaced(func(chain []blockchain.Block) {
			log.Printf("adopted peer chain of %d blocks", len(chain))
		})

		// Called whenever a transaction arrives from a client or peer
		func receiveTransaction(t MyTransfer) {
			res := e.SubmitTransactionAt(t.From, t.To, t.Memo, t.CreatedAt)
			if res.Status == blockchain.TxInvalid {
				reject(t, res.Reason)
			}
		}

		// Called whenever a block arrives from a peer
		func receiveBlockFromNetwork(b blockchain.Block) {
			if !e.SubmitCandidateBlock(b) {
				// the peer may be ahead of us, ask for its whole chain
				e.SubmitCandidateChain(requestChainFromPeer())
			}
		}

		// Mines one block of the pending transactions
		func mineOnce(ctx context.Context) *blockchain.Block {
			res, done := e.RequestMine(ctx)
			if res != blockchain.Started {
				return nil
			}
			// nil if cancelled or outrun by a peer block
			b := <-done
			if b != nil {
				sendBlockToNetwork(*b)
			}
			return b
		}
*/
package blockchain
