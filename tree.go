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
	"encoding/json"
	"fmt"

	"github.com/disiqueira/gotree"
	"github.com/fatih/color"
)

type ledgerTree struct {
	Difficulty string       `json:"difficulty"`
	Height     int          `json:"height"`
	Blocks     []*treeBlock `json:"blocks"`
}

type treeBlock struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	BlockNumber  uint64          `json:"blockNumber,string"`
	Timestamp    int64           `json:"timestamp"`
	IsLocal      bool            `json:"isLocal"`
	Transactions []*treeTransfer `json:"transactions"`
}

type treeTransfer struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Payload  string `json:"payload"`
}

// LedgerTree renders the current ledger as "text" (a tree of blocks and
// their transactions, locally mined blocks highlighted) or "json".
func (e *Engine) LedgerTree(format string) (string, error) {
	view := e.ledgerView.Load().(*Ledger)
	local := e.localView.Load().(map[string]struct{})
	t := buildLedgerTree(e.cfg.Difficulty, view.blocks, local)

	switch format {
	case "text":
		return t.getText(), nil

	case "json":
		return t.getJSON()

	default:
		return "", ErrUnknownFormat
	}
}

func buildLedgerTree(difficulty Difficulty, blocks []Block, local map[string]struct{}) *ledgerTree {
	t := &ledgerTree{
		Difficulty: difficulty.String(),
		Height:     len(blocks),
		Blocks:     make([]*treeBlock, 0, len(blocks))}

	for _, b := range blocks {
		hash := b.Hash()
		_, isLocal := local[hash]
		tb := &treeBlock{
			ID:           hash,
			Name:         fmt.Sprintf("block %d:%s", b.Index, shortHash(hash)),
			BlockNumber:  b.Index,
			Timestamp:    b.Timestamp,
			IsLocal:      isLocal,
			Transactions: make([]*treeTransfer, 0, len(b.Transactions))}
		for _, tx := range b.Transactions {
			tb.Transactions = append(tb.Transactions, &treeTransfer{
				ID:       tx.ID,
				Sender:   tx.Sender,
				Receiver: tx.Receiver,
				Payload:  tx.Payload})
		}
		t.Blocks = append(t.Blocks, tb)
	}
	return t
}

func (t *ledgerTree) getJSON() (string, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return "null", err
	}
	return string(jsonBytes), nil
}

func (t *ledgerTree) getText() string {
	tree := gotree.New(fmt.Sprintf("ledger (difficulty %q, %d blocks)", t.Difficulty, t.Height))

	for _, b := range t.Blocks {
		t.buildTreeText(tree, b)
	}
	return tree.Print()
}

func (t *ledgerTree) buildTreeText(n gotree.Tree, b *treeBlock) {
	name := b.Name
	if b.BlockNumber == 0 {
		c := color.New(color.Faint)
		name = c.Sprint(b.Name)
	} else if b.IsLocal {
		name = color.HiGreenString(name)
	}

	node := n.Add(name)

	for _, tx := range b.Transactions {
		node.Add(fmt.Sprintf("tx %s %s -> %s: %s", shortHash(tx.ID), tx.Sender, tx.Receiver, tx.Payload))
	}
}
