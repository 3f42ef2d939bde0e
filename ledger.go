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

// Ledger is the ordered sequence of accepted blocks. blocks[i].Index == i
// and every block references the hash of its predecessor. The sequence is
// extended only by append and replaced only by replace, both of which are
// called by the Engine after validation.
type Ledger struct {
	blocks []Block
}

func NewLedger() *Ledger {
	return &Ledger{blocks: make([]Block, 0)}
}

// Len returns the number of blocks.
func (l *Ledger) Len() int {
	return len(l.blocks)
}

// Tip returns the last block, if any.
func (l *Ledger) Tip() (Block, bool) {
	if len(l.blocks) == 0 {
		return Block{}, false
	}
	return l.blocks[len(l.blocks)-1], true
}

// TipHash returns the hash of the last block, or "" for an empty ledger.
func (l *Ledger) TipHash() string {
	tip, ok := l.Tip()
	if !ok {
		return ""
	}
	return tip.Hash()
}

// NextIndex returns the index the next block must carry.
func (l *Ledger) NextIndex() uint64 {
	return uint64(len(l.blocks))
}

// Blocks returns a copy of the whole chain.
func (l *Ledger) Blocks() []Block {
	return copyBlocks(l.blocks)
}

// From returns a copy of the suffix starting at the block whose index is
// index, or an empty slice if there is no such block.
func (l *Ledger) From(index uint64) []Block {
	for i, b := range l.blocks {
		if b.Index == index {
			return copyBlocks(l.blocks[i:])
		}
	}
	return []Block{}
}

func (l *Ledger) append(blocks ...Block) {
	for _, b := range blocks {
		l.blocks = append(l.blocks, b.Copy())
	}
}

func (l *Ledger) replace(blocks []Block) {
	l.blocks = copyBlocks(blocks)
}

// snapshot returns a detached ledger holding the same blocks. Blocks are
// immutable once sealed, so sharing the elements is safe.
func (l *Ledger) snapshot() *Ledger {
	blocks := make([]Block, len(l.blocks))
	copy(blocks, l.blocks)
	return &Ledger{blocks: blocks}
}
