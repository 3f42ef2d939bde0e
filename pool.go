package blockchain

// TransactionPool holds transactions that are not yet part of an accepted
// block. Entries are unique by ID and kept in insertion order so mining
// snapshots are deterministic.
//
// A pool is not safe for concurrent use. The Engine owns its pool and
// mutates it only from its worker.
type TransactionPool struct {
	order []string
	txs   map[string]Transaction
}

func NewTransactionPool() *TransactionPool {
	return &TransactionPool{
		order: make([]string, 0),
		txs:   make(map[string]Transaction)}
}

// Submit builds a transaction stamped with the current time and adds it.
// The returned bool is false if an identical transaction is already pending.
func (p *TransactionPool) Submit(sender, receiver, payload string) (Transaction, bool, error) {
	return p.SubmitAt(sender, receiver, payload, 0)
}

// SubmitAt is like Submit with an explicit creation timestamp.
func (p *TransactionPool) SubmitAt(sender, receiver, payload string, createdAt int64) (Transaction, bool, error) {
	tx, err := NewTransaction(sender, receiver, payload, createdAt)
	if err != nil {
		return Transaction{}, false, err
	}
	return tx, p.Add(tx), nil
}

// Add inserts a pre-built transaction. Returns false on duplicates.
func (p *TransactionPool) Add(tx Transaction) bool {
	if _, ok := p.txs[tx.ID]; ok {
		return false
	}
	p.txs[tx.ID] = tx
	p.order = append(p.order, tx.ID)
	return true
}

func (p *TransactionPool) Contains(id string) bool {
	_, ok := p.txs[id]
	return ok
}

func (p *TransactionPool) Len() int {
	return len(p.order)
}

// Snapshot returns a copy of the pending transactions in insertion order.
func (p *TransactionPool) Snapshot() []Transaction {
	snapshot := make([]Transaction, len(p.order))
	for i, id := range p.order {
		snapshot[i] = p.txs[id]
	}
	return snapshot
}

// Remove drops every pending transaction whose ID is in ids and returns the
// number of entries removed.
func (p *TransactionPool) Remove(ids map[string]struct{}) int {
	if len(ids) == 0 {
		return 0
	}

	kept := p.order[:0]
	removed := 0
	for _, id := range p.order {
		if _, ok := ids[id]; ok {
			delete(p.txs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	p.order = kept
	return removed
}

// RemoveBlocks drops every pending transaction included in blocks.
func (p *TransactionPool) RemoveBlocks(blocks []Block) int {
	ids := make(map[string]struct{})
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			ids[tx.ID] = struct{}{}
		}
	}
	return p.Remove(ids)
}
