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
	"sync"
	"sync/atomic"

	q "github.com/golang-collections/go-datastructures/queue"
	"github.com/golang/glog"

	"github.com/laszlourszuly/basic-blockchain/stats"
)

// TxStatus is the outcome of a transaction submission.
type TxStatus int

const (
	TxAccepted TxStatus = iota
	TxDuplicate
	TxInvalid
)

func (s TxStatus) String() string {
	switch s {
	case TxAccepted:
		return "accepted"
	case TxDuplicate:
		return "duplicate"
	case TxInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// TxSubmitResult carries the transaction on acceptance and the reason on
// rejection. Duplicates are not errors.
type TxSubmitResult struct {
	Status      TxStatus
	Transaction Transaction
	Reason      string
}

// BlockHandler is notified of blocks that became part of the ledger. It
// runs on its own goroutine and receives a copy.
type BlockHandler func(block Block)

// ChainHandler is notified when the ledger was replaced by a candidate chain.
type ChainHandler func(blocks []Block)

// MineResult is the immediate answer to RequestMine.
type MineResult int

const (
	Started MineResult = iota
	AlreadyMining
	NothingToMine
)

func (r MineResult) String() string {
	switch r {
	case Started:
		return "started"
	case AlreadyMining:
		return "already mining"
	case NothingToMine:
		return "nothing to mine"
	default:
		return "unknown"
	}
}

// Engine owns the ledger and the transaction pool of one node. Every
// mutation runs as a task on a single worker goroutine in submission
// order; this is the only mutual exclusion between ledger and pool
// changes. After each mutation the worker publishes copies of both, so
// read-only queries never wait for the worker or for mining.
//
// The proof-of-work search itself runs beside the worker on a frozen
// template. A found block is committed by a worker task that discards it
// if the search was cancelled or the tip moved in the meantime.
type Engine struct {
	cfg        Config
	validator  *ChainValidator
	forkChoice *ForkChoice
	miner      *Miner
	metrics    *metricItems
	stats      *stats.MiningStats

	// owned by the worker
	ledger    *Ledger
	pool      *TransactionPool
	committed map[string]struct{} // transaction IDs in the ledger
	local     map[string]struct{} // hashes of blocks mined by this engine
	job       *mineJob

	onBlockAppended BlockHandler
	onChainReplaced ChainHandler

	// published by the worker
	ledgerView atomic.Value // *Ledger
	poolView   atomic.Value // []Transaction
	localView  atomic.Value // map[string]struct{}
	current    atomic.Pointer[mineJob]

	queue    *q.Queue
	stopped  chan struct{}
	stopOnce sync.Once
	worker   sync.WaitGroup
	searches sync.WaitGroup
}

type task func()

type mineJob struct {
	ctx    context.Context
	cancel context.CancelFunc
	tpl    Template
	done   chan *Block
	once   sync.Once

	// set by the worker when a change of tip cancelled the search
	stale bool
}

// finish delivers block (nil when nothing was mined) exactly once.
func (j *mineJob) finish(block *Block) {
	j.once.Do(func() {
		j.cancel()
		j.done <- block
		close(j.done)
	})
}

// NewEngine builds an engine and starts its worker. It fails only if the
// configuration is invalid or the protocol hash function is unavailable.
func NewEngine(cfg Config) (*Engine, error) {
	if err := CheckHashAvailable(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	validator := NewChainValidator(cfg.Difficulty)
	e := &Engine{
		cfg:        cfg,
		validator:  validator,
		forkChoice: NewForkChoice(validator),
		miner:      NewMiner(cfg.Difficulty),
		metrics:    newMetrics(cfg.MetricsName),
		stats:      stats.NewMiningStats(cfg.StatsWindow),
		ledger:     NewLedger(),
		pool:       NewTransactionPool(),
		committed:  make(map[string]struct{}),
		local:      make(map[string]struct{}),
		queue:      q.New(cfg.QueueHint),
		stopped:    make(chan struct{})}

	e.publish()
	e.stats.Start()

	e.worker.Add(1)
	go e.run()

	glog.V(1).Infof("NewEngine: started with difficulty %q", cfg.Difficulty)

	if cfg.MineGenesis {
		res, _ := e.RequestMine(context.Background())
		glog.V(1).Infof("NewEngine: genesis mining %s", res)
	}
	return e, nil
}

// Stop cancels any search, stops the worker and waits for it. Work
// submitted afterwards is rejected.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.CancelMining()
		close(e.stopped)
		e.queue.Dispose()
		e.worker.Wait()
		e.searches.Wait()
		if job := e.current.Load(); job != nil {
			job.finish(nil)
		}
		e.stats.Stop()
		glog.V(1).Infoln("Stop: engine stopped")
	})
}

func (e *Engine) run() {
	defer e.worker.Done()
	for {
		items, err := e.queue.Get(1)
		if err != nil {
			// queue disposed
			return
		}
		for _, item := range items {
			item.(task)()
		}
	}
}

// do runs f on the worker and waits for it to complete.
func (e *Engine) do(f func()) error {
	done := make(chan struct{})
	err := e.queue.Put(task(func() {
		f()
		close(done)
	}))
	if err != nil {
		return ErrEngineStopped
	}

	select {
	case <-done:
		return nil
	case <-e.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrEngineStopped
		}
	}
}

// publish stores detached copies of the worker state for readers.
func (e *Engine) publish() {
	e.ledgerView.Store(e.ledger.snapshot())
	e.poolView.Store(e.pool.Snapshot())
	local := make(map[string]struct{}, len(e.local))
	for h := range e.local {
		local[h] = struct{}{}
	}
	e.localView.Store(local)
	e.metrics.publish(e.ledger, e.pool)
}

// OnBlockAppended registers f to be called for every block received from a
// peer and appended to the ledger.
func (e *Engine) OnBlockAppended(f BlockHandler) {
	e.do(func() { e.onBlockAppended = f })
}

// OnChainReplaced registers f to be called with the new chain whenever
// fork choice replaced the ledger.
func (e *Engine) OnChainReplaced(f ChainHandler) {
	e.do(func() { e.onChainReplaced = f })
}

// Difficulty returns the proof-of-work difficulty of this ledger.
func (e *Engine) Difficulty() Difficulty {
	return e.cfg.Difficulty
}

// Validator returns the validator enforcing this ledger's rules.
func (e *Engine) Validator() *ChainValidator {
	return e.validator
}

// SubmitTransaction records a transaction created now.
func (e *Engine) SubmitTransaction(sender, receiver, payload string) TxSubmitResult {
	return e.SubmitTransactionAt(sender, receiver, payload, 0)
}

// SubmitTransactionAt records a transaction with an explicit creation time
// in unix milliseconds, as needed for transactions relayed from other nodes.
// Only positive timestamps are explicit: a createdAt of zero or less is
// replaced with the current time, so the epoch itself can not be supplied.
// A transaction that is already pending or already part of the ledger is a
// duplicate.
func (e *Engine) SubmitTransactionAt(sender, receiver, payload string, createdAt int64) TxSubmitResult {
	tx, err := NewTransaction(sender, receiver, payload, createdAt)
	if err != nil {
		e.metrics.TxInvalid.Inc(1)
		glog.V(1).Infof("SubmitTransaction: leaving, %v", err)
		return TxSubmitResult{Status: TxInvalid, Reason: err.Error()}
	}

	var added bool
	err = e.do(func() {
		if _, ok := e.committed[tx.ID]; ok {
			return
		}
		if added = e.pool.Add(tx); added {
			e.publish()
		}
	})
	if err != nil {
		return TxSubmitResult{Status: TxInvalid, Reason: err.Error()}
	}

	if !added {
		e.metrics.TxDuplicate.Inc(1)
		glog.V(2).Infof("SubmitTransaction: leaving, duplicate %s", shortHash(tx.ID))
		return TxSubmitResult{Status: TxDuplicate, Transaction: tx}
	}

	e.metrics.TxAccepted.Inc(1)
	glog.V(2).Infof("SubmitTransaction: leaving, accepted %s", shortHash(tx.ID))
	return TxSubmitResult{Status: TxAccepted, Transaction: tx}
}

// RequestMine starts a proof-of-work search over the pending transactions.
// When Started, the returned channel delivers the mined block once it is
// part of the ledger, or nil if the search was cancelled or went stale,
// and is then closed. Other results return a nil channel.
//
// The search is bound to ctx: cancelling it, or calling CancelMining,
// aborts the search without touching ledger or pool.
func (e *Engine) RequestMine(ctx context.Context) (MineResult, <-chan *Block) {
	result := NothingToMine
	var job *mineJob

	err := e.do(func() {
		if e.job != nil {
			result = AlreadyMining
			return
		}
		if e.pool.Len() == 0 && e.ledger.Len() > 0 {
			result = NothingToMine
			return
		}

		jctx, cancel := context.WithCancel(ctx)
		job = &mineJob{
			ctx:    jctx,
			cancel: cancel,
			tpl:    NewTemplate(e.ledger, e.pool),
			done:   make(chan *Block, 1)}
		e.job = job
		e.current.Store(job)
		e.searches.Add(1)
		go e.search(job)
		result = Started
	})
	if err != nil {
		glog.V(1).Infof("RequestMine: leaving, %v", err)
		return NothingToMine, nil
	}

	glog.V(1).Infof("RequestMine: leaving, %s", result)
	if result != Started {
		return result, nil
	}
	return result, job.done
}

// CancelMining aborts the search in flight, if any.
func (e *Engine) CancelMining() {
	if job := e.current.Load(); job != nil {
		glog.V(1).Infof("CancelMining: cancelling block %d", job.tpl.Index)
		job.cancel()
	}
}

// Mining reports whether a search is in flight.
func (e *Engine) Mining() bool {
	return e.current.Load() != nil
}

func (e *Engine) search(job *mineJob) {
	defer e.searches.Done()

	block, res, err := e.miner.Search(job.ctx, job.tpl)
	e.metrics.searched(res)

	var t task
	if err != nil {
		t = func() { e.discardJob(job, res) }
	} else {
		t = func() { e.commitMined(job, block, res) }
	}

	if err := e.queue.Put(t); err != nil {
		job.finish(nil)
	}
}

// commitMined appends a found block if it still extends the tip.
func (e *Engine) commitMined(job *mineJob, block Block, res SearchResult) {
	if job.ctx.Err() != nil {
		e.discardJob(job, res)
		return
	}

	// Every change of tip cancels the job, so this only guards the invariant.
	if err := e.checkExtendsTip(block); err != nil {
		glog.Errorf("commitMined: discarding block %d not extending the tip: %v", block.Index, err)
		e.finishJob(job, nil, res, stats.Stale)
		return
	}

	hash := block.Hash()
	e.ledger.append(block)
	e.pool.Remove(block.TransactionIDs())
	e.commit(block)
	e.local[hash] = struct{}{}
	e.publish()

	e.metrics.BlocksMined.Inc(1)
	glog.Infof("Mined block %d:%s with %d transactions after %d iterations in %s",
		block.Index, shortHash(hash), len(block.Transactions), res.Iterations, res.Duration)

	mined := block.Copy()
	e.finishJob(job, &mined, res, stats.Mined)
}

func (e *Engine) finishJob(job *mineJob, block *Block, res SearchResult, outcome stats.Outcome) {
	if e.job == job {
		e.job = nil
		e.current.Store(nil)
	}
	switch outcome {
	case stats.Cancelled:
		e.metrics.MiningCancelled.Inc(1)
	case stats.Stale:
		e.metrics.MiningStale.Inc(1)
	}
	e.stats.Record(stats.Round{
		Index:        job.tpl.Index,
		Transactions: len(job.tpl.Transactions),
		Iterations:   res.Iterations,
		Duration:     res.Duration,
		Outcome:      outcome})
	job.finish(block)
}

// discardJob ends a search that was cancelled before its block could be
// committed. Searches outrun by a change of tip count as stale, all others
// as cancelled.
func (e *Engine) discardJob(job *mineJob, res SearchResult) {
	outcome := stats.Cancelled
	if job.stale {
		outcome = stats.Stale
	}
	e.finishJob(job, nil, res, outcome)
}

// cancelJob stops an in-flight search whose template was made stale by a
// change of tip. The search reports back through its own commit task.
func (e *Engine) cancelJob(reason string) {
	if e.job != nil {
		glog.V(1).Infof("cancelJob: cancelling block %d, %s", e.job.tpl.Index, reason)
		e.job.stale = true
		e.job.cancel()
	}
}

func (e *Engine) checkExtendsTip(block Block) error {
	tip, ok := e.ledger.Tip()
	if !ok {
		return e.validator.CheckGenesis(block)
	}
	return e.validator.CheckLink(tip, block)
}

func (e *Engine) commit(blocks ...Block) {
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			e.committed[tx.ID] = struct{}{}
		}
	}
}

// GetBlocks returns the whole chain, or the suffix starting at the block
// whose index is *from (empty if there is no such block).
func (e *Engine) GetBlocks(from *uint64) []Block {
	view := e.ledgerView.Load().(*Ledger)
	if from == nil {
		return view.Blocks()
	}
	return view.From(*from)
}

// Height returns the number of blocks in the ledger.
func (e *Engine) Height() int {
	return e.ledgerView.Load().(*Ledger).Len()
}

// GetPendingTransactions returns the pool contents in insertion order.
func (e *Engine) GetPendingTransactions() []Transaction {
	view := e.poolView.Load().([]Transaction)
	txs := make([]Transaction, len(view))
	copy(txs, view)
	return txs
}

// SubmitCandidateBlock appends a block received from a peer if it extends
// the current tip.
func (e *Engine) SubmitCandidateBlock(block Block) bool {
	return e.SubmitCandidateBlocks([]Block{block})
}

// SubmitCandidateBlocks appends a contiguous run of blocks that extends the
// current tip. Nothing is appended unless every block is valid. An empty
// run is trivially accepted.
func (e *Engine) SubmitCandidateBlocks(blocks []Block) bool {
	if len(blocks) == 0 {
		return true
	}

	var ok bool
	err := e.do(func() {
		ok = e.appendBlocks(blocks)
	})
	if err != nil {
		glog.V(1).Infof("SubmitCandidateBlocks: leaving, %v", err)
		return false
	}
	return ok
}

func (e *Engine) appendBlocks(blocks []Block) bool {
	err := e.checkExtendsTip(blocks[0])
	if err == nil {
		err = e.validator.CheckChain(blocks)
	}
	if err != nil {
		e.metrics.BlocksRejected.Inc(int64(len(blocks)))
		glog.Warningf("appendBlocks: rejecting %d blocks: %v", len(blocks), err)
		return false
	}

	e.cancelJob("tip extended by candidate block")
	e.ledger.append(blocks...)
	e.pool.RemoveBlocks(blocks)
	e.commit(blocks...)
	e.publish()

	e.metrics.BlocksAppended.Inc(int64(len(blocks)))
	if e.onBlockAppended != nil {
		for _, b := range blocks {
			go e.onBlockAppended(b.Copy())
		}
	}
	last := blocks[len(blocks)-1]
	glog.V(1).Infof("appendBlocks: leaving, appended through block %d:%s", last.Index, shortHash(last.Hash()))
	return true
}

// SubmitCandidateChain offers a peer's whole chain to fork choice. An
// accepted chain replaces the local ledger atomically, cancels mining and
// removes its transactions from the pool. Transactions of dropped local
// blocks that the new chain does not contain go back to the pool.
func (e *Engine) SubmitCandidateChain(blocks []Block) Outcome {
	outcome := RejectedInvalid
	err := e.do(func() {
		outcome = e.forkChoice.Consider(e.ledger.blocks, blocks)
		if outcome == Accepted {
			e.replaceChain(blocks)
		}
	})
	if err != nil {
		glog.V(1).Infof("SubmitCandidateChain: leaving, %v", err)
		return RejectedInvalid
	}

	switch outcome {
	case Accepted:
		e.metrics.ChainsAccepted.Inc(1)
	default:
		e.metrics.ChainsRejected.Inc(1)
	}
	glog.V(1).Infof("SubmitCandidateChain: leaving, %s", outcome)
	return outcome
}

func (e *Engine) replaceChain(blocks []Block) {
	e.cancelJob("chain replaced")

	old := e.ledger.blocks
	e.ledger.replace(blocks)

	e.committed = make(map[string]struct{})
	e.commit(blocks...)

	hashes := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		hashes[b.Hash()] = struct{}{}
	}

	// Rebuild the pool: orphaned transactions first, then the pending ones.
	pool := NewTransactionPool()
	for _, b := range old {
		if _, kept := hashes[b.Hash()]; kept {
			continue
		}
		for _, tx := range b.Transactions {
			if _, ok := e.committed[tx.ID]; !ok {
				pool.Add(tx)
			}
		}
	}
	for _, tx := range e.pool.Snapshot() {
		if _, ok := e.committed[tx.ID]; !ok {
			pool.Add(tx)
		}
	}
	e.pool = pool

	for h := range e.local {
		if _, ok := hashes[h]; !ok {
			delete(e.local, h)
		}
	}
	e.publish()

	if e.onChainReplaced != nil {
		go e.onChainReplaced(copyBlocks(blocks))
	}

	glog.Infof("Replaced ledger of %d blocks with candidate of %d blocks", len(old), len(blocks))
}

// Stats returns a snapshot of the mining statistics.
func (e *Engine) Stats() stats.Snapshot {
	return e.stats.Snapshot()
}

// Metrics renders the engine metrics as "text" or "json".
func (e *Engine) Metrics(format string) (string, error) {
	return e.metrics.write(format)
}

// IsStopped reports whether Stop was called.
func (e *Engine) IsStopped() bool {
	select {
	case <-e.stopped:
		return true
	default:
		return false
	}
}
