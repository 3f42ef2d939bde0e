package stats

import (
	"sync"
	"time"

	"github.com/mxmCherry/movavg"
)

// Outcome labels how a mining round ended.
type Outcome string

const (
	Mined     Outcome = "mined"
	Cancelled Outcome = "cancelled"
	Stale     Outcome = "stale"
)

// Round is the record of one proof-of-work search.
type Round struct {
	Index        uint64
	Transactions int
	Iterations   uint64
	Duration     time.Duration
	Outcome      Outcome
}

type MiningStats struct {
	sync.Mutex

	// Number of rounds per outcome
	RoundsByOutcome map[Outcome]uint64 `json:"roundsByOutcome"`

	// Total rounds recorded
	TotalRounds uint64 `json:"totalRounds,string"`

	// Total hashes computed over all rounds
	TotalIterations uint64 `json:"totalIterations,string"`

	// Average duration in nanoseconds of mined rounds
	AvgMinedDuration int64 `json:"avgMinedDuration"`

	// Duration in nanoseconds of the last round
	LastDuration int64 `json:"lastDuration"`

	// Transactions committed by mined rounds
	MinedTransactions uint64 `json:"minedTransactions,string"`

	// Last update timestamp in milliseconds
	UpdateTimestamp int64 `json:"updateTimestamp"`

	// hashes per second over the last window rounds
	hashRate    *movavg.SMA
	hashSamples int

	started bool
}

// Snapshot is a point-in-time copy of MiningStats.
type Snapshot struct {
	RoundsByOutcome   map[Outcome]uint64 `json:"roundsByOutcome"`
	TotalRounds       uint64             `json:"totalRounds,string"`
	TotalIterations   uint64             `json:"totalIterations,string"`
	AvgMinedDuration  time.Duration      `json:"avgMinedDuration"`
	LastDuration      time.Duration      `json:"lastDuration"`
	MinedTransactions uint64             `json:"minedTransactions,string"`
	HashRate          float64            `json:"hashRate"`
	UpdateTimestamp   int64              `json:"updateTimestamp"`
}

func NewMiningStats(window int) *MiningStats {
	if window < 1 {
		window = 1
	}
	s := &MiningStats{}
	s.RoundsByOutcome = make(map[Outcome]uint64)
	s.hashRate = movavg.NewSMA(window)
	return s
}

func (s *MiningStats) Start() {
	s.Lock()
	s.started = true
	s.Unlock()
}

func (s *MiningStats) Stop() {
	s.Lock()
	s.started = false
	s.Unlock()
}

// Record adds a round. Rounds recorded while stopped are ignored.
func (s *MiningStats) Record(r Round) {
	s.Lock()
	defer s.Unlock()

	if !s.started {
		return
	}

	s.TotalRounds++
	s.TotalIterations += r.Iterations
	s.RoundsByOutcome[r.Outcome]++
	s.LastDuration = int64(r.Duration)
	s.UpdateTimestamp = time.Now().UnixNano() / int64(time.Millisecond)

	if r.Outcome == Mined {
		mined := s.RoundsByOutcome[Mined]
		sumDuration := s.AvgMinedDuration*int64(mined-1) + int64(r.Duration)
		s.AvgMinedDuration = sumDuration / int64(mined)
		s.MinedTransactions += uint64(r.Transactions)
	}

	if r.Duration > 0 {
		s.hashRate.Add(float64(r.Iterations) / r.Duration.Seconds())
		s.hashSamples++
	}
}

// HashRate returns the moving average of hashes per second.
func (s *MiningStats) HashRate() float64 {
	s.Lock()
	defer s.Unlock()
	return s.avgHashRate()
}

func (s *MiningStats) avgHashRate() float64 {
	if s.hashSamples == 0 {
		return 0
	}
	return s.hashRate.Avg()
}

func (s *MiningStats) Snapshot() Snapshot {
	s.Lock()
	defer s.Unlock()

	byOutcome := make(map[Outcome]uint64, len(s.RoundsByOutcome))
	for k, v := range s.RoundsByOutcome {
		byOutcome[k] = v
	}
	return Snapshot{
		RoundsByOutcome:   byOutcome,
		TotalRounds:       s.TotalRounds,
		TotalIterations:   s.TotalIterations,
		AvgMinedDuration:  time.Duration(s.AvgMinedDuration),
		LastDuration:      time.Duration(s.LastDuration),
		MinedTransactions: s.MinedTransactions,
		HashRate:          s.avgHashRate(),
		UpdateTimestamp:   s.UpdateTimestamp}
}
