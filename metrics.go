package blockchain

import (
	"strings"
	"time"

	mtr "github.com/rcrowley/go-metrics"
)

type metricItems struct {
	TxAccepted       mtr.Counter
	TxDuplicate      mtr.Counter
	TxInvalid        mtr.Counter
	BlocksMined      mtr.Counter
	BlocksAppended   mtr.Counter
	BlocksRejected   mtr.Counter
	ChainsAccepted   mtr.Counter
	ChainsRejected   mtr.Counter
	MiningCancelled  mtr.Counter
	MiningStale      mtr.Counter
	MiningDuration   mtr.Histogram
	MiningIterations mtr.Histogram
	Height           mtr.Gauge
	Pending          mtr.Gauge
	Hashes           mtr.Meter
	registry         mtr.Registry
}

func newMetrics(prefix string) *metricItems {
	m := &metricItems{}

	registry := mtr.NewPrefixedRegistry(prefix)
	m.registry = registry

	m.TxAccepted = mtr.GetOrRegisterCounter("transactions accepted", registry)
	m.TxDuplicate = mtr.GetOrRegisterCounter("transactions duplicate", registry)
	m.TxInvalid = mtr.GetOrRegisterCounter("transactions invalid", registry)
	m.BlocksMined = mtr.GetOrRegisterCounter("blocks mined", registry)
	m.BlocksAppended = mtr.GetOrRegisterCounter("blocks appended", registry)
	m.BlocksRejected = mtr.GetOrRegisterCounter("blocks rejected", registry)
	m.ChainsAccepted = mtr.GetOrRegisterCounter("chains accepted", registry)
	m.ChainsRejected = mtr.GetOrRegisterCounter("chains rejected", registry)
	m.MiningCancelled = mtr.GetOrRegisterCounter("mining cancelled", registry)
	m.MiningStale = mtr.GetOrRegisterCounter("mining stale", registry)
	m.MiningDuration = mtr.GetOrRegisterHistogram("mining duration ms", registry, mtr.NewUniformSample(500))
	m.MiningIterations = mtr.GetOrRegisterHistogram("mining iterations", registry, mtr.NewUniformSample(500))
	m.Height = mtr.GetOrRegisterGauge("ledger height", registry)
	m.Pending = mtr.GetOrRegisterGauge("pending transactions", registry)
	m.Hashes = mtr.GetOrRegisterMeter("hashes", registry)

	return m
}

func (m *metricItems) searched(res SearchResult) {
	m.MiningDuration.Update(int64(res.Duration / time.Millisecond))
	m.MiningIterations.Update(int64(res.Iterations))
	m.Hashes.Mark(int64(res.Iterations))
}

func (m *metricItems) publish(l *Ledger, p *TransactionPool) {
	m.Height.Update(int64(l.Len()))
	m.Pending.Update(int64(p.Len()))
}

// write renders the registry once in the given format.
func (m *metricItems) write(format string) (string, error) {
	builder := &strings.Builder{}
	switch format {
	case "text":
		mtr.WriteOnce(m.registry, builder)

	case "json":
		mtr.WriteJSONOnce(m.registry, builder)

	default:
		return "", ErrUnknownFormat
	}
	return builder.String(), nil
}
