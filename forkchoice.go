package blockchain

import "github.com/golang/glog"

// Outcome is the verdict of ForkChoice on a candidate chain.
type Outcome int

const (
	Accepted Outcome = iota
	RejectedShorterOrEqual
	RejectedInvalid
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedShorterOrEqual:
		return "rejected: not longer"
	case RejectedInvalid:
		return "rejected: invalid"
	default:
		return "unknown"
	}
}

// ForkChoice applies the longest-valid-chain rule. Only strictly longer
// candidates are considered, so ties keep the incumbent and nodes do not
// oscillate between equally long chains. An accepted candidate replaces the
// local chain as a whole; there is no partial reorganization.
type ForkChoice struct {
	validator *ChainValidator
}

func NewForkChoice(validator *ChainValidator) *ForkChoice {
	return &ForkChoice{validator: validator}
}

// Consider decides whether candidate should replace local. It never
// modifies either argument.
func (f *ForkChoice) Consider(local, candidate []Block) Outcome {
	if len(candidate) <= len(local) {
		glog.V(2).Infof("Consider: candidate length %d, local length %d", len(candidate), len(local))
		return RejectedShorterOrEqual
	}

	if err := f.validator.CheckGenesis(candidate[0]); err != nil {
		glog.V(1).Infof("Consider: candidate rejected: %v", err)
		return RejectedInvalid
	}

	if err := f.validator.CheckChain(candidate); err != nil {
		glog.V(1).Infof("Consider: candidate rejected: %v", err)
		return RejectedInvalid
	}

	return Accepted
}
