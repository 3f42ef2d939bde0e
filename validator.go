package blockchain

import (
	"errors"

	"github.com/golang/glog"
)

// ChainValidator verifies blocks and chains against the linkage and
// proof-of-work rules of one difficulty.
//
// Transaction contents are not checked for authorization: there is no
// signature scheme, so any well-formed transaction is acceptable content.
// A block commits only to transaction IDs, so a transaction whose fields
// were rewritten while its ID was kept is not detected here either. Use
// Transaction.Verify if content integrity matters to the caller.
type ChainValidator struct {
	difficulty Difficulty
}

func NewChainValidator(difficulty Difficulty) *ChainValidator {
	return &ChainValidator{difficulty: difficulty}
}

// Difficulty returns the difficulty the validator enforces.
func (v *ChainValidator) Difficulty() Difficulty {
	return v.difficulty
}

// VerifyLink reports whether child may directly follow parent.
func (v *ChainValidator) VerifyLink(parent, child Block) bool {
	err := v.CheckLink(parent, child)
	if err != nil {
		glog.V(2).Infof("VerifyLink: %v", err)
	}
	return err == nil
}

// CheckLink is VerifyLink with a reason. The child index must be one past
// the parent, both hashes must meet the difficulty and the child must
// reference the parent hash.
func (v *ChainValidator) CheckLink(parent, child Block) error {
	if child.Index != parent.Index+1 {
		return &ChainError{Index: child.Index, Reason: "index does not follow parent " + formatIndex(parent.Index)}
	}

	parentHash := parent.Hash()
	if !v.difficulty.MetBy(parentHash) {
		return &ChainError{Index: parent.Index, Reason: "hash " + shortHash(parentHash) + " does not meet difficulty " + v.difficulty.String()}
	}

	if child.PreviousHash != parentHash {
		return &ChainError{Index: child.Index, Reason: "previous hash does not reference parent " + shortHash(parentHash)}
	}

	childHash := child.Hash()
	if !v.difficulty.MetBy(childHash) {
		return &ChainError{Index: child.Index, Reason: "hash " + shortHash(childHash) + " does not meet difficulty " + v.difficulty.String()}
	}

	return nil
}

// CheckGenesis verifies a block that is to become the first of a chain.
func (v *ChainValidator) CheckGenesis(block Block) error {
	if !block.IsGenesis() {
		return &ChainError{Index: block.Index, Reason: "not a genesis block"}
	}
	hash := block.Hash()
	if !v.difficulty.MetBy(hash) {
		return &ChainError{Index: 0, Reason: "hash " + shortHash(hash) + " does not meet difficulty " + v.difficulty.String()}
	}
	return nil
}

// VerifyChain reports whether every adjacent pair of blocks is a valid
// link. Empty and genesis-only chains are trivially valid.
func (v *ChainValidator) VerifyChain(blocks []Block) bool {
	err := v.CheckChain(blocks)
	if err != nil {
		glog.V(2).Infof("VerifyChain: %v", err)
	}
	return err == nil
}

// CheckChain is VerifyChain with a reason.
func (v *ChainValidator) CheckChain(blocks []Block) error {
	for i := 1; i < len(blocks); i++ {
		if err := v.CheckLink(blocks[i-1], blocks[i]); err != nil {
			return err
		}
	}
	return nil
}

// IsInvalidChain reports whether err stems from chain verification.
func IsInvalidChain(err error) bool {
	return errors.Is(err, ErrInvalidChain)
}
