package blockchain_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/laszlourszuly/basic-blockchain"
	"github.com/laszlourszuly/basic-blockchain/mock"
)

// breakProof returns b with a nonce whose hash misses the difficulty.
func breakProof(d Difficulty, b Block) Block {
	b = b.Copy()
	for b.Nonce = 0; d.MetBy(b.Hash()); b.Nonce++ {
	}
	return b
}

func copyChain(chain []Block) []Block {
	c := make([]Block, len(chain))
	for i, b := range chain {
		c[i] = b.Copy()
	}
	return c
}

var _ = Describe("ChainValidator", func() {
	var (
		d     Difficulty = "00"
		v     *ChainValidator
		chain []Block
	)

	BeforeEach(func() {
		v = NewChainValidator(d)
		chain = mock.Chain(d, 4, 2)
	})

	Describe("#VerifyChain", func() {

		It("accepts a mined chain", func() {
			Expect(v.VerifyChain(chain)).To(BeTrue())
			for i, b := range chain {
				Expect(b.Index).To(Equal(uint64(i)))
			}
		})

		It("accepts empty and genesis-only chains", func() {
			Expect(v.VerifyChain(nil)).To(BeTrue())
			Expect(v.VerifyChain(chain[:1])).To(BeTrue())
		})

		It("rejects a chain with an altered transaction id", func() {
			tampered := copyChain(chain)
			tampered[1].Transactions[0].ID = HashString("forged")
			Expect(v.VerifyChain(tampered)).To(BeFalse())

			err := v.CheckChain(tampered)
			Expect(IsInvalidChain(err)).To(BeTrue())
			var cerr *ChainError
			Expect(errors.As(err, &cerr)).To(BeTrue())
		})

		It("rejects a tip block with insufficient proof", func() {
			tampered := copyChain(chain)
			tampered[3] = breakProof(d, tampered[3])
			Expect(v.VerifyChain(tampered)).To(BeFalse())
		})

		It("does not re-validate transaction content", func() {
			tampered := copyChain(chain)
			tampered[2].Transactions[0].Payload = "1000000 coins"
			Expect(v.VerifyChain(tampered)).To(BeTrue())
			Expect(tampered[2].Transactions[0].Verify()).To(BeFalse())
		})

		It("depends on the difficulty", func() {
			Expect(NewChainValidator("0000000000").VerifyChain(chain)).To(BeFalse())
			Expect(NewChainValidator("").VerifyChain(chain)).To(BeTrue())
		})
	})

	Describe("#VerifyLink", func() {

		It("accepts consecutive mined blocks", func() {
			Expect(v.VerifyLink(chain[0], chain[1])).To(BeTrue())
			Expect(v.VerifyLink(chain[2], chain[3])).To(BeTrue())
		})

		It("rejects a wrong index", func() {
			b := chain[2].Copy()
			b.Index = 5
			b = mock.Remine(d, b)
			Expect(v.VerifyLink(chain[1], b)).To(BeFalse())
			Expect(v.VerifyLink(chain[0], chain[2])).To(BeFalse())
		})

		It("rejects a wrong previous hash", func() {
			b := chain[2].Copy()
			b.PreviousHash = chain[0].Hash()
			b = mock.Remine(d, b)
			Expect(v.VerifyLink(chain[1], b)).To(BeFalse())
		})

		It("rejects a parent with insufficient proof", func() {
			parent := breakProof(d, chain[1])
			child := chain[2].Copy()
			child.PreviousHash = parent.Hash()
			child = mock.Remine(d, child)
			Expect(v.VerifyLink(parent, child)).To(BeFalse())
		})

		It("rejects a child with insufficient proof", func() {
			Expect(v.VerifyLink(chain[1], breakProof(d, chain[2]))).To(BeFalse())
		})
	})

	Describe("#CheckGenesis", func() {

		It("accepts a mined genesis block", func() {
			Expect(v.CheckGenesis(chain[0])).To(Succeed())
		})

		It("rejects other blocks", func() {
			Expect(IsInvalidChain(v.CheckGenesis(chain[1]))).To(BeTrue())
			Expect(IsInvalidChain(v.CheckGenesis(breakProof(d, chain[0])))).To(BeTrue())

			g := chain[0].Copy()
			g.PreviousHash = "00"
			Expect(v.CheckGenesis(mock.Remine(d, g))).ToNot(Succeed())
		})
	})
})

var _ = Describe("ForkChoice", func() {
	var (
		d     Difficulty = "00"
		f     *ForkChoice
		local []Block
	)

	BeforeEach(func() {
		f = NewForkChoice(NewChainValidator(d))
		local = mock.Chain(d, 3, 1)
	})

	Describe("#Consider", func() {

		It("rejects shorter or equal candidates regardless of validity", func() {
			before := copyChain(local)

			Expect(f.Consider(local, mock.Chain(d, 2, 1))).To(Equal(RejectedShorterOrEqual))
			Expect(f.Consider(local, mock.ExtendFrom(d, local[:1], 2, 1, 500))).To(Equal(RejectedShorterOrEqual))
			Expect(f.Consider(local, []Block{breakProof(d, local[0]), local[2], local[1]})).To(Equal(RejectedShorterOrEqual))
			Expect(f.Consider(local, nil)).To(Equal(RejectedShorterOrEqual))
			Expect(local).To(Equal(before))
		})

		It("accepts a strictly longer valid candidate", func() {
			Expect(f.Consider(local, mock.Extend(d, local, 1, 1))).To(Equal(Accepted))
			Expect(f.Consider(local, mock.Chain(d, 5, 3))).To(Equal(Accepted))
			Expect(f.Consider(nil, local[:1])).To(Equal(Accepted))
		})

		It("rejects a longer candidate with an altered transaction id", func() {
			before := copyChain(local)
			candidate := mock.Extend(d, local, 2, 1)
			candidate[3].Transactions[0].ID = HashString("forged")

			Expect(f.Consider(local, candidate)).To(Equal(RejectedInvalid))
			Expect(local).To(Equal(before))
		})

		It("rejects a longer candidate without a genesis block", func() {
			candidate := mock.Extend(d, local, 2, 1)
			Expect(f.Consider(local[:1], candidate[1:])).To(Equal(RejectedInvalid))
		})
	})

	Describe("Outcome", func() {

		It("has readable names", func() {
			Expect(Accepted.String()).To(Equal("accepted"))
			Expect(RejectedShorterOrEqual.String()).To(Equal("rejected: not longer"))
			Expect(RejectedInvalid.String()).To(Equal("rejected: invalid"))
		})
	})
})
