package blockchain_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/laszlourszuly/basic-blockchain"
	"github.com/laszlourszuly/basic-blockchain/mock"
)

var _ = Describe("Transaction", func() {

	Describe("#NewTransaction", func() {

		It("derives the id from the content", func() {
			tx, err := NewTransaction("A", "B", "x", 1600000000000)
			Expect(err).ToNot(HaveOccurred())
			Expect(tx.Sender).To(Equal("A"))
			Expect(tx.Receiver).To(Equal("B"))
			Expect(tx.Payload).To(Equal("x"))
			Expect(tx.CreatedAt).To(Equal(int64(1600000000000)))
			Expect(tx.ID).To(Equal(HashString("ABx1600000000000")))
		})

		It("stamps the current time when createdAt is not set", func() {
			tx, err := NewTransaction("A", "B", "x", 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(tx.CreatedAt).To(BeNumerically(">", mock.BaseTimestamp))
		})

		It("rejects empty fields", func() {
			for _, in := range [][3]string{{"", "B", "x"}, {"A", "", "x"}, {"A", "B", ""}} {
				_, err := NewTransaction(in[0], in[1], in[2], 1)
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
			}

			_, err := NewTransaction("", "B", "x", 1)
			Expect(err.(*ValidationError).Field).To(Equal("sender"))
			Expect(err.Error()).To(Equal("invalid sender: must not be empty"))
		})

		It("gives different timestamps different ids", func() {
			t1, _ := NewTransaction("A", "B", "x", 1)
			t2, _ := NewTransaction("A", "B", "x", 2)
			Expect(t1.Equal(t2)).To(BeFalse())
		})
	})

	Describe("#Verify", func() {

		It("detects altered content", func() {
			tx := mock.NewTransaction(1)
			Expect(tx.Verify()).To(BeTrue())

			tx.Payload = "1000000 coins"
			Expect(tx.Verify()).To(BeFalse())
		})
	})
})

var _ = Describe("TransactionPool", func() {

	Describe("#SubmitAt", func() {

		It("adds new transactions and reports duplicates", func() {
			p := NewTransactionPool()
			tx, added, err := p.SubmitAt("A", "B", "x", 42)
			Expect(err).ToNot(HaveOccurred())
			Expect(added).To(BeTrue())
			Expect(p.Len()).To(Equal(1))
			Expect(p.Contains(tx.ID)).To(BeTrue())

			again, added, err := p.SubmitAt("A", "B", "x", 42)
			Expect(err).ToNot(HaveOccurred())
			Expect(added).To(BeFalse())
			Expect(again.ID).To(Equal(tx.ID))
			Expect(p.Len()).To(Equal(1))
		})

		It("returns validation errors without touching the pool", func() {
			p := NewTransactionPool()
			_, added, err := p.Submit("A", "", "x")
			Expect(err).To(HaveOccurred())
			Expect(added).To(BeFalse())
			Expect(p.Len()).To(Equal(0))
		})
	})

	Describe("#Snapshot", func() {

		It("keeps insertion order and is detached", func() {
			p := NewTransactionPool()
			txs := mock.Transactions(0, 5)
			for i := len(txs) - 1; i >= 0; i-- {
				Expect(p.Add(txs[i])).To(BeTrue())
			}

			snapshot := p.Snapshot()
			Expect(snapshot).To(HaveLen(5))
			for i := range snapshot {
				Expect(snapshot[i]).To(Equal(txs[len(txs)-1-i]))
			}

			snapshot[0].Payload = "changed"
			Expect(p.Snapshot()[0].Payload).ToNot(Equal("changed"))
		})
	})

	Describe("#Remove", func() {

		It("removes ids and keeps the order of the rest", func() {
			p := NewTransactionPool()
			txs := mock.Transactions(0, 4)
			for _, tx := range txs {
				p.Add(tx)
			}

			n := p.Remove(map[string]struct{}{txs[1].ID: {}, txs[3].ID: {}, "unknown": {}})
			Expect(n).To(Equal(2))
			Expect(p.Snapshot()).To(Equal([]Transaction{txs[0], txs[2]}))
			Expect(p.Contains(txs[1].ID)).To(BeFalse())

			// a removed transaction may be added again
			Expect(p.Add(txs[1])).To(BeTrue())
		})

		It("removes the transactions of blocks", func() {
			p := NewTransactionPool()
			txs := mock.Transactions(0, 3)
			for _, tx := range txs {
				p.Add(tx)
			}

			n := p.RemoveBlocks([]Block{{Transactions: txs[:2]}, {Transactions: nil}})
			Expect(n).To(Equal(2))
			Expect(p.Snapshot()).To(Equal(txs[2:]))
		})
	})
})
