package blockchain_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/laszlourszuly/basic-blockchain"
	"github.com/laszlourszuly/basic-blockchain/mock"
	"github.com/laszlourszuly/basic-blockchain/stats"
)

var _ = Describe("Reports", func() {
	var e *Engine

	BeforeEach(func() {
		e = newEngine("0")
		mineNow(e)
		submit(e, mock.NewTransfer(0))
		submit(e, mock.NewTransfer(1))
		mineNow(e)
		submit(e, mock.NewTransfer(1))
		submit(e, mock.NewTransfer(2))
	})

	AfterEach(func() {
		e.Stop()
	})

	Describe("#LedgerTree", func() {

		It("renders blocks and transactions as text", func() {
			text, err := e.LedgerTree("text")
			Expect(err).ToNot(HaveOccurred())
			Expect(text).To(ContainSubstring(`ledger (difficulty "0", 2 blocks)`))
			Expect(text).To(ContainSubstring("block 0:"))
			Expect(text).To(ContainSubstring("block 1:" + e.GetBlocks(nil)[1].Hash()[:6]))
			Expect(text).To(ContainSubstring("sender-0 -> receiver-0: 10 coins"))
		})

		It("renders JSON", func() {
			j, err := e.LedgerTree("json")
			Expect(err).ToNot(HaveOccurred())

			var doc struct {
				Difficulty string
				Height     int
				Blocks     []struct {
					ID           string
					BlockNumber  string
					IsLocal      bool
					Transactions []struct{ ID string }
				}
			}
			Expect(json.Unmarshal([]byte(j), &doc)).To(Succeed())
			Expect(doc.Difficulty).To(Equal("0"))
			Expect(doc.Height).To(Equal(2))
			Expect(doc.Blocks).To(HaveLen(2))
			Expect(doc.Blocks[1].BlockNumber).To(Equal("1"))
			Expect(doc.Blocks[1].IsLocal).To(BeTrue())
			Expect(doc.Blocks[1].ID).To(Equal(e.GetBlocks(nil)[1].Hash()))
			Expect(doc.Blocks[1].Transactions).To(HaveLen(2))
		})

		It("marks blocks received from peers as not local", func() {
			peer := mock.Extend("0", e.GetBlocks(nil), 1, 1)
			Expect(e.SubmitCandidateBlock(peer[2])).To(BeTrue())

			j, err := e.LedgerTree("json")
			Expect(err).ToNot(HaveOccurred())
			var doc struct{ Blocks []struct{ IsLocal bool } }
			Expect(json.Unmarshal([]byte(j), &doc)).To(Succeed())
			Expect(doc.Blocks[2].IsLocal).To(BeFalse())
		})

		It("rejects unknown formats", func() {
			_, err := e.LedgerTree("xml")
			Expect(err).To(Equal(ErrUnknownFormat))
		})
	})

	Describe("#Metrics", func() {

		It("counts submissions and blocks as text", func() {
			text, err := e.Metrics("text")
			Expect(err).ToNot(HaveOccurred())
			Expect(text).To(ContainSubstring("transactions accepted"))
			Expect(text).To(ContainSubstring("blocks mined"))
			Expect(text).To(ContainSubstring("ledger height"))
		})

		It("renders JSON", func() {
			j, err := e.Metrics("json")
			Expect(err).ToNot(HaveOccurred())

			var doc map[string]map[string]interface{}
			Expect(json.Unmarshal([]byte(j), &doc)).To(Succeed())

			var accepted, duplicate, height map[string]interface{}
			for name, m := range doc {
				switch {
				case strings.HasSuffix(name, "transactions accepted"):
					accepted = m
				case strings.HasSuffix(name, "transactions duplicate"):
					duplicate = m
				case strings.HasSuffix(name, "ledger height"):
					height = m
				}
			}
			Expect(accepted).To(HaveKeyWithValue("count", 3.0))
			Expect(duplicate).To(HaveKeyWithValue("count", 1.0))
			Expect(height).To(HaveKeyWithValue("value", 2.0))
		})

		It("rejects unknown formats", func() {
			_, err := e.Metrics("xml")
			Expect(err).To(Equal(ErrUnknownFormat))
		})
	})

	Describe("#Stats", func() {

		It("records mined rounds", func() {
			s := e.Stats()
			Expect(s.TotalRounds).To(Equal(uint64(2)))
			Expect(s.RoundsByOutcome[stats.Mined]).To(Equal(uint64(2)))
			Expect(s.MinedTransactions).To(Equal(uint64(2)))
			Expect(s.TotalIterations).To(BeNumerically(">=", 2))
		})
	})
})
