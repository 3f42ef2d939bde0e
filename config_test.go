package blockchain_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	. "github.com/laszlourszuly/basic-blockchain"
)

var _ = Describe("Config", func() {

	Describe("#ReadConfig", func() {

		It("falls back to the defaults", func() {
			cfg, err := ReadConfig(viper.New())
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg).To(Equal(DefaultConfig()))
			Expect(cfg.Difficulty).To(Equal(Difficulty("000")))
		})

		It("reads every key", func() {
			v := viper.New()
			v.SetConfigType("yaml")
			err := v.ReadConfig(strings.NewReader(`
blockchain:
  difficulty: "00"
  queue:
    hint: 8
  genesis:
    mineOnStart: true
  stats:
    window: 4
  metrics:
    prefix: "node1 - "
`))
			Expect(err).ToNot(HaveOccurred())

			cfg, err := ReadConfig(v)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg).To(Equal(Config{
				Difficulty:  "00",
				QueueHint:   8,
				MineGenesis: true,
				StatsWindow: 4,
				MetricsName: "node1 - "}))
		})

		It("rejects an invalid difficulty", func() {
			v := viper.New()
			v.Set(KeyDifficulty, "00x")
			_, err := ReadConfig(v)
			Expect(errors.Is(err, ErrInvalidDifficulty)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(KeyDifficulty))
		})

		It("rejects non-positive sizes", func() {
			v := viper.New()
			v.Set(KeyQueueHint, 0)
			_, err := ReadConfig(v)
			Expect(err).To(HaveOccurred())

			v = viper.New()
			v.Set(KeyStatsWindow, -1)
			_, err = ReadConfig(v)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("#NewEngine", func() {

		It("validates the configuration", func() {
			cfg := DefaultConfig()
			cfg.Difficulty = "1"
			_, err := NewEngine(cfg)
			Expect(errors.Is(err, ErrInvalidDifficulty)).To(BeTrue())
		})
	})
})
