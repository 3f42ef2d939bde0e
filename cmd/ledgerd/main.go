// Command ledgerd runs a single ledger engine: it mines a genesis block,
// records the transfers given on the command line, mines them into blocks
// and prints the resulting ledger.
//
//	ledgerd [flags] sender:receiver:payload ...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	blockchain "github.com/laszlourszuly/basic-blockchain"
)

func main() {
	pflag.String("difficulty", "", "leading zero hex digits required of block hashes, e.g. 000")
	pflag.String("config", "", "optional configuration file")
	pflag.Int("blocks", 1, "spread the transfers over this many blocks")
	pflag.Int("demo", 0, "number of generated transfers to submit in addition to the arguments")
	pflag.Duration("timeout", time.Minute, "give up mining a block after this long")
	pflag.String("format", "text", "ledger output format, text or json")
	pflag.Bool("metrics", false, "print the engine metrics")
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	// glog reads its settings from the go flag set
	flag.CommandLine.Parse([]string{})
	defer glog.Flush()

	v := viper.New()
	if err := configure(v); err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}

	transfers, err := collectTransfers(pflag.Args(), v.GetInt("demo"))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}

	if err := run(v, transfers); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func configure(v *viper.Viper) error {
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return err
	}
	if f := pflag.Lookup("difficulty"); f.Changed {
		v.Set(blockchain.KeyDifficulty, f.Value.String())
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
	}
	return nil
}

func run(v *viper.Viper, transfers []transfer) error {
	cfg, err := blockchain.ReadConfig(v)
	if err != nil {
		return err
	}

	e, err := blockchain.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Stop()

	pterm.DefaultSection.Printfln("Ledger with difficulty %q", cfg.Difficulty)

	timeout := v.GetDuration("timeout")
	if !cfg.MineGenesis {
		if err := mine(e, "genesis block", timeout); err != nil {
			return err
		}
	}
	waitForGenesis(e, timeout)

	for i, batch := range batches(transfers, v.GetInt("blocks")) {
		for _, t := range batch {
			res := e.SubmitTransaction(t.sender, t.receiver, t.payload)
			switch res.Status {
			case blockchain.TxAccepted:
				pterm.Info.Printfln("Accepted %s", t)
			case blockchain.TxDuplicate:
				pterm.Warning.Printfln("Duplicate %s", t)
			default:
				pterm.Warning.Printfln("Rejected %s -> %s: %s", t.sender, t.receiver, res.Reason)
			}
		}
		if err := mine(e, fmt.Sprintf("block %d of %d", i+1, v.GetInt("blocks")), timeout); err != nil {
			return err
		}
	}

	tree, err := e.LedgerTree(v.GetString("format"))
	if err != nil {
		return err
	}
	pterm.Println(tree)

	if v.GetBool("metrics") {
		m, err := e.Metrics(v.GetString("format"))
		if err != nil {
			return err
		}
		pterm.Println(m)
	}

	return printSummary(e)
}

func mine(e *blockchain.Engine, what string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, done := e.RequestMine(ctx)
	if res != blockchain.Started {
		pterm.Info.Printfln("Not mining %s: %s", what, res)
		return nil
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining %s...", what))
	block := <-done
	if block == nil {
		spinner.Fail(fmt.Sprintf("Mining %s did not complete within %s", what, timeout))
		return blockchain.ErrMiningCancelled
	}
	spinner.Success(fmt.Sprintf("Mined block %d with nonce %d", block.Index, block.Nonce))
	return nil
}

func waitForGenesis(e *blockchain.Engine, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for e.Height() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

func printSummary(e *blockchain.Engine) error {
	s := e.Stats()
	valid := "yes"
	if !e.Validator().VerifyChain(e.GetBlocks(nil)) {
		valid = "NO"
	}

	data := pterm.TableData{
		{"height", "pending", "rounds", "hashes", "hash rate", "avg block time", "chain valid"},
		{
			fmt.Sprint(e.Height()),
			fmt.Sprint(len(e.GetPendingTransactions())),
			fmt.Sprint(s.TotalRounds),
			fmt.Sprint(s.TotalIterations),
			fmt.Sprintf("%.0f H/s", s.HashRate),
			s.AvgMinedDuration.String(),
			valid,
		},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
