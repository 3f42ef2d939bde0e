package main

import (
	"fmt"
	"strings"
)

// transfer is one transaction to submit, stamped with the time of
// submission.
type transfer struct {
	sender   string
	receiver string
	payload  string
}

func (t transfer) String() string {
	return fmt.Sprintf("%s -> %s: %s", t.sender, t.receiver, t.payload)
}

// parseTransfer reads a "sender:receiver:payload" argument. The payload may
// itself contain colons.
func parseTransfer(arg string) (transfer, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		return transfer{}, fmt.Errorf("transfer %q: want sender:receiver:payload", arg)
	}
	return transfer{sender: parts[0], receiver: parts[1], payload: parts[2]}, nil
}

// demoTransfers generates n transfers between a handful of accounts.
func demoTransfers(n int) []transfer {
	ts := make([]transfer, n)
	for i := range ts {
		ts[i] = transfer{
			sender:   fmt.Sprintf("account-%d", i%5),
			receiver: fmt.Sprintf("account-%d", (i+1)%5),
			payload:  fmt.Sprintf("%d coins (demo %d)", 1+i%10, i)}
	}
	return ts
}

// collectTransfers parses args and appends demo generated transfers.
func collectTransfers(args []string, demo int) ([]transfer, error) {
	transfers := make([]transfer, 0, len(args)+demo)
	for _, arg := range args {
		t, err := parseTransfer(arg)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return append(transfers, demoTransfers(demo)...), nil
}

// batches splits transfers into at most n groups of near equal size, in
// order. Every group is non-empty.
func batches(transfers []transfer, n int) [][]transfer {
	if n < 1 || len(transfers) == 0 {
		return nil
	}
	if n > len(transfers) {
		n = len(transfers)
	}
	out := make([][]transfer, 0, n)
	size, rest := len(transfers)/n, len(transfers)%n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rest {
			end++
		}
		out = append(out, transfers[start:end])
		start = end
	}
	return out
}
