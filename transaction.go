package blockchain

import (
	"strconv"
	"strings"
	"time"
)

// Transaction is an immutable record of a value transfer. Its identity is
// the hash of its content, so two transactions are equal iff their IDs match.
type Transaction struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Payload   string `json:"payload"`
	CreatedAt int64  `json:"created_at"` // unix milliseconds
}

// NewTransaction validates the input and builds a transaction. createdAt is
// in unix milliseconds; zero or less means "not supplied" and is replaced
// with the current time.
func NewTransaction(sender, receiver, payload string, createdAt int64) (Transaction, error) {
	if sender == "" {
		return Transaction{}, &ValidationError{Field: "sender", Reason: "must not be empty"}
	}
	if receiver == "" {
		return Transaction{}, &ValidationError{Field: "receiver", Reason: "must not be empty"}
	}
	if payload == "" {
		return Transaction{}, &ValidationError{Field: "payload", Reason: "must not be empty"}
	}
	if createdAt <= 0 {
		createdAt = nowMillis()
	}

	return Transaction{
		ID:        transactionID(sender, receiver, payload, createdAt),
		Sender:    sender,
		Receiver:  receiver,
		Payload:   payload,
		CreatedAt: createdAt,
	}, nil
}

// Equal compares transaction identities.
func (t Transaction) Equal(other Transaction) bool {
	return t.ID == other.ID
}

// Verify recomputes the content hash and compares it with ID.
func (t Transaction) Verify() bool {
	return t.ID == transactionID(t.Sender, t.Receiver, t.Payload, t.CreatedAt)
}

func transactionID(sender, receiver, payload string, createdAt int64) string {
	var b strings.Builder
	b.WriteString(sender)
	b.WriteString(receiver)
	b.WriteString(payload)
	b.WriteString(strconv.FormatInt(createdAt, 10))
	return HashString(b.String())
}

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
