package ledger

import (
	"encoding/json"
	"fmt"
)

// ClockObjectID is the fixed system clock object passed to every mutation
// that records a timestamp.
const ClockObjectID = "0x6"

// Call is one entry-point invocation inside a transaction.
type Call struct {
	Package  string `json:"package"`
	Module   string `json:"module"`
	Function string `json:"function"`
	Args     []any  `json:"args"`
}

// Transaction is a built, unsigned ledger transaction. Sender is set only on
// the sponsored path; on the self-paid path it stays empty and the ledger
// attributes ownership from the actual signature.
type Transaction struct {
	Sender    string `json:"sender,omitempty"`
	Calls     []Call `json:"calls"`
	GasBudget uint64 `json:"gasBudget,omitempty"`
}

// Encode produces the canonical byte form that gets signed and submitted.
func (t *Transaction) Encode() ([]byte, error) {
	if len(t.Calls) == 0 {
		return nil, fmt.Errorf("ledger: transaction has no calls")
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("ledger: encode transaction: %w", err)
	}
	return b, nil
}
