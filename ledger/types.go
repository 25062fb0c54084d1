package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Entry directions.
const (
	OperationDebit  = "DEBIT"
	OperationCredit = "CREDIT"
)

// Balance is an account's position, split between available and held funds.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	OnHold    decimal.Decimal `json:"onHold"`
}

// Account is the remote ledger's view of an account.
type Account struct {
	ID        string  `json:"id"`
	Alias     string  `json:"alias,omitempty"`
	AssetCode string  `json:"assetCode"`
	Balance   Balance `json:"balance"`
}

// Entry is one leg of a transaction.
type Entry struct {
	AccountID string          `json:"accountId" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Operation string          `json:"operation" validate:"required,oneof=DEBIT CREDIT"`
}

// Transaction is a double-entry submission. Debits and credits must balance.
type Transaction struct {
	// IdempotencyKey deduplicates retried submissions server-side. Left
	// empty, the client assigns one before the first attempt so every
	// retry carries the same key.
	IdempotencyKey string         `json:"idempotencyKey,omitempty"`
	AssetCode      string         `json:"assetCode" validate:"required"`
	Entries        []Entry        `json:"entries" validate:"required,min=2,dive"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// checkBalanced verifies the double-entry invariant: per transaction, the
// sum of debit amounts equals the sum of credit amounts and every amount is
// positive.
func (t Transaction) checkBalanced() error {
	debits := decimal.Zero
	credits := decimal.Zero

	for _, entry := range t.Entries {
		if !entry.Amount.IsPositive() {
			return fmt.Errorf("entry for account %s: amount must be positive, got %s", entry.AccountID, entry.Amount)
		}

		switch entry.Operation {
		case OperationDebit:
			debits = debits.Add(entry.Amount)
		case OperationCredit:
			credits = credits.Add(entry.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("unbalanced transaction: debits %s != credits %s", debits, credits)
	}

	return nil
}

// SubmitResult is the service's acknowledgement of a submitted transaction.
type SubmitResult struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}
