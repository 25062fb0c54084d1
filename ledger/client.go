package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/LerianStudio/ledger-sdk-golang/errgroup"
	"github.com/LerianStudio/ledger-sdk-golang/log"
	"github.com/LerianStudio/ledger-sdk-golang/resilience"
	"github.com/LerianStudio/ledger-sdk-golang/retry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrNilTransport is returned when constructing a client without a transport.
	ErrNilTransport = errors.New("ledger: transport is nil")
	// ErrNilSender is returned when constructing a client without a sender.
	ErrNilSender = errors.New("ledger: sender is nil")
)

// defaultBatchConcurrency bounds GetAccounts fan-out.
const defaultBatchConcurrency = 8

var transactionValidator = validator.New(validator.WithRequiredStructEnabled())

// Client is the resilient facade over the ledger service.
type Client struct {
	transport        Transport
	sender           *resilience.Sender
	logger           log.Logger
	batchConcurrency int
	submitPolicy     retry.Policy
	readPolicy       retry.Policy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the client's logger.
func WithClientLogger(logger log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBatchConcurrency bounds the number of in-flight reads during
// GetAccounts. Values below 1 are ignored.
func WithBatchConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n >= 1 {
			c.batchConcurrency = n
		}
	}
}

// WithSubmitPolicy overrides the critical policy used for submissions.
func WithSubmitPolicy(policy retry.Policy) ClientOption {
	return func(c *Client) {
		c.submitPolicy = policy
	}
}

// WithReadPolicy overrides the read-only policy used for reads.
func WithReadPolicy(policy retry.Policy) ClientOption {
	return func(c *Client) {
		c.readPolicy = policy
	}
}

// NewClient wires a transport and a resilient sender into a client.
func NewClient(transport Transport, sender *resilience.Sender, opts ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	if sender == nil {
		return nil, ErrNilSender
	}

	c := &Client{
		transport:        transport,
		sender:           sender,
		logger:           &log.NoneLogger{},
		batchConcurrency: defaultBatchConcurrency,
		submitPolicy:     retry.CriticalPolicy(),
		readPolicy:       retry.ReadOnlyPolicy(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SubmitTransaction submits a double-entry transaction under the critical
// retry policy. A missing idempotency key is assigned before the first
// attempt so every retry of the call carries the same key.
func (c *Client) SubmitTransaction(ctx context.Context, tx Transaction) (*SubmitResult, error) {
	if err := transactionValidator.Struct(tx); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	if err := tx.checkBalanced(); err != nil {
		return nil, err
	}

	if tx.IdempotencyKey == "" {
		tx.IdempotencyKey = uuid.NewString()
	}

	c.logger.Debugf("Submitting transaction (idempotency key %s, %d entries)", tx.IdempotencyKey, len(tx.Entries))

	return resilience.Execute(ctx, c.sender, "submit-transaction", c.submitPolicy,
		func(ctx context.Context) (*SubmitResult, error) {
			var result SubmitResult
			if err := c.transport.Call(ctx, "ledger.submitTransaction", tx, &result); err != nil {
				return nil, err
			}

			return &result, nil
		})
}

// GetAccount fetches one account under the read-only retry policy.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	return resilience.Execute(ctx, c.sender, "get-account", c.readPolicy,
		func(ctx context.Context) (*Account, error) {
			var account Account

			params := map[string]string{"accountId": accountID}
			if err := c.transport.Call(ctx, "ledger.getAccount", params, &account); err != nil {
				return nil, err
			}

			return &account, nil
		})
}

// GetBalance fetches one account's balance under the read-only retry policy.
func (c *Client) GetBalance(ctx context.Context, accountID string) (*Balance, error) {
	account, err := c.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &account.Balance, nil
}

// GetAccounts fetches several accounts concurrently, preserving input order.
// The first failing fetch cancels the remaining ones.
func (c *Client) GetAccounts(ctx context.Context, accountIDs []string) ([]*Account, error) {
	accounts := make([]*Account, len(accountIDs))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLogger(c.logger)

	sem := make(chan struct{}, c.batchConcurrency)

	for i, accountID := range accountIDs {
		i, accountID := i, accountID

		grp.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			account, err := c.GetAccount(ctx, accountID)
			if err != nil {
				return fmt.Errorf("get account %s: %w", accountID, err)
			}

			accounts[i] = account

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return accounts, nil
}
