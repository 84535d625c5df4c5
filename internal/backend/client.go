package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/xeipuuv/gojsonschema"

	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/domain"
	"github.com/carson-networks/banking-core/internal/metrics"
)

const maxResponseBytes = 1 << 20

// Session identifies the signed-in user. It is handed to the client at
// construction and never read from global state.
type Session struct {
	Token   string
	OwnerID string
}

// TransferRequest is the body of a transfer submission.
type TransferRequest struct {
	FromAccountID   string
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
}

// TransferResult is the backend's answer to a transfer. Exactly one of
// OTPRequired or Transaction is meaningful.
type TransferResult struct {
	OTPRequired   bool
	TransactionID string
	Message       string
	Transaction   *domain.Transaction
}

// Client talks to the banking backend over REST.
type Client struct {
	baseURL string
	timeout time.Duration
	session Session
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *logrus.Logger
	metrics metrics.Collector
}

func NewClient(cfg *config.Config, session Session, logger *logrus.Logger, collector metrics.Collector) *Client {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BackendURL, "/"),
		timeout: cfg.BackendTimeout,
		session: session,
		http:    &http.Client{},
		logger:  logger,
		metrics: collector,
	}

	failures := cfg.BreakerFailures
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "backend",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Business answers are healthy responses.
		IsSuccessful: func(err error) bool {
			return !errors.Is(err, ErrTransport)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("BackendClient.CircuitBreaker.stateChange")

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			c.metrics.RecordCircuitState(name, state)
		},
	})

	return c
}

// Session returns the session the client was built with.
func (c *Client) Session() Session {
	return c.session
}

// Transfer submits a transfer. The backend either completes it or asks for
// an OTP challenge.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	body := transferRequest{
		FromAccountID:   req.FromAccountID,
		ToAccountNumber: req.ToAccountNumber,
		Amount:          req.Amount,
		Description:     req.Description,
	}

	var resp transferResponse
	if err := c.do(ctx, "transfer", http.MethodPost, "/transfer", body, transferResponseSchema, &resp); err != nil {
		return nil, err
	}

	if resp.OTPRequired {
		return &TransferResult{
			OTPRequired:   true,
			TransactionID: resp.TransactionID,
			Message:       resp.Message,
		}, nil
	}

	txn, err := resp.Transaction.toDomain()
	if err != nil {
		return nil, &TransportError{Op: "transfer", Err: fmt.Errorf("malformed transaction: %w", err)}
	}
	return &TransferResult{TransactionID: txn.ID, Transaction: txn}, nil
}

// VerifyOTP submits the code for a challenged transaction.
func (c *Client) VerifyOTP(ctx context.Context, transactionID, code string) (*domain.Transaction, error) {
	body := verifyOTPRequest{TransactionID: transactionID, OTPCode: code}

	var resp transactionEnvelope
	if err := c.do(ctx, "verify-otp", http.MethodPost, "/verify-otp", body, transactionResponseSchema, &resp); err != nil {
		return nil, err
	}

	txn, err := resp.Transaction.toDomain()
	if err != nil {
		return nil, &TransportError{Op: "verify-otp", Err: fmt.Errorf("malformed transaction: %w", err)}
	}
	return txn, nil
}

// GetTransaction fetches a transaction by one backend key. Unknown keys
// return an error matching domain.ErrNotFound.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var resp transactionEnvelope
	path := "/transaction/" + url.PathEscape(id)
	if err := c.do(ctx, "get-transaction", http.MethodGet, path, nil, transactionResponseSchema, &resp); err != nil {
		return nil, err
	}

	txn, err := resp.Transaction.toDomain()
	if err != nil {
		return nil, &TransportError{Op: "get-transaction", Err: fmt.Errorf("malformed transaction: %w", err)}
	}
	return txn, nil
}

// ListAccounts returns the session owner's accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var resp accountsEnvelope
	if err := c.do(ctx, "list-accounts", http.MethodGet, "/accounts", nil, accountsResponseSchema, &resp); err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(resp.Accounts))
	for _, dto := range resp.Accounts {
		account, err := dto.toDomain()
		if err != nil {
			return nil, &TransportError{Op: "list-accounts", Err: fmt.Errorf("malformed account: %w", err)}
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, reqBody any, schema *gojsonschema.Schema, out any) error {
	start := time.Now()

	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, path, reqBody, schema, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &TransportError{Op: op, Err: err}
	}

	c.metrics.RecordBackendCall(op, classify(err), time.Since(start))
	if err != nil {
		c.logger.WithError(err).WithField("operation", op).Debug("BackendClient.Do.error")
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, reqBody any, schema *gojsonschema.Schema, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", op, path, domain.ErrNotFound)
	case resp.StatusCode >= 500:
		return &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))}
	case resp.StatusCode >= 400:
		return &RejectedError{Op: op, Status: resp.StatusCode, Reason: rejectionReason(payload)}
	case resp.StatusCode >= 300:
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response: %s", strings.Join(details, "; "))}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func rejectionReason(payload []byte) string {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil && body.reason() != "" {
		return body.reason()
	}
	return strings.TrimSpace(string(payload))
}

func classify(err error) metrics.Outcome {
	var rejected *RejectedError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &rejected):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeTransport
	}
}
