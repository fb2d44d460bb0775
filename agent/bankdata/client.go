package bankdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "openbank-advisor/agent/contract"
)

type Config struct {
	BaseURL          string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:3000"`
	APIKey           string        `envconfig:"API_KEY" split_words:"true"`
	Timeout          time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TransactionLimit int           `envconfig:"TRANSACTION_LIMIT" split_words:"true" default:"50"`
}

// Client talks to the external banking API. One endpoint per sub-record,
// single attempt per call, no retries.
type Client struct {
	baseURL          string
	apiKey           string
	transactionLimit int
	httpClient       *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("bank api base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := cfg.TransactionLimit
	if limit <= 0 {
		limit = 50
	}

	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		apiKey:           strings.TrimSpace(cfg.APIKey),
		transactionLimit: limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// The OID is interpolated into request paths, so only a conservative charset
// is accepted.
var customerOIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FetchCustomer fetches the requested sub-records concurrently, one remote
// call per field. A failed field is omitted and noted on the record; the call
// as a whole fails only when the OID is malformed or every field failed.
func (c *Client) FetchCustomer(ctx context.Context, customerOID string, fields []Field) (*CustomerRecord, error) {
	if !customerOIDPattern.MatchString(customerOID) {
		return nil, fmt.Errorf("%w: malformed customer oid", contractx.ErrInvalidArguments)
	}
	if len(fields) == 0 {
		fields = AllFields()
	}

	record := &CustomerRecord{CustomerOID: customerOID}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed int
	)
	for _, field := range fields {
		wg.Add(1)
		go func(field Field) {
			defer wg.Done()
			err := c.fetchField(ctx, customerOID, field, record, &mu)
			if err != nil {
				log.Warn().Err(err).
					Str("customer_oid", customerOID).
					Str("field", string(field)).
					Msg("bank api field fetch failed")
				mu.Lock()
				record.Notes = append(record.Notes, fmt.Sprintf("%s: %v", field, err))
				failed++
				mu.Unlock()
			}
		}(field)
	}
	wg.Wait()

	if failed == len(fields) {
		return record, fmt.Errorf("%w: all %d customer data fields failed", contractx.ErrBankAPIUnavailable, failed)
	}
	return record, nil
}

func (c *Client) fetchField(ctx context.Context, customerOID string, field Field, record *CustomerRecord, mu *sync.Mutex) error {
	switch field {
	case FieldProfile:
		var out profileEnvelope
		if err := c.get(ctx, "/api/customers/"+customerOID, &out); err != nil {
			return err
		}
		mu.Lock()
		record.Profile = out.Profile
		mu.Unlock()
	case FieldPortfolio:
		var out Portfolio
		if err := c.get(ctx, "/api/portfolio/"+customerOID, &out); err != nil {
			return err
		}
		mu.Lock()
		record.Portfolio = &out
		mu.Unlock()
	case FieldAccounts:
		var out Accounts
		if err := c.get(ctx, "/api/accounts/"+customerOID, &out); err != nil {
			return err
		}
		mu.Lock()
		record.Accounts = &out
		mu.Unlock()
	case FieldTransactions:
		var out Transactions
		path := fmt.Sprintf("/api/transactions/%s?limit=%d", customerOID, c.transactionLimit)
		if err := c.get(ctx, path, &out); err != nil {
			return err
		}
		mu.Lock()
		record.Transactions = &out
		mu.Unlock()
	case FieldRisk:
		var out RiskMetrics
		if err := c.get(ctx, "/api/risk/"+customerOID, &out); err != nil {
			return err
		}
		mu.Lock()
		record.Risk = &out
		mu.Unlock()
	default:
		return fmt.Errorf("unsupported field %q", field)
	}
	return nil
}

// FetchMarketData fetches general market data, optionally filtered by symbol.
// Not customer specific.
func (c *Client) FetchMarketData(ctx context.Context, symbols []string) (*MarketData, error) {
	path := "/api/market-data"
	if len(symbols) > 0 {
		path += "?symbols=" + url.QueryEscape(strings.Join(symbols, ","))
	}
	var out MarketData
	if err := c.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("%w: market data: %v", contractx.ErrBankAPIUnavailable, err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
