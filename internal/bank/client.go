package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/netx"
	"golang.org/x/time/rate"
)

// TokenSource supplies a currently valid bearer token. Invalidate is called
// with a token the API rejected so that the next Token call fetches a new one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context, token string)
}

// Client reads accounts, balances and transaction pages.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
}

// NewClient builds a client for the API rooted at baseURL, which includes
// any path prefix, e.g. https://host/za/pb/v1.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// SetRateLimit caps outgoing requests at rps per second with the given
// burst. A non-positive rps removes the cap.
func (c *Client) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

type accountsResponse struct {
	Data struct {
		Accounts []models.Account `json:"accounts"`
	} `json:"data"`
}

// transactionsResponse keeps the records raw so that one badly typed
// record cannot fail the whole page.
type transactionsResponse struct {
	Data struct {
		Transactions []json.RawMessage `json:"transactions"`
	} `json:"data"`
	Meta *struct {
		TotalPages int `json:"totalPages"`
	} `json:"meta"`
}

type balanceResponse struct {
	Data models.Balance `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)

	if err := netx.GetJSON(ctx, c.httpClient, u, h, out); err != nil {
		err = mapError(path, err)
		if errors.Is(err, common.ErrUnauthorized) {
			c.tokens.Invalidate(ctx, token)
		}
		return err
	}
	return nil
}

func mapError(path string, err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("GET %s: %w", path, common.ErrUnauthorized)
		case se.StatusCode == http.StatusNotFound:
			return fmt.Errorf("GET %s: %w", path, common.ErrNotFound)
		case se.StatusCode >= 500:
			return fmt.Errorf("GET %s: %s: %w", path, se.Status, common.ErrUnavailable)
		}
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("GET %s: %v: %w", path, err, common.ErrUnavailable)
	}
	return fmt.Errorf("GET %s: %w", path, err)
}

func (c *Client) Accounts(ctx context.Context) ([]models.Account, error) {
	var resp accountsResponse
	if err := c.get(ctx, "/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Accounts, nil
}

// TransactionsPage fetches one page (1-based) of an account's transactions
// in the window. Open window bounds are omitted from the query.
func (c *Client) TransactionsPage(ctx context.Context, accountID string, window models.DateRange, page int) (models.TransactionPage, error) {
	q := url.Values{}
	if !window.From.IsZero() {
		q.Set("fromDate", window.From.Format(common.DateLayout))
	}
	if !window.To.IsZero() {
		q.Set("toDate", window.To.Format(common.DateLayout))
	}
	q.Set("page", strconv.Itoa(page))

	var resp transactionsResponse
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/transactions", q, &resp); err != nil {
		return models.TransactionPage{}, err
	}

	out := models.TransactionPage{Transactions: make([]models.RawTransaction, 0, len(resp.Data.Transactions))}
	for _, msg := range resp.Data.Transactions {
		out.Transactions = append(out.Transactions, decodeRecord(msg))
	}
	if resp.Meta != nil {
		out.TotalPages = resp.Meta.TotalPages
	}
	return out, nil
}

// decodeRecord decodes one transaction. When that fails it decodes the
// fields one at a time, keeping the good ones and naming the bad ones in
// Malformed. A record that is not a JSON object is reported as "record".
func decodeRecord(msg json.RawMessage) models.RawTransaction {
	var raw models.RawTransaction
	if err := json.Unmarshal(msg, &raw); err == nil {
		return raw
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return models.RawTransaction{Malformed: []string{"record"}}
	}

	raw = models.RawTransaction{}
	for name, value := range fields {
		one, err := json.Marshal(map[string]json.RawMessage{name: value})
		if err != nil {
			raw.Malformed = append(raw.Malformed, name)
			continue
		}
		var check models.RawTransaction
		if err := json.Unmarshal(one, &check); err != nil {
			raw.Malformed = append(raw.Malformed, name)
			continue
		}
		_ = json.Unmarshal(one, &raw)
	}
	slices.Sort(raw.Malformed)
	return raw
}

func (c *Client) Balance(ctx context.Context, accountID string) (*models.Balance, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/balance", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.AccountID == "" {
		resp.Data.AccountID = accountID
	}
	return &resp.Data, nil
}
