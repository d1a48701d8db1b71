// Package ledger retrieves NFT records from an XRPL Clio node
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	methodNFTsByIssuer = "nfts_by_issuer"
	statusSuccess      = "success"
)

// Client talks JSON-RPC over HTTP to a Clio server
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a new ledger client. A nil httpClient gets a client with the given timeout.
func NewClient(endpoint string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   httpClient,
	}
}

// Endpoint returns the node URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// NFTsByIssuer requests a single page of NFTs for an issuer/taxon pair
func (c *Client) NFTsByIssuer(ctx context.Context, req PageRequest) (*Page, error) {
	query := rpcNFTQuery{
		Issuer:   req.Issuer,
		NFTTaxon: req.Taxon,
		Limit:    req.Limit,
	}
	if !req.Cursor.Empty() {
		query.Marker = json.RawMessage(req.Cursor)
	}

	body, err := json.Marshal(rpcRequest{
		Method: methodNFTsByIssuer,
		Params: []rpcNFTQuery{query},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: status %d: %s", methodNFTsByIssuer, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", methodNFTsByIssuer, err)
	}

	if out.Result.Status == "error" || out.Result.Error != "" {
		msg := out.Result.ErrorMessage
		if msg == "" {
			msg = out.Result.Error
		}
		return nil, fmt.Errorf("%s: %s", methodNFTsByIssuer, msg)
	}
	// Anything short of an explicit success would read as an empty final page
	if out.Result.Status != statusSuccess {
		return nil, fmt.Errorf("%s: unexpected result status %q", methodNFTsByIssuer, out.Result.Status)
	}

	for i, nft := range out.Result.NFTs {
		if nft.ID == "" || nft.Owner == "" {
			return nil, fmt.Errorf("malformed record at index %d: missing nft_id or owner", i)
		}
	}

	return &Page{
		Items:      out.Result.NFTs,
		NextCursor: Cursor(out.Result.Marker),
	}, nil
}
