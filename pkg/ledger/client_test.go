package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "rEzbi191M5AjrucxXKZWbR5QeyfpbedBcV"
	testOwner  = "rHolder1111111111111111111111111111"
)

func TestNFTsByIssuer(t *testing.T) {
	var got rpcRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))

		_, _ = io.WriteString(w, `{"result":{"status":"success","issuer":"`+testIssuer+`","marker":"ABC123","nfts":[
			{"nft_id":"000800","issuer":"`+testIssuer+`","nft_taxon":1,"owner":"`+testOwner+`","nft_serial":7,"uri":"697066733A2F2F","is_burned":false,"ledger_index":90000001}
		]}}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, ts.Client(), 0)
	page, err := client.NFTsByIssuer(context.Background(), PageRequest{
		Issuer: testIssuer,
		Taxon:  1,
		Limit:  500,
	})
	require.NoError(t, err)

	assert.Equal(t, methodNFTsByIssuer, got.Method)
	require.Len(t, got.Params, 1)
	assert.Equal(t, testIssuer, got.Params[0].Issuer)
	assert.Equal(t, uint32(1), got.Params[0].NFTTaxon)
	assert.Equal(t, 500, got.Params[0].Limit)
	assert.Empty(t, got.Params[0].Marker, "first request must not carry a marker")

	require.Len(t, page.Items, 1)
	nft := page.Items[0]
	assert.Equal(t, "000800", nft.ID)
	assert.Equal(t, testOwner, nft.Owner)
	assert.Equal(t, uint32(7), nft.Serial)
	assert.Equal(t, uint32(90000001), nft.LedgerIndex)
	assert.False(t, nft.Burned)
	assert.Equal(t, `"ABC123"`, string(page.NextCursor))
	assert.False(t, page.NextCursor.Empty())
}

func TestNFTsByIssuerSendsCursor(t *testing.T) {
	var got rpcRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"result":{"status":"success","nfts":[]}}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, ts.Client(), 0)
	page, err := client.NFTsByIssuer(context.Background(), PageRequest{
		Issuer: testIssuer,
		Taxon:  1,
		Limit:  10,
		Cursor: Cursor(`{"ledger":5,"seq":"FF"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ledger":5,"seq":"FF"}`, string(got.Params[0].Marker))
	assert.True(t, page.NextCursor.Empty())
}

func TestNFTsByIssuerErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		errContains string
	}{
		{"http status", http.StatusServiceUnavailable, "slow down", "status 503"},
		{"rpc error", http.StatusOK, `{"result":{"status":"error","error":"actMalformed","error_message":"Account malformed."}}`, "Account malformed."},
		{"rpc error without message", http.StatusOK, `{"result":{"status":"error","error":"tooBusy"}}`, "tooBusy"},
		{"invalid json", http.StatusOK, `{"result":`, "failed to decode"},
		{"missing owner", http.StatusOK, `{"result":{"status":"success","nfts":[{"nft_id":"01"}]}}`, "malformed record"},
		{"missing id", http.StatusOK, `{"result":{"status":"success","nfts":[{"owner":"rX"}]}}`, "malformed record"},
		{"missing result envelope", http.StatusOK, `{"jsonrpc":"2.0","id":1}`, `unexpected result status ""`},
		{"unknown status", http.StatusOK, `{"result":{"status":"pending","nfts":[]}}`, `unexpected result status "pending"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			client := NewClient(ts.URL, ts.Client(), 0)
			_, err := client.NFTsByIssuer(context.Background(), PageRequest{Issuer: testIssuer, Taxon: 1, Limit: 1})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("https://s2-clio.ripple.com/", nil, 5*time.Second)
	assert.Equal(t, "https://s2-clio.ripple.com", client.Endpoint())
	assert.Equal(t, 5*time.Second, client.client.Timeout)
}

func TestCursorEmpty(t *testing.T) {
	assert.True(t, Cursor(nil).Empty())
	assert.True(t, Cursor("null").Empty())
	assert.False(t, Cursor(`"x"`).Empty())
}
