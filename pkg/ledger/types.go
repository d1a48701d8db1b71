package ledger

import (
	"encoding/json"
	"fmt"
)

// NFTRecord represents one token instance reported by the ledger
type NFTRecord struct {
	ID          string `json:"nft_id"`
	Issuer      string `json:"issuer"`
	Taxon       uint32 `json:"nft_taxon"`
	Owner       string `json:"owner"`
	Serial      uint32 `json:"nft_serial"`
	URI         string `json:"uri,omitempty"`
	Burned      bool   `json:"is_burned"`
	LedgerIndex uint32 `json:"ledger_index,omitempty"`
}

// Cursor is the opaque continuation marker returned by the node
type Cursor json.RawMessage

// Empty reports whether the cursor signals the end of the stream
func (c Cursor) Empty() bool {
	return len(c) == 0 || string(c) == "null"
}

// PageRequest holds the fields sent with every nfts_by_issuer call
type PageRequest struct {
	Issuer string
	Taxon  uint32
	Limit  int
	Cursor Cursor
}

// Page is one decoded response page
type Page struct {
	Items      []NFTRecord
	NextCursor Cursor
}

// TransportError wraps any failure to complete a page request
type TransportError struct {
	Page int
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// rpcRequest is the JSON-RPC envelope accepted by Clio over HTTP
type rpcRequest struct {
	Method string        `json:"method"`
	Params []rpcNFTQuery `json:"params"`
}

type rpcNFTQuery struct {
	Issuer   string          `json:"issuer"`
	NFTTaxon uint32          `json:"nft_taxon"`
	Limit    int             `json:"limit,omitempty"`
	Marker   json.RawMessage `json:"marker,omitempty"`
}

type rpcResponse struct {
	Result struct {
		Status       string          `json:"status"`
		Error        string          `json:"error,omitempty"`
		ErrorMessage string          `json:"error_message,omitempty"`
		NFTs         []NFTRecord     `json:"nfts"`
		Marker       json.RawMessage `json:"marker,omitempty"`
	} `json:"result"`
}
