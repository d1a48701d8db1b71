package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// scriptedSource serves pages in order and records each request
type scriptedSource struct {
	pages    []*Page
	failAt   int
	requests []PageRequest
}

func (s *scriptedSource) NFTsByIssuer(_ context.Context, req PageRequest) (*Page, error) {
	s.requests = append(s.requests, req)
	n := len(s.requests)
	if s.failAt == n {
		return nil, errors.New("connection reset")
	}
	if n > len(s.pages) {
		return nil, fmt.Errorf("unexpected request %d", n)
	}
	return s.pages[n-1], nil
}

func records(prefix string, n int) []NFTRecord {
	out := make([]NFTRecord, n)
	for i := range out {
		out[i] = NFTRecord{ID: fmt.Sprintf("%s-%03d", prefix, i), Owner: "rOwner", Issuer: testIssuer, Taxon: 1}
	}
	return out
}

var _ = Describe("Collector", func() {
	var (
		source *scriptedSource
		delays []time.Duration
		c      *Collector
	)

	BeforeEach(func() {
		delays = nil
		source = &scriptedSource{
			pages: []*Page{
				{Items: records("a", 3), NextCursor: Cursor(`"m1"`)},
				{Items: records("b", 2), NextCursor: Cursor(`"m2"`)},
				{Items: records("c", 1)},
			},
		}
		c = NewCollector(source, CollectorConfig{RequestDelay: 200 * time.Millisecond})
		c.sleep = func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}
	})

	It("follows cursors until none is returned", func() {
		all, err := c.FetchAll(context.Background(), testIssuer, 1, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(6))
		Expect(all[0].ID).To(Equal("a-000"))
		Expect(all[5].ID).To(Equal("c-000"))
		Expect(source.requests).To(HaveLen(3))
	})

	It("sends issuer, taxon, limit and the previous cursor", func() {
		_, err := c.FetchAll(context.Background(), testIssuer, 1, 500)
		Expect(err).NotTo(HaveOccurred())

		for _, req := range source.requests {
			Expect(req.Issuer).To(Equal(testIssuer))
			Expect(req.Taxon).To(Equal(uint32(1)))
			Expect(req.Limit).To(Equal(500))
		}
		Expect(source.requests[0].Cursor.Empty()).To(BeTrue())
		Expect(string(source.requests[1].Cursor)).To(Equal(`"m1"`))
		Expect(string(source.requests[2].Cursor)).To(Equal(`"m2"`))
	})

	It("waits between requests but not after the last page", func() {
		_, err := c.FetchAll(context.Background(), testIssuer, 1, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect(delays).To(Equal([]time.Duration{200 * time.Millisecond, 200 * time.Millisecond}))
	})

	It("streams batches lazily and reports stats", func() {
		var sizes []int
		stats, err := c.Each(context.Background(), testIssuer, 1, 500, func(batch []NFTRecord) error {
			sizes = append(sizes, len(batch))
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(sizes).To(Equal([]int{3, 2, 1}))
		Expect(stats.Batches).To(Equal(3))
		Expect(stats.Records).To(Equal(6))
	})

	It("aborts the whole fetch when a page fails", func() {
		source.failAt = 2
		all, err := c.FetchAll(context.Background(), testIssuer, 1, 500)
		Expect(all).To(BeNil())

		var terr *TransportError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Page).To(Equal(2))
		Expect(err.Error()).To(ContainSubstring("connection reset"))
		Expect(source.requests).To(HaveLen(2))
	})

	It("aborts when a page repeats the cursor it was sent", func() {
		source.pages[1].NextCursor = Cursor(`"m1"`)
		all, err := c.FetchAll(context.Background(), testIssuer, 1, 500)
		Expect(all).To(BeNil())
		Expect(err).To(MatchError(ErrRepeatedCursor))

		var terr *TransportError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Page).To(Equal(2))
		Expect(source.requests).To(HaveLen(2))
	})

	It("stops when the batch handler fails", func() {
		boom := errors.New("store full")
		_, err := c.Each(context.Background(), testIssuer, 1, 500, func([]NFTRecord) error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(source.requests).To(HaveLen(1))
	})

	It("stops when the context is cancelled during the delay", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c.sleep = sleepContext
		_, err := c.FetchAll(ctx, testIssuer, 1, 500)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("handles an empty collection", func() {
		source.pages = []*Page{{}}
		all, err := c.FetchAll(context.Background(), testIssuer, 1, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(BeEmpty())
		Expect(delays).To(BeEmpty())
	})

	Context("against an HTTP node", func() {
		It("fails the walk when a later page has no result", func() {
			calls := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if calls == 1 {
					_, _ = io.WriteString(w, `{"result":{"status":"success","marker":"m","nfts":[{"nft_id":"1","owner":"rA"}]}}`)
					return
				}
				_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1}`)
			}))
			defer ts.Close()

			live := NewCollector(NewClient(ts.URL, ts.Client(), 0), CollectorConfig{})
			all, err := live.FetchAll(context.Background(), testIssuer, 1, 1)
			Expect(all).To(BeNil())

			var terr *TransportError
			Expect(errors.As(err, &terr)).To(BeTrue())
			Expect(terr.Page).To(Equal(2))
			Expect(err.Error()).To(ContainSubstring("unexpected result status"))
			Expect(calls).To(Equal(2))
		})

		It("walks marker pages end to end", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req rpcRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Params) != 1 {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if len(req.Params[0].Marker) == 0 {
					_, _ = io.WriteString(w, `{"result":{"status":"success","marker":"next","nfts":[{"nft_id":"1","owner":"rA"}]}}`)
					return
				}
				_, _ = io.WriteString(w, `{"result":{"status":"success","nfts":[{"nft_id":"2","owner":"rB","is_burned":true}]}}`)
			}))
			defer ts.Close()

			live := NewCollector(NewClient(ts.URL, ts.Client(), 0), CollectorConfig{})
			all, err := live.FetchAll(context.Background(), testIssuer, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[1].Burned).To(BeTrue())
		})
	})
})
