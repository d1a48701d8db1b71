package allocation

// Bucket counts owners whose new total falls in [Min, Max]. Max of 0 means unbounded.
type Bucket struct {
	Label  string `json:"range"`
	Min    int    `json:"min"`
	Max    int    `json:"max,omitempty"`
	Owners int    `json:"owners"`
}

// Histogram is an ordered list of buckets
type Histogram []Bucket

// DefaultBuckets are the post-redistribution ranges
var DefaultBuckets = Histogram{
	{Label: "1-10 NFTs", Min: 1, Max: 10},
	{Label: "11-50 NFTs", Min: 11, Max: 50},
	{Label: "51-100 NFTs", Min: 51, Max: 100},
	{Label: "101-200 NFTs", Min: 101, Max: 200},
	{Label: "200+ NFTs", Min: 201},
}

// NewHistogram buckets shares by NewTotal
func NewHistogram(shares []HolderShare, buckets Histogram) Histogram {
	out := make(Histogram, len(buckets))
	copy(out, buckets)
	for i := range out {
		out[i].Owners = 0
	}

	for _, s := range shares {
		for i := range out {
			if s.NewTotal >= out[i].Min && (out[i].Max == 0 || s.NewTotal <= out[i].Max) {
				out[i].Owners++
				break
			}
		}
	}
	return out
}

// Counts maps bucket labels to owner counts
func (h Histogram) Counts() map[string]int {
	out := make(map[string]int, len(h))
	for _, b := range h {
		out[b.Label] = b.Owners
	}
	return out
}
