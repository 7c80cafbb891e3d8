package domain

// Item is a single catalog entry pulled from the commerce backend.
type Item struct {
	ID       string
	Title    string
	Handle   string
	Category string
	Price    float64
	ImageURL string
}

// HasImage reports whether the item carries a usable visual asset.
func (i Item) HasImage() bool {
	return i.ImageURL != ""
}

// PriceBucket is one bar of the snapshot price histogram.
type PriceBucket struct {
	Label string
	Min   float64
	Max   float64 // zero means unbounded
	Count int
}

// Contains reports whether price falls into the bucket.
func (b PriceBucket) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	return b.Max == 0 || price < b.Max
}

// CatalogSnapshot is the immutable per-run view of the catalog.
type CatalogSnapshot struct {
	TotalItems   int
	Categories   map[string]int
	PriceBuckets []PriceBucket
	Items        []Item
}
