package content

import "ArticlePublisher/internal/domain"

// MinPoolSize is the nominal number of unused assets a document wants.
// Smaller pools are tolerated; an empty pool is fatal.
const MinPoolSize = 3

// Asset is a visual reference together with the item that carries it.
type Asset struct {
	URL  string
	Item domain.Item
}

// AssetPool hands out never-before-used assets for one document.
// An asset is never handed out twice by Next.
type AssetPool struct {
	assets []Asset
	cursor int
	placed []Asset
}

// NewAssetPool collects the images carried by candidates and drops every URL in used.
func NewAssetPool(candidates []domain.Item, used map[string]struct{}) *AssetPool {
	seen := map[string]struct{}{}
	pool := &AssetPool{}
	for _, item := range candidates {
		if !item.HasImage() {
			continue
		}
		if _, ok := used[item.ImageURL]; ok {
			continue
		}
		if _, ok := seen[item.ImageURL]; ok {
			continue
		}
		seen[item.ImageURL] = struct{}{}
		pool.assets = append(pool.assets, Asset{URL: item.ImageURL, Item: item})
	}
	return pool
}

// Len is the number of assets available to the document.
func (p *AssetPool) Len() int {
	return len(p.assets)
}

// Remaining counts assets not yet placed.
func (p *AssetPool) Remaining() int {
	return len(p.assets) - p.cursor
}

// Next returns the next unplaced asset.
func (p *AssetPool) Next() (Asset, bool) {
	if p.cursor >= len(p.assets) {
		return Asset{}, false
	}
	a := p.assets[p.cursor]
	p.cursor++
	p.placed = append(p.placed, a)
	return a, true
}

// Placed lists the assets handed out so far, in order.
func (p *AssetPool) Placed() []Asset {
	return append([]Asset(nil), p.placed...)
}

// Cover picks the cover visual: an unplaced asset first, otherwise the first
// asset already placed in this document's own body.
func (p *AssetPool) Cover() (Asset, bool) {
	if p.cursor < len(p.assets) {
		a := p.assets[p.cursor]
		p.cursor++
		return a, true
	}
	if len(p.placed) > 0 {
		return p.placed[0], true
	}
	return Asset{}, false
}
