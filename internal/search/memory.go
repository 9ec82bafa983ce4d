package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/pagination"
)

// MemoryIndex matches case-insensitive substrings of name, description and
// category name. Results are ordered by name.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryIndex returns an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]Document)}
}

func (m *MemoryIndex) Index(_ context.Context, p *domain.Product) error {
	doc := NewDocument(p)
	m.mu.Lock()
	m.docs[doc.ID] = doc
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.docs, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, query string, params pagination.Params) ([]domain.Product, int, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	m.mu.RLock()
	matched := make([]Document, 0)
	for _, d := range m.docs {
		if d.IsActive && matches(d, q) {
			matched = append(matched, d)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	size := params.Size
	if size <= 0 {
		size = pagination.DefaultSize
	}
	total := len(matched)
	start := min(max(params.Offset, 0), total)
	end := min(start+size, total)

	products := make([]domain.Product, 0, end-start)
	for _, d := range matched[start:end] {
		products = append(products, d.Product())
	}
	return products, total, nil
}

func matches(d Document, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), q) ||
		strings.Contains(strings.ToLower(d.Description), q) ||
		strings.Contains(strings.ToLower(d.CategoryName), q)
}
