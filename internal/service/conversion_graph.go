package service

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"billing-engine/internal/core/ports"
	"billing-engine/pkg/money"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const rateCacheTTL = 24 * time.Hour

// edge is a directed weighted edge in the conversion graph.
type edge struct {
	to     int64
	weight money.Money
}

// ConversionGraph builds a directed weighted graph over Currency ids from
// ConversionRate rows and answers cheapest-path rate queries (spec.md
// §4.1). Edge relaxation is multiplicative (product of rates) rather than
// additive, adapted from the heap-based Dijkstra shape in
// ADKA2006-Vibranium_Quadsquad's country router.
type ConversionGraph struct {
	rateRepo ports.ConversionRateRepository

	mu       sync.RWMutex
	forward  map[int64][]edge
	reversed map[int64][]edge
	built    bool

	rateCache  *lru.LRU[string, money.Money]
	fromCache  *lru.LRU[int64, map[int64]money.Money]
}

// NewConversionGraph constructs a ConversionGraph backed by rateRepo.
func NewConversionGraph(rateRepo ports.ConversionRateRepository) *ConversionGraph {
	return &ConversionGraph{
		rateRepo:  rateRepo,
		rateCache: lru.NewLRU[string, money.Money](1<<20, nil, rateCacheTTL),
		fromCache: lru.NewLRU[int64, map[int64]money.Money](1<<20, nil, rateCacheTTL),
	}
}

// Invalidate drops all cached rate results and forces the adjacency to be
// rebuilt from storage on next use. Called after a ConversionRate row is
// mutated.
func (g *ConversionGraph) Invalidate() {
	g.mu.Lock()
	g.built = false
	g.mu.Unlock()
	g.rateCache.Purge()
	g.fromCache.Purge()
}

func (g *ConversionGraph) ensureBuilt(ctx context.Context) error {
	g.mu.RLock()
	built := g.built
	g.mu.RUnlock()
	if built {
		return nil
	}

	rates, err := g.rateRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list conversion rates: %w", err)
	}

	forward := make(map[int64][]edge)
	reversed := make(map[int64][]edge)
	for _, r := range rates {
		forward[r.FromCurrencyID] = append(forward[r.FromCurrencyID], edge{to: r.ToCurrencyID, weight: r.Rate})
		reversed[r.ToCurrencyID] = append(reversed[r.ToCurrencyID], edge{to: r.FromCurrencyID, weight: r.Rate})
		if r.AllowReversed {
			inv, err := money.One().Div(r.Rate)
			if err != nil {
				return fmt.Errorf("invert rate %d->%d: %w", r.FromCurrencyID, r.ToCurrencyID, err)
			}
			forward[r.ToCurrencyID] = append(forward[r.ToCurrencyID], edge{to: r.FromCurrencyID, weight: inv})
			reversed[r.FromCurrencyID] = append(reversed[r.FromCurrencyID], edge{to: r.ToCurrencyID, weight: inv})
		}
	}

	g.mu.Lock()
	g.forward = forward
	g.reversed = reversed
	g.built = true
	g.mu.Unlock()
	return nil
}

// Rate returns the cheapest conversion rate from fromCurrencyID to
// toCurrencyID, found by Dijkstra minimizing the product of edge
// weights. ok is false if no path exists.
func (g *ConversionGraph) Rate(ctx context.Context, fromCurrencyID, toCurrencyID int64, fresh bool) (money.Money, bool, error) {
	if fromCurrencyID == toCurrencyID {
		return money.One(), true, nil
	}

	key := fmt.Sprintf("%d:%d", fromCurrencyID, toCurrencyID)
	if !fresh {
		if cached, ok := g.rateCache.Get(key); ok {
			return cached, true, nil
		}
	}

	if err := g.ensureBuilt(ctx); err != nil {
		return money.Money{}, false, err
	}

	g.mu.RLock()
	rate, ok := dijkstraProduct(g.forward, fromCurrencyID, toCurrencyID)
	g.mu.RUnlock()
	if !ok {
		return money.Money{}, false, nil
	}

	g.rateCache.Add(key, rate)
	return rate, true, nil
}

// RatesFrom returns, for every reachable currency, the cheapest rate to
// convert INTO fromCurrencyID, computed on the reversed graph.
func (g *ConversionGraph) RatesFrom(ctx context.Context, fromCurrencyID int64, fresh bool) (map[int64]money.Money, error) {
	if !fresh {
		if cached, ok := g.fromCache.Get(fromCurrencyID); ok {
			return cached, nil
		}
	}

	if err := g.ensureBuilt(ctx); err != nil {
		return nil, err
	}

	g.mu.RLock()
	result := dijkstraAll(g.reversed, fromCurrencyID)
	g.mu.RUnlock()

	g.fromCache.Add(fromCurrencyID, result)
	return result, nil
}

// --- heap-based Dijkstra over multiplicative edge weights ---

type pqItem struct {
	node    int64
	product money.Money
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].product.LessThan(pq[j].product) }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstraProduct finds the minimum-product path from source to target.
func dijkstraProduct(graph map[int64][]edge, source, target int64) (money.Money, bool) {
	dist := map[int64]money.Money{source: money.One()}
	visited := make(map[int64]bool)

	pq := &priorityQueue{{node: source, product: money.One()}}
	heap.Init(pq)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(pqItem)
		if visited[current.node] {
			continue
		}
		visited[current.node] = true

		if current.node == target {
			return current.product, true
		}

		for _, e := range graph[current.node] {
			if visited[e.to] {
				continue
			}
			candidate := current.product.Mul(e.weight)
			if best, ok := dist[e.to]; !ok || candidate.LessThan(best) {
				dist[e.to] = candidate
				heap.Push(pq, pqItem{node: e.to, product: candidate})
			}
		}
	}
	return money.Money{}, false
}

// dijkstraAll runs the same relaxation from source but returns every
// reachable node's cheapest product rather than stopping at one target.
func dijkstraAll(graph map[int64][]edge, source int64) map[int64]money.Money {
	dist := map[int64]money.Money{source: money.One()}
	visited := make(map[int64]bool)

	pq := &priorityQueue{{node: source, product: money.One()}}
	heap.Init(pq)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(pqItem)
		if visited[current.node] {
			continue
		}
		visited[current.node] = true

		for _, e := range graph[current.node] {
			if visited[e.to] {
				continue
			}
			candidate := current.product.Mul(e.weight)
			if best, ok := dist[e.to]; !ok || candidate.LessThan(best) {
				dist[e.to] = candidate
				heap.Push(pq, pqItem{node: e.to, product: candidate})
			}
		}
	}
	return dist
}
