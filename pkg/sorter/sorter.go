// Package sorter orders items by explicit before/after/first/last rules.
//
// The result is a total order consistent with every rule. Items with no rule
// between them keep their input order. When the rules form a cycle Sort fails
// with a *CycleError naming one concrete cycle; no rule is ever dropped.
package sorter

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

var log = logging.GetLogger("sorter")

// Kind is the relation a rule expresses.
type Kind int

const (
	// Before places the owner ahead of Other.
	Before Kind = iota
	// After places the owner behind Other.
	After
	// First places the owner ahead of every item without a First rule.
	First
	// Last places the owner behind every item without a Last rule.
	Last
)

var kindNames = map[Kind]string{
	Before: "before",
	After:  "after",
	First:  "first",
	Last:   "last",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown rule kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind reads a rule kind name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, errors.Newf(errors.ErrInvalidInput, "unknown rule kind %q", s)
}

// Rule relates its owner to another key. Other is ignored for First and Last.
type Rule[K comparable] struct {
	Kind  Kind `json:"kind"`
	Other K    `json:"other,omitempty"`
}

// BeforeOf returns a rule placing the owner before other.
func BeforeOf[K comparable](other K) Rule[K] { return Rule[K]{Kind: Before, Other: other} }

// AfterOf returns a rule placing the owner after other.
func AfterOf[K comparable](other K) Rule[K] { return Rule[K]{Kind: After, Other: other} }

// AtFirst returns a rule placing the owner at the front.
func AtFirst[K comparable]() Rule[K] { return Rule[K]{Kind: First} }

// AtLast returns a rule placing the owner at the back.
func AtLast[K comparable]() Rule[K] { return Rule[K]{Kind: Last} }

// CycleError reports rules that cannot all hold. Keys lists one cycle in rule
// order; the first key is repeated at the end.
type CycleError[K comparable] struct {
	Keys []K
}

func (e *CycleError[K]) Error() string {
	parts := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		parts[i] = fmt.Sprint(k)
	}
	return fmt.Sprintf("[%s] sort rules form a cycle: %s", errors.ErrSortCycle, strings.Join(parts, " -> "))
}

// ErrorCode implements errors.Coded.
func (e *CycleError[K]) ErrorCode() errors.ErrorCode { return errors.ErrSortCycle }

// Sort orders items. key extracts an item's identity; rules returns the rules
// owned by an item. Rules naming a key absent from items are ignored.
func Sort[T any, K comparable](items []T, key func(T) K, rules func(T) []Rule[K]) ([]T, error) {
	n := len(items)
	if n == 0 {
		return nil, nil
	}

	index := make(map[K]int, n)
	for i, it := range items {
		k := key(it)
		if _, dup := index[k]; dup {
			return nil, errors.Newf(errors.ErrInvalidInput, "duplicate sort key %v", k)
		}
		index[k] = i
	}

	// Nodes 0..n-1 are items; n and n+1 are the barriers separating the First
	// group from the middle and the middle from the Last group.
	firstBarrier, lastBarrier := n, n+1
	g := newGraph(n + 2)

	isFirst := make([]bool, n)
	isLast := make([]bool, n)
	for i, it := range items {
		for _, r := range rules(it) {
			switch r.Kind {
			case First:
				isFirst[i] = true
			case Last:
				isLast[i] = true
			case Before, After:
				j, ok := index[r.Other]
				if !ok {
					log.Trace().
						Str("owner", fmt.Sprint(key(it))).
						Str("other", fmt.Sprint(r.Other)).
						Str("kind", r.Kind.String()).
						Msg("Rule references an unknown key, ignoring")
					continue
				}
				if r.Kind == Before {
					g.addEdge(i, j)
				} else {
					g.addEdge(j, i)
				}
			default:
				return nil, errors.Newf(errors.ErrInvalidInput, "unknown rule kind %d on %v", int(r.Kind), key(it))
			}
		}
	}

	for i := 0; i < n; i++ {
		if isFirst[i] {
			g.addEdge(i, firstBarrier)
		} else {
			g.addEdge(firstBarrier, i)
		}
		if isLast[i] {
			g.addEdge(lastBarrier, i)
		} else {
			g.addEdge(i, lastBarrier)
		}
	}
	g.addEdge(firstBarrier, lastBarrier)

	order, ok := g.kahn(n)
	if !ok {
		cycle := g.findCycle(n)
		keys := make([]K, 0, len(cycle))
		for _, v := range cycle {
			keys = append(keys, key(items[v]))
		}
		return nil, &CycleError[K]{Keys: keys}
	}

	out := make([]T, 0, n)
	for _, v := range order {
		if v < n {
			out = append(out, items[v])
		}
	}
	return out, nil
}

type graph struct {
	out      [][]int
	indegree []int
}

func newGraph(size int) *graph {
	return &graph{out: make([][]int, size), indegree: make([]int, size)}
}

func (g *graph) addEdge(from, to int) {
	g.out[from] = append(g.out[from], to)
	g.indegree[to]++
}

// kahn runs Kahn's algorithm, always emitting the ready node with the lowest
// priority. Items have their input index as priority; barriers come before
// any item that is ready at the same time.
func (g *graph) kahn(items int) ([]int, bool) {
	indegree := append([]int(nil), g.indegree...)
	prio := func(v int) int {
		if v >= items {
			return -1
		}
		return v
	}

	ready := &minHeap{prio: prio}
	for v, d := range indegree {
		if d == 0 {
			heap.Push(ready, v)
		}
	}

	order := make([]int, 0, len(indegree))
	for ready.Len() > 0 {
		v := heap.Pop(ready).(int)
		order = append(order, v)
		for _, w := range g.out[v] {
			indegree[w]--
			if indegree[w] == 0 {
				heap.Push(ready, w)
			}
		}
	}
	return order, len(order) == len(indegree)
}

// findCycle returns one cycle through item nodes, first node repeated at the
// end. Barrier nodes on the cycle are skipped in the result since they are
// not user visible.
func (g *graph) findCycle(items int) []int {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(g.out))
	parent := make([]int, len(g.out))

	var cycle []int
	var visit func(v int) bool
	visit = func(v int) bool {
		color[v] = grey
		for _, w := range g.out[v] {
			switch color[w] {
			case grey:
				path := []int{w}
				for u := v; u != w; u = parent[u] {
					path = append(path, u)
				}
				// path is w <- v <- ... reversed; flip to rule order
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				path = append([]int{w}, path[:len(path)-1]...)
				cycle = path
				return true
			case white:
				parent[w] = v
				if visit(w) {
					return true
				}
			}
		}
		color[v] = black
		return false
	}

	for v := range g.out {
		if color[v] == white && visit(v) {
			break
		}
	}

	out := make([]int, 0, len(cycle)+1)
	for _, v := range cycle {
		if v < items {
			out = append(out, v)
		}
	}
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

type minHeap struct {
	data []int
	prio func(int) int
}

func (h *minHeap) Len() int { return len(h.data) }
func (h *minHeap) Less(i, j int) bool {
	pi, pj := h.prio(h.data[i]), h.prio(h.data[j])
	if pi != pj {
		return pi < pj
	}
	return h.data[i] < h.data[j]
}
func (h *minHeap) Swap(i, j int) { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *minHeap) Push(x any)   { h.data = append(h.data, x.(int)) }
func (h *minHeap) Pop() any {
	old := h.data
	v := old[len(old)-1]
	h.data = old[:len(old)-1]
	return v
}
