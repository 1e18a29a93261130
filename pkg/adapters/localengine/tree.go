package localengine

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cast"
)

// rawTree is the subset of the passive tree document the engine reads.
// Node ids and edges may be written as numbers or strings.
type rawTree struct {
	Nodes map[string]rawNode `json:"nodes"`
}

type rawNode struct {
	Name string `json:"name"`
	Out  []any  `json:"out"`
	In   []any  `json:"in"`
}

// passiveTree is an undirected adjacency list over node ids.
type passiveTree struct {
	raw   []byte
	names map[int64]string
	edges map[int64][]int64
}

func parseTree(data []byte) (*passiveTree, error) {
	var doc rawTree
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}

	t := &passiveTree{
		raw:   data,
		names: make(map[int64]string, len(doc.Nodes)),
		edges: make(map[int64][]int64, len(doc.Nodes)),
	}

	for key, node := range doc.Nodes {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			// Non-numeric keys ("root") are not allocatable.
			continue
		}
		t.names[id] = node.Name
		for _, v := range slices.Concat(node.Out, node.In) {
			to, err := cast.ToInt64E(v)
			if err != nil {
				return nil, fmt.Errorf("node %d: invalid edge %v: %w", id, v, err)
			}
			t.link(id, to)
		}
	}

	for id := range t.edges {
		slices.Sort(t.edges[id])
		t.edges[id] = slices.Compact(t.edges[id])
	}
	return t, nil
}

func (t *passiveTree) link(a, b int64) {
	t.edges[a] = append(t.edges[a], b)
	t.edges[b] = append(t.edges[b], a)
}

// path returns the shortest list of nodes to allocate so that target becomes
// connected to the active set, ordered from the active set outwards. It returns
// an empty slice when target is already active and nil when it is unreachable.
func (t *passiveTree) path(active []int64, target int64) []int64 {
	if len(active) == 0 {
		return nil
	}
	if slices.Contains(active, target) {
		return []int64{}
	}
	if _, ok := t.names[target]; !ok {
		return nil
	}

	prev := make(map[int64]int64)
	visited := make(map[int64]bool, len(active))
	queue := make([]int64, 0, len(active))
	for _, id := range active {
		if !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range t.edges[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = cur

			if next == target {
				return unwind(prev, active, target)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func unwind(prev map[int64]int64, active []int64, target int64) []int64 {
	var out []int64
	for cur := target; !slices.Contains(active, cur); cur = prev[cur] {
		out = append(out, cur)
	}
	slices.Reverse(out)
	return out
}
