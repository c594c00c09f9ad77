// Package spatial maintains an append-only proximity graph over observation
// feature vectors projected into a derived 3D coordinate.
package spatial

import (
	"fmt"
	"math"
	"sort"
)

// Position scaling applied to the first three feature dimensions when a
// node is inserted. Missing dimensions default to 0.
const (
	ScaleX = 100.0
	ScaleY = 100.0
	ScaleZ = 10.0
)

// DefaultThreshold is the default connection distance in derived units.
const DefaultThreshold = 50.0

// Position is a point in the derived 3D coordinate space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceSquaredTo returns the squared Euclidean distance to other.
func (p Position) DistanceSquaredTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// DistanceTo returns the Euclidean distance to other.
func (p Position) DistanceTo(other Position) float64 {
	return math.Sqrt(p.DistanceSquaredTo(other))
}

// PositionFromFeatures derives a node position from the first three
// dimensions of a feature vector.
func PositionFromFeatures(features []float64) Position {
	var pos Position
	if len(features) > 0 {
		pos.X = features[0] * ScaleX
	}
	if len(features) > 1 {
		pos.Y = features[1] * ScaleY
	}
	if len(features) > 2 {
		pos.Z = features[2] * ScaleZ
	}
	return pos
}

// Node is a positioned observation. Nodes are immutable after insertion and
// owned exclusively by the graph; IDs increase monotonically and are never
// reused within a graph's lifetime.
type Node struct {
	ID       int       `json:"id"`
	Position Position  `json:"position"`
	Features []float64 `json:"features"`
}

// Neighbor is one adjacency entry: a neighboring node ID and the true
// (non-squared) distance to it.
type Neighbor struct {
	ID       int     `json:"id"`
	Distance float64 `json:"distance"`
}

// Graph connects every pair of nodes whose derived positions are closer
// than the threshold. Insertion scans all existing nodes, so construction
// is O(n²) cumulative; a spatial index is an explicit non-goal for the
// bounded nodes-per-reset usage pattern. Edges are stored symmetrically in
// both adjacency lists with the identical distance value. Not safe for
// concurrent use.
type Graph struct {
	nodes       []Node
	edges       map[int][]Neighbor
	nextID      int
	threshold   float64
	thresholdSq float64
}

// NewGraph creates an empty graph connecting nodes within threshold
// distance units of each other.
func NewGraph(threshold float64) (*Graph, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("spatial: threshold must be positive, got %v", threshold)
	}
	return &Graph{
		edges:       make(map[int][]Neighbor),
		threshold:   threshold,
		thresholdSq: threshold * threshold,
	}, nil
}

// AddNode inserts a node for the feature vector and connects it to every
// existing node within the threshold. Returns the new node's ID.
func (g *Graph) AddNode(features []float64) int {
	pos := PositionFromFeatures(features)
	id := g.nextID
	g.nextID++

	var connections []Neighbor
	for i := range g.nodes {
		existing := &g.nodes[i]
		distSq := pos.DistanceSquaredTo(existing.Position)
		if distSq < g.thresholdSq {
			dist := math.Sqrt(distSq)
			connections = append(connections, Neighbor{ID: existing.ID, Distance: dist})
			g.edges[existing.ID] = append(g.edges[existing.ID], Neighbor{ID: id, Distance: dist})
		}
	}
	if len(connections) > 0 {
		g.edges[id] = connections
	}

	g.nodes = append(g.nodes, Node{
		ID:       id,
		Position: pos,
		Features: append([]float64(nil), features...),
	})
	return id
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges. Edges are stored in
// both adjacency lists, so the total adjacency length is halved.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, neighbors := range g.edges {
		total += len(neighbors)
	}
	return total / 2
}

// AverageDegree returns the mean adjacency-list length across all nodes,
// or 0 for an empty graph.
func (g *Graph) AverageDegree() float64 {
	if len(g.nodes) == 0 {
		return 0
	}
	return float64(g.EdgeCount()*2) / float64(len(g.nodes))
}

// Neighbors returns a copy of a node's adjacency list, or nil when the node
// has no edges or does not exist.
func (g *Graph) Neighbors(id int) []Neighbor {
	neighbors, ok := g.edges[id]
	if !ok {
		return nil
	}
	return append([]Neighbor(nil), neighbors...)
}

// KNearestNeighbors returns the min(k, n) nodes closest to pos, sorted by
// ascending true distance with ties broken by ascending node ID. Selection
// runs on squared distances; only the selected k are converted.
func (g *Graph) KNearestNeighbors(pos Position, k int) []Neighbor {
	if k <= 0 || len(g.nodes) == 0 {
		return nil
	}

	candidates := make([]Neighbor, len(g.nodes))
	for i, node := range g.nodes {
		candidates[i] = Neighbor{ID: node.ID, Distance: pos.DistanceSquaredTo(node.Position)}
	}

	if k < len(candidates) {
		selectSmallest(candidates, k)
		candidates = candidates[:k]
	}

	for i := range candidates {
		candidates[i].Distance = math.Sqrt(candidates[i].Distance)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}

// Reset discards all nodes and edges. Node IDs restart from 0.
func (g *Graph) Reset() {
	g.nodes = nil
	g.edges = make(map[int][]Neighbor)
	g.nextID = 0
}

// selectSmallest partially partitions candidates so the k smallest
// distances occupy the first k slots, in unspecified order. Quickselect
// with median-of-three pivoting; final ordering is left to the caller.
func selectSmallest(candidates []Neighbor, k int) {
	lo, hi := 0, len(candidates)-1
	for lo < hi {
		p := partition(candidates, lo, hi)
		switch {
		case p == k:
			return
		case p < k:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(candidates []Neighbor, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if candidates[mid].Distance < candidates[lo].Distance {
		candidates[lo], candidates[mid] = candidates[mid], candidates[lo]
	}
	if candidates[hi].Distance < candidates[lo].Distance {
		candidates[lo], candidates[hi] = candidates[hi], candidates[lo]
	}
	if candidates[hi].Distance < candidates[mid].Distance {
		candidates[mid], candidates[hi] = candidates[hi], candidates[mid]
	}
	pivot := candidates[mid].Distance
	candidates[mid], candidates[hi] = candidates[hi], candidates[mid]

	store := lo
	for i := lo; i < hi; i++ {
		if candidates[i].Distance < pivot {
			candidates[i], candidates[store] = candidates[store], candidates[i]
			store++
		}
	}
	candidates[store], candidates[hi] = candidates[hi], candidates[store]
	return store
}
