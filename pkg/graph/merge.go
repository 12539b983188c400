package graph

import (
	"github.com/OFFIS-RIT/kgview/pkg/common"
)

// graphBuilder accumulates nodes and edges with set semantics while keeping
// insertion order.
type graphBuilder struct {
	nodes     []common.Node
	nodeIndex map[string]int
	edges     []common.Edge
	edgeSet   map[common.Edge]struct{}
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		nodes:     make([]common.Node, 0),
		nodeIndex: make(map[string]int),
		edges:     make([]common.Edge, 0),
		edgeSet:   make(map[common.Edge]struct{}),
	}
}

func (b *graphBuilder) hasNode(id string) bool {
	_, ok := b.nodeIndex[id]
	return ok
}

// addNode adds the node unless one with the same ID exists. The first node
// for an ID wins.
func (b *graphBuilder) addNode(n common.Node) bool {
	if b.hasNode(n.ID) {
		return false
	}
	b.nodeIndex[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return true
}

// addEdge adds the edge, creating minimal nodes for endpoints that are not
// part of the graph yet. Duplicate edges are merged.
func (b *graphBuilder) addEdge(e common.Edge) bool {
	for _, id := range []string{e.Source, e.Target} {
		if !b.hasNode(id) {
			b.addNode(common.Node{ID: id, Provenance: common.ProvenanceUnknown})
		}
	}

	if _, ok := b.edgeSet[e]; ok {
		return false
	}
	b.edgeSet[e] = struct{}{}
	b.edges = append(b.edges, e)
	return true
}

func (b *graphBuilder) graph(paths []common.ReasoningPath) common.Graph {
	return common.Graph{
		Nodes: b.nodes,
		Edges: b.edges,
		Paths: paths,
	}
}
