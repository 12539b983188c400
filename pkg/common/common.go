package common

import (
	"errors"
	"fmt"
)

// ErrDanglingEdge marks an edge whose source or target is not a node of the graph.
var ErrDanglingEdge = errors.New("dangling edge")

// Provenance classifies an entity by the source list(s) it appeared in.
type Provenance string

const (
	ProvenanceHypothesis     Provenance = "hypothesis"
	ProvenanceKnowledgeGraph Provenance = "knowledge_graph"
	ProvenanceBoth           Provenance = "both"
	// ProvenanceUnknown is used for nodes that were only referenced by an
	// edge of a pre-built graph.
	ProvenanceUnknown Provenance = "unknown"
)

// ProvenanceOf derives the provenance tag from membership in the hypothesis
// and knowledge graph entity lists.
func ProvenanceOf(inHypothesis, inKnowledgeGraph bool) Provenance {
	switch {
	case inHypothesis && inKnowledgeGraph:
		return ProvenanceBoth
	case inHypothesis:
		return ProvenanceHypothesis
	case inKnowledgeGraph:
		return ProvenanceKnowledgeGraph
	default:
		return ProvenanceUnknown
	}
}

// Graph is the normalized view of a reasoning response, ready to be rendered.
//
// A graph contains:
//   - Nodes: one per distinct entity, unique by ID
//   - Edges: directed (source, target) pairs, unique by pair
//   - Paths: scored reasoning texts ordered by descending score
//
// Every edge endpoint references a node of the graph.
type Graph struct {
	Nodes []Node          `json:"nodes"`
	Edges []Edge          `json:"edges"`
	Paths []ReasoningPath `json:"paths"`
}

// Node is an entity of the graph. The ID is the entity name itself and is
// compared case-sensitively.
type Node struct {
	ID         string     `json:"id" validate:"required"`
	Label      string     `json:"label,omitempty"`
	Provenance Provenance `json:"provenance,omitempty" validate:"omitempty,oneof=hypothesis knowledge_graph both unknown"`
}

// DisplayLabel returns the label of the node, falling back to its ID.
func (n Node) DisplayLabel() string {
	if n.Label == "" {
		return n.ID
	}
	return n.Label
}

// Edge is a directed relation between two node IDs.
type Edge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// ReasoningPath is a textual justification of a hypothesis with a relevance
// score. Higher scores are more relevant.
type ReasoningPath struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Mention is one located occurrence of an entity inside a text.
// Start and End are byte offsets, End is exclusive.
type Mention struct {
	Entity string `json:"entity"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// HasNode reports whether the graph contains a node with the given ID.
func (g *Graph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Validate checks that every edge references existing nodes.
func (g *Graph) Validate() error {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}

	var errs []error
	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			errs = append(errs, fmt.Errorf("%w: source %q of edge %q -> %q", ErrDanglingEdge, e.Source, e.Source, e.Target))
		}
		if _, ok := ids[e.Target]; !ok {
			errs = append(errs, fmt.Errorf("%w: target %q of edge %q -> %q", ErrDanglingEdge, e.Target, e.Source, e.Target))
		}
	}
	return errors.Join(errs...)
}
