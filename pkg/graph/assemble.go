package graph

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/OFFIS-RIT/kgview/pkg/common"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/textspan"

	"github.com/go-playground/validator"
)

// Result is the outcome of assembling one response.
type Result struct {
	Graph      common.Graph
	Hypothesis string
	// Mentions are the occurrences of node entities in the hypothesis,
	// ordered by start offset.
	Mentions []common.Mention
	// Issues lists the payload elements, or invalid values of them, that were
	// dropped. Each issue wraps ErrMalformedInput.
	Issues []error
}

// Dropped returns the number of payload elements that were discarded.
func (r Result) Dropped() int {
	return len(r.Issues)
}

// Err joins all issues into one error, or returns nil when nothing was dropped.
func (r Result) Err() error {
	return errors.Join(r.Issues...)
}

// Assemble turns a classified response into a graph. Malformed elements are
// dropped and reported in Result.Issues, they never fail the whole assembly.
func Assemble(resp Response) Result {
	var res Result
	switch r := resp.(type) {
	case ScoredPaths:
		res = assembleScoredPaths(r)
	case PrebuiltGraph:
		res = assemblePrebuiltGraph(r)
	default:
		res = Result{
			Graph:  newGraphBuilder().graph(make([]common.ReasoningPath, 0)),
			Issues: []error{fmt.Errorf("%w: unsupported response %T", ErrMalformedInput, resp)},
		}
	}

	if resp != nil {
		env := resp.envelope()
		res.Hypothesis = env.Hypothesis
		res.Mentions = locateMentions(res.Hypothesis, res.Graph.Nodes)
		if len(env.Rejected) > 0 {
			res.Issues = append(slices.Clone(env.Rejected), res.Issues...)
		}
	}

	logger.Debug("[Graph] Assembled",
		"nodes", len(res.Graph.Nodes),
		"edges", len(res.Graph.Edges),
		"paths", len(res.Graph.Paths),
		"dropped", res.Dropped(),
	)

	return res
}

func membership(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func assembleScoredPaths(r ScoredPaths) Result {
	b := newGraphBuilder()
	var issues []error

	inHyp, inKG := membership(r.EntitiesHyp), membership(r.EntitiesKG)

	for _, name := range slices.Concat(r.EntitiesHyp, r.EntitiesKG) {
		if name == "" {
			issues = append(issues, fmt.Errorf("%w: empty entity name", ErrMalformedInput))
			continue
		}
		b.addNode(common.Node{ID: name, Provenance: common.ProvenanceOf(inHyp[name], inKG[name])})
	}

	paths := sortPaths(r.Paths)
	entities := slices.Clone(b.nodes)
	for _, p := range paths {
		for _, e := range pathEdges(p.Text, entities) {
			b.addEdge(e)
		}
	}

	return Result{Graph: b.graph(paths), Issues: issues}
}

type entityHit struct {
	id     string
	offset int
}

// MentionOrder returns the IDs of the nodes mentioned in text, ordered by
// their first occurrence. Nodes starting at the same offset keep their order.
func MentionOrder(text string, nodes []common.Node) []string {
	hits := make([]entityHit, 0, len(nodes))
	for _, n := range nodes {
		offset, found, err := textspan.First(n.ID, text)
		if err != nil || !found {
			continue
		}
		hits = append(hits, entityHit{id: n.ID, offset: offset})
	}

	slices.SortStableFunc(hits, func(a, b entityHit) int {
		return cmp.Compare(a.offset, b.offset)
	})

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids
}

// pathEdges links consecutive entities in mention order.
func pathEdges(text string, nodes []common.Node) []common.Edge {
	ids := MentionOrder(text, nodes)
	edges := make([]common.Edge, 0, max(len(ids)-1, 0))
	for i := 1; i < len(ids); i++ {
		edges = append(edges, common.Edge{Source: ids[i-1], Target: ids[i]})
	}
	return edges
}

func assemblePrebuiltGraph(r PrebuiltGraph) Result {
	b := newGraphBuilder()
	var issues []error

	inHyp, inKG := membership(r.EntitiesHyp), membership(r.EntitiesKG)

	for _, n := range r.Nodes {
		if err := validate.Struct(n); err != nil {
			if !onlyFieldInvalid(err, "Provenance") {
				issues = append(issues, fmt.Errorf("%w: node %q: %v", ErrMalformedInput, n.ID, err))
				continue
			}
			issues = append(issues, fmt.Errorf("%w: node %q: unknown provenance %q", ErrMalformedInput, n.ID, n.Provenance))
			n.Provenance = ""
		}
		if n.Provenance == "" {
			n.Provenance = common.ProvenanceOf(inHyp[n.ID], inKG[n.ID])
		}
		b.addNode(n)
	}

	for _, e := range r.Edges {
		if err := validate.Struct(e); err != nil {
			issues = append(issues, fmt.Errorf("%w: edge %q -> %q: %v", ErrMalformedInput, e.Source, e.Target, err))
			continue
		}
		b.addEdge(e)
	}

	return Result{Graph: b.graph(sortPaths(r.Paths)), Issues: issues}
}

// onlyFieldInvalid reports whether every validation failure in err concerns
// the named struct field.
func onlyFieldInvalid(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() != field {
			return false
		}
	}
	return true
}

// sortPaths returns a copy of paths ordered by descending score. Paths with
// equal scores keep their relative order.
func sortPaths(paths []common.ReasoningPath) []common.ReasoningPath {
	sorted := make([]common.ReasoningPath, len(paths))
	copy(sorted, paths)
	slices.SortStableFunc(sorted, func(a, b common.ReasoningPath) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return sorted
}

// locateMentions finds every occurrence of every node ID in text.
func locateMentions(text string, nodes []common.Node) []common.Mention {
	mentions := make([]common.Mention, 0)
	for _, n := range nodes {
		offsets, err := textspan.IndexesOf(n.ID, text)
		if err != nil {
			continue
		}
		for _, off := range offsets {
			mentions = append(mentions, common.Mention{Entity: n.ID, Start: off, End: off + len(n.ID)})
		}
	}

	slices.SortStableFunc(mentions, func(a, b common.Mention) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return mentions
}
