// Package render converts an assembled graph into the keyed node and edge
// records a network graph component consumes.
package render

import (
	"fmt"
	"unicode/utf16"

	"github.com/OFFIS-RIT/kgview/pkg/common"
	"github.com/OFFIS-RIT/kgview/pkg/graph"
)

type NodeView struct {
	Name       string            `json:"name"`
	Provenance common.Provenance `json:"provenance"`
	Color      string            `json:"color"`
}

type EdgeView struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// MentionView locates an entity in the hypothesis. Offsets count UTF-16 code
// units so they can be used as JavaScript string indexes.
type MentionView struct {
	Entity string `json:"entity"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

type View struct {
	Hypothesis string                 `json:"hypothesis"`
	Nodes      map[string]NodeView    `json:"nodes"`
	Edges      map[string]EdgeView    `json:"edges"`
	Paths      []common.ReasoningPath `json:"paths"`
	Mentions   []MentionView          `json:"mentions"`
	// Highlight lists the nodes mentioned by the best scored path.
	Highlight []string `json:"highlight"`
	Configs   Config   `json:"configs"`
	Dropped   int      `json:"dropped"`
}

// EdgeKey returns the key of the i-th edge, counting from zero.
func EdgeKey(i int) string {
	return fmt.Sprintf("edge%d", i+1)
}

// Build creates the view for an assembled response.
func Build(res graph.Result, cfg Config) View {
	view := View{
		Hypothesis: res.Hypothesis,
		Nodes:      make(map[string]NodeView, len(res.Graph.Nodes)),
		Edges:      make(map[string]EdgeView, len(res.Graph.Edges)),
		Paths:      res.Graph.Paths,
		Mentions:   make([]MentionView, 0, len(res.Mentions)),
		Highlight:  make([]string, 0),
		Configs:    cfg,
		Dropped:    res.Dropped(),
	}
	if view.Paths == nil {
		view.Paths = make([]common.ReasoningPath, 0)
	}

	for _, n := range res.Graph.Nodes {
		name := n.ID
		if cfg.NodeLabel == "label" {
			name = n.DisplayLabel()
		}
		view.Nodes[n.ID] = NodeView{
			Name:       name,
			Provenance: n.Provenance,
			Color:      cfg.colorOf(n.Provenance),
		}
	}

	for i, e := range res.Graph.Edges {
		view.Edges[EdgeKey(i)] = EdgeView{Source: e.Source, Target: e.Target}
	}

	for _, m := range res.Mentions {
		if m.Start < 0 || m.End > len(res.Hypothesis) || m.Start > m.End {
			continue
		}
		start := utf16Len(res.Hypothesis[:m.Start])
		view.Mentions = append(view.Mentions, MentionView{
			Entity: m.Entity,
			Start:  start,
			End:    start + utf16Len(res.Hypothesis[m.Start:m.End]),
		})
	}

	if len(res.Graph.Paths) > 0 {
		view.Highlight = graph.MentionOrder(res.Graph.Paths[0].Text, res.Graph.Nodes)
	}

	return view
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
