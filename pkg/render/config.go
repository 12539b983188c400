package render

import (
	"github.com/OFFIS-RIT/kgview/internal/util"
	"github.com/OFFIS-RIT/kgview/pkg/common"
)

// Config is the presentation style handed to the graph component along with
// the graph itself.
type Config struct {
	NodeColor  string                       `json:"node_color"`
	NodeColors map[common.Provenance]string `json:"node_colors,omitempty"`
	// NodeLabel selects the node name shown by the component, "id" or "label".
	NodeLabel  string  `json:"node_label"`
	EdgeWidth  float64 `json:"edge_width"`
	EdgeColor  string  `json:"edge_color"`
	ArrowShape string  `json:"arrow_shape"`
	Layout     Layout  `json:"layout"`
}

type Layout struct {
	Name string `json:"name"`
	Rows int    `json:"rows,omitempty"`
}

// DefaultConfig returns grey nodes labelled by ID, light grey arrows and a
// single row grid layout.
func DefaultConfig() Config {
	return Config{
		NodeColor:  "#666",
		NodeLabel:  "id",
		EdgeWidth:  3,
		EdgeColor:  "#ccc",
		ArrowShape: "triangle",
		Layout:     Layout{Name: "grid", Rows: 1},
	}
}

// ConfigFromEnv returns DefaultConfig with KGVIEW_* overrides applied.
func ConfigFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		NodeColor:  util.GetEnvString("KGVIEW_NODE_COLOR", def.NodeColor),
		NodeLabel:  util.GetEnvString("KGVIEW_NODE_LABEL", def.NodeLabel),
		EdgeWidth:  util.GetEnvNumeric("KGVIEW_EDGE_WIDTH", def.EdgeWidth),
		EdgeColor:  util.GetEnvString("KGVIEW_EDGE_COLOR", def.EdgeColor),
		ArrowShape: util.GetEnvString("KGVIEW_ARROW_SHAPE", def.ArrowShape),
		Layout: Layout{
			Name: util.GetEnvString("KGVIEW_LAYOUT", def.Layout.Name),
			Rows: util.GetEnvInt("KGVIEW_LAYOUT_ROWS", def.Layout.Rows),
		},
	}

	colors := map[common.Provenance]string{
		common.ProvenanceHypothesis:     util.GetEnv("KGVIEW_HYPOTHESIS_COLOR"),
		common.ProvenanceKnowledgeGraph: util.GetEnv("KGVIEW_KG_COLOR"),
		common.ProvenanceBoth:           util.GetEnv("KGVIEW_BOTH_COLOR"),
		common.ProvenanceUnknown:        util.GetEnv("KGVIEW_UNKNOWN_COLOR"),
	}
	for p, c := range colors {
		if c == "" {
			continue
		}
		if cfg.NodeColors == nil {
			cfg.NodeColors = make(map[common.Provenance]string)
		}
		cfg.NodeColors[p] = c
	}

	return cfg
}

func (c Config) colorOf(p common.Provenance) string {
	if color, ok := c.NodeColors[p]; ok {
		return color
	}
	return c.NodeColor
}
