package graph

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/kgview/pkg/common"
)

func TestDecodeResponse_Variants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
	}{
		{
			name:     "scored paths",
			input:    `{"hypothesis":"h","entities_hyp":["A"],"entities_kg":["B"],"top_paths":[{"text":"A to B","score":0.5}],"new_query":"q","response":"r"}`,
			wantType: "scored",
		},
		{
			name:     "no paths and no graph",
			input:    `{"hypothesis":"h","entities_hyp":["A"],"entities_kg":[]}`,
			wantType: "scored",
		},
		{
			name:     "prebuilt graph",
			input:    `{"hypothesis":"h","entities_hyp":[],"entities_kg":[],"graph":{"nodes":[{"id":"A"}],"edges":[{"source":"A","target":"B"}],"paths":[]}}`,
			wantType: "prebuilt",
		},
		{
			name:     "graph wins over top paths",
			input:    `{"hypothesis":"h","top_paths":[{"text":"x","score":1}],"graph":{"nodes":[],"edges":[]}}`,
			wantType: "prebuilt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			switch resp.(type) {
			case ScoredPaths:
				if tt.wantType != "scored" {
					t.Fatalf("got ScoredPaths, want %s", tt.wantType)
				}
			case PrebuiltGraph:
				if tt.wantType != "prebuilt" {
					t.Fatalf("got PrebuiltGraph, want %s", tt.wantType)
				}
			default:
				t.Fatalf("unexpected variant %T", resp)
			}
		})
	}
}

func TestDecodeResponse_Envelope(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"hypothesis":"h","entities_hyp":["A"],"entities_kg":["B"],"new_query":"next?","response":"answer","top_paths":[{"text":"t","score":2}]}`))
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}

	want := ScoredPaths{
		Envelope: Envelope{
			Hypothesis:  "h",
			EntitiesHyp: []string{"A"},
			EntitiesKG:  []string{"B"},
			NewQuery:    "next?",
			Answer:      "answer",
		},
		Paths: []common.ReasoningPath{{Text: "t", Score: 2}},
	}
	if !reflect.DeepEqual(resp, want) {
		t.Fatalf("DecodeResponse() = %#v, want %#v", resp, want)
	}
}

func TestDecodeResponse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "missing hypothesis", input: `{"entities_hyp":["A"]}`},
		{name: "hypothesis of wrong type", input: `{"hypothesis":5}`},
		{name: "graph of wrong kind", input: `{"hypothesis":"h","graph":"nodes"}`},
		{name: "entities of wrong kind", input: `{"hypothesis":"h","entities_hyp":{"A":1}}`},
		{name: "nodes of wrong kind", input: `{"hypothesis":"h","graph":{"nodes":42}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse([]byte(tt.input))
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("DecodeResponse() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestDecodeResponse_Repaired(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unquoted keys and single quotes", input: `{hypothesis: 'h', entities_hyp: ['A'],}`},
		{name: "double encoded", input: `"{\"hypothesis\":\"h\",\"entities_hyp\":[\"A\"]}"`},
		{name: "missing end bracket", input: `{"hypothesis":"h","entities_hyp":["A"]`},
		{name: "duplicate leading brace", input: "{\n{\"hypothesis\":\"h\",\"entities_hyp\":[\"A\"]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			sp, ok := resp.(ScoredPaths)
			if !ok {
				t.Fatalf("got %T, want ScoredPaths", resp)
			}
			if sp.Hypothesis != "h" || !reflect.DeepEqual(sp.EntitiesHyp, []string{"A"}) {
				t.Fatalf("decoded = %#v", sp)
			}
		})
	}
}

func TestNodeList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  NodeList
	}{
		{
			name:  "array of objects",
			input: `[{"id":"A","label":"Alpha","provenance":"both"},{"id":"B"}]`,
			want: NodeList{
				{ID: "A", Label: "Alpha", Provenance: common.ProvenanceBoth},
				{ID: "B"},
			},
		},
		{
			name:  "array of ids",
			input: `["A","B"]`,
			want:  NodeList{{ID: "A"}, {ID: "B"}},
		},
		{
			name:  "keyed object sorted by key",
			input: `{"node2":{"name":"Beta"},"node1":{"name":"Alpha"},"C":{}}`,
			want: NodeList{
				{ID: "C"},
				{ID: "node1", Label: "Alpha"},
				{ID: "node2", Label: "Beta"},
			},
		},
		{
			name:  "name equal to key is not a label",
			input: `{"Paris":{"name":"Paris"}}`,
			want:  NodeList{{ID: "Paris"}},
		},
		{
			name:  "null element",
			input: `[null,{"id":"A"}]`,
			want:  NodeList{{}, {ID: "A"}},
		},
		{
			name:  "null",
			input: `null`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got NodeList
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEdgeList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  EdgeList
	}{
		{
			name:  "array",
			input: `[{"source":"A","target":"B"},{"source":null,"target":"B"}]`,
			want:  EdgeList{{Source: "A", Target: "B"}, {Target: "B"}},
		},
		{
			name:  "keyed object",
			input: `{"edge2":{"source":"B","target":"C"},"edge1":{"source":"A","target":"B"}}`,
			want:  EdgeList{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got EdgeList
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPayloadSchema(t *testing.T) {
	schema := PayloadSchema()
	if schema == nil || schema.Properties == nil {
		t.Fatalf("PayloadSchema() returned no properties")
	}
	if _, ok := schema.Properties.Get("Rejected"); ok {
		t.Errorf("schema must not expose decode bookkeeping")
	}
	for _, key := range []string{"hypothesis", "entities_hyp", "entities_kg", "top_paths", "graph"} {
		if _, ok := schema.Properties.Get(key); !ok {
			t.Errorf("schema is missing property %q", key)
		}
	}
}

func TestDecodeResponse_EmptyHypothesisIsPresent(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"hypothesis":"","entities_kg":["A"]}`))
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	sp, ok := resp.(ScoredPaths)
	if !ok {
		t.Fatalf("got %T, want ScoredPaths", resp)
	}
	if sp.Hypothesis != "" || !reflect.DeepEqual(sp.EntitiesKG, []string{"A"}) {
		t.Fatalf("decoded = %#v", sp)
	}
}

func TestDecodeResponse_RejectsElementsOfWrongType(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantNodes    []string
		wantEdges    []common.Edge
		wantPaths    int
		wantEntities []string
		wantRejected int
	}{
		{
			name:         "numeric edge endpoint",
			input:        `{"hypothesis":"h","graph":{"nodes":["A","B"],"edges":[{"source":5,"target":"B"},{"source":"A","target":"B"}]}}`,
			wantNodes:    []string{"A", "B"},
			wantEdges:    []common.Edge{{Source: "A", Target: "B"}},
			wantRejected: 1,
		},
		{
			name:         "numeric node id and bare number",
			input:        `{"hypothesis":"h","graph":{"nodes":[{"id":7},7,"A"],"edges":[7]}}`,
			wantNodes:    []string{"A"},
			wantEdges:    []common.Edge{},
			wantRejected: 3,
		},
		{
			name:         "keyed edge of wrong type",
			input:        `{"hypothesis":"h","graph":{"nodes":{"A":{}},"edges":{"e1":"A-B","e2":{"source":"A","target":"A"}}}}`,
			wantNodes:    []string{"A"},
			wantEdges:    []common.Edge{{Source: "A", Target: "A"}},
			wantRejected: 1,
		},
		{
			name:         "paths and entities of wrong type",
			input:        `{"hypothesis":"h","graph":{"nodes":[],"edges":[],"paths":[{"text":"x","score":"high"},{"text":"y","score":1}]},"entities_hyp":["A",3]}`,
			wantNodes:    []string{},
			wantEdges:    []common.Edge{},
			wantPaths:    1,
			wantEntities: []string{"A"},
			wantRejected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			pg, ok := resp.(PrebuiltGraph)
			if !ok {
				t.Fatalf("got %T, want PrebuiltGraph", resp)
			}
			if tt.wantEntities != nil && !reflect.DeepEqual(pg.EntitiesHyp, tt.wantEntities) {
				t.Fatalf("entities = %v, want %v", pg.EntitiesHyp, tt.wantEntities)
			}
			if len(pg.Paths) != tt.wantPaths {
				t.Fatalf("paths = %v, want %d", pg.Paths, tt.wantPaths)
			}

			res := Assemble(resp)
			if got := nodeIDs(res.Graph.Nodes); !reflect.DeepEqual(got, tt.wantNodes) {
				t.Fatalf("nodes = %v, want %v", got, tt.wantNodes)
			}
			if !reflect.DeepEqual(res.Graph.Edges, tt.wantEdges) {
				t.Fatalf("edges = %#v, want %#v", res.Graph.Edges, tt.wantEdges)
			}
			if res.Dropped() != tt.wantRejected {
				t.Fatalf("Dropped() = %d, want %d: %v", res.Dropped(), tt.wantRejected, res.Err())
			}
			for _, issue := range res.Issues {
				if !errors.Is(issue, ErrMalformedInput) {
					t.Fatalf("issue %v does not wrap ErrMalformedInput", issue)
				}
			}
		})
	}
}

func TestNodeList_UnmarshalJSONStrict(t *testing.T) {
	var nodes NodeList
	err := json.Unmarshal([]byte(`[{"id":7},"A"]`), &nodes)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("Unmarshal() error = %v, want ErrMalformedInput", err)
	}
}
