package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/OFFIS-RIT/kgview/pkg/common"

	"github.com/go-playground/validator"
)

// ErrMalformedInput marks a payload, or an element of it, that cannot be
// turned into graph data.
var ErrMalformedInput = errors.New("malformed input")

var validate = validator.New()

// ChatResponse is the payload sent by the reasoning backend. Depending on the
// backend version it carries either scored reasoning paths or a ready graph.
//
// Decoding is lenient per element: an entity, path, node or edge of the wrong
// JSON type is left out and recorded in Rejected.
type ChatResponse struct {
	Hypothesis  *string       `json:"hypothesis"`
	EntitiesHyp []string      `json:"entities_hyp"`
	EntitiesKG  []string      `json:"entities_kg"`
	TopPaths    PathList      `json:"top_paths,omitempty"`
	NewQuery    string        `json:"new_query"`
	Response    string        `json:"response"`
	Graph       *GraphPayload `json:"graph,omitempty"`

	Rejected []error `json:"-"`
}

// GraphPayload is a graph computed by the backend itself.
type GraphPayload struct {
	Nodes NodeList `json:"nodes"`
	Edges EdgeList `json:"edges"`
	Paths PathList `json:"paths,omitempty"`
}

func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Hypothesis  *string         `json:"hypothesis"`
		EntitiesHyp json.RawMessage `json:"entities_hyp"`
		EntitiesKG  json.RawMessage `json:"entities_kg"`
		TopPaths    json.RawMessage `json:"top_paths"`
		NewQuery    string          `json:"new_query"`
		Response    string          `json:"response"`
		Graph       json.RawMessage `json:"graph"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	resp := ChatResponse{
		Hypothesis: raw.Hypothesis,
		NewQuery:   raw.NewQuery,
		Response:   raw.Response,
	}

	var err error
	var rejected []error
	if resp.EntitiesHyp, rejected, err = decodeList(raw.EntitiesHyp, "entities_hyp", false, decodeString); err != nil {
		return err
	}
	resp.Rejected = append(resp.Rejected, rejected...)

	if resp.EntitiesKG, rejected, err = decodeList(raw.EntitiesKG, "entities_kg", false, decodeString); err != nil {
		return err
	}
	resp.Rejected = append(resp.Rejected, rejected...)

	if resp.TopPaths, rejected, err = decodeList(raw.TopPaths, "top_paths", false, decodePath); err != nil {
		return err
	}
	resp.Rejected = append(resp.Rejected, rejected...)

	if g := bytes.TrimSpace(raw.Graph); len(g) > 0 && !bytes.Equal(g, []byte("null")) {
		var rawGraph struct {
			Nodes json.RawMessage `json:"nodes"`
			Edges json.RawMessage `json:"edges"`
			Paths json.RawMessage `json:"paths"`
		}
		if err := json.Unmarshal(g, &rawGraph); err != nil {
			return fmt.Errorf("%w: graph: %v", ErrMalformedInput, err)
		}

		resp.Graph = &GraphPayload{}
		if resp.Graph.Nodes, rejected, err = decodeList(rawGraph.Nodes, "node", true, decodeNode); err != nil {
			return err
		}
		resp.Rejected = append(resp.Rejected, rejected...)

		if resp.Graph.Edges, rejected, err = decodeList(rawGraph.Edges, "edge", true, decodeEdge); err != nil {
			return err
		}
		resp.Rejected = append(resp.Rejected, rejected...)

		if resp.Graph.Paths, rejected, err = decodeList(rawGraph.Paths, "path", false, decodePath); err != nil {
			return err
		}
		resp.Rejected = append(resp.Rejected, rejected...)
	}

	*r = resp
	return nil
}

// decodeList reads an array, or an id-keyed object when keyed is set, and
// decodes every element on its own. Elements that fail to decode are
// returned as rejected. Only a container of the wrong kind is an error.
func decodeList[T any](
	data []byte,
	what string,
	keyed bool,
	decode func(raw json.RawMessage, key string) (T, error),
) ([]T, []error, error) {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil, nil, nil
	case data[0] == '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, what, err)
		}
		items := make([]T, 0, len(raws))
		var rejected []error
		for i, raw := range raws {
			item, err := decode(raw, "")
			if err != nil {
				rejected = append(rejected, fmt.Errorf("%w: %s %d: %v", ErrMalformedInput, what, i, err))
				continue
			}
			items = append(items, item)
		}
		return items, rejected, nil
	case keyed && data[0] == '{':
		var raws map[string]json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, what, err)
		}
		items := make([]T, 0, len(raws))
		var rejected []error
		for _, key := range slices.Sorted(maps.Keys(raws)) {
			item, err := decode(raws[key], key)
			if err != nil {
				rejected = append(rejected, fmt.Errorf("%w: %s %q: %v", ErrMalformedInput, what, key, err))
				continue
			}
			items = append(items, item)
		}
		return items, rejected, nil
	case keyed:
		return nil, nil, fmt.Errorf("%w: %s list must be an array or an object, got %s", ErrMalformedInput, what, data)
	default:
		return nil, nil, fmt.Errorf("%w: %s must be an array, got %s", ErrMalformedInput, what, data)
	}
}

// decodeStrict is decodeList for standalone lists, where any rejected
// element fails the whole list.
func decodeStrict[T any](
	data []byte,
	what string,
	keyed bool,
	decode func(raw json.RawMessage, key string) (T, error),
) ([]T, error) {
	items, rejected, err := decodeList(data, what, keyed, decode)
	if err != nil {
		return nil, err
	}
	if len(rejected) > 0 {
		return nil, errors.Join(rejected...)
	}
	return items, nil
}

func decodeString(raw json.RawMessage, _ string) (string, error) {
	var s string
	err := json.Unmarshal(raw, &s)
	return s, err
}

func decodePath(raw json.RawMessage, _ string) (common.ReasoningPath, error) {
	var p common.ReasoningPath
	err := json.Unmarshal(raw, &p)
	return p, err
}

func decodeEdge(raw json.RawMessage, _ string) (common.Edge, error) {
	var e common.Edge
	err := json.Unmarshal(raw, &e)
	return e, err
}

type nodeRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	Provenance common.Provenance `json:"provenance"`
}

func (r nodeRecord) node(key string) common.Node {
	id := r.ID
	if id == "" {
		id = key
	}
	label := r.Label
	if label == "" && r.Name != id {
		label = r.Name
	}
	return common.Node{ID: id, Label: label, Provenance: r.Provenance}
}

// decodeNode accepts a node object or a bare node ID.
func decodeNode(raw json.RawMessage, key string) (common.Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return common.Node{}, err
		}
		return common.Node{ID: id}, nil
	}

	var rec nodeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return common.Node{}, err
	}
	return rec.node(key), nil
}

// NodeList accepts nodes either as an array of node objects or plain IDs,
// or as an object keyed by node ID. Keyed nodes are read in key order.
type NodeList []common.Node

func (l *NodeList) UnmarshalJSON(data []byte) error {
	nodes, err := decodeStrict(data, "node", true, decodeNode)
	if err != nil {
		return err
	}
	*l = nodes
	return nil
}

// EdgeList accepts edges either as an array or as an object keyed by edge ID.
type EdgeList []common.Edge

func (l *EdgeList) UnmarshalJSON(data []byte) error {
	edges, err := decodeStrict(data, "edge", true, decodeEdge)
	if err != nil {
		return err
	}
	*l = edges
	return nil
}

type PathList []common.ReasoningPath

func (l *PathList) UnmarshalJSON(data []byte) error {
	paths, err := decodeStrict(data, "path", false, decodePath)
	if err != nil {
		return err
	}
	*l = paths
	return nil
}

// Response is one of ScoredPaths or PrebuiltGraph.
type Response interface {
	envelope() Envelope
}

// Envelope holds the fields shared by every response variant.
type Envelope struct {
	Hypothesis  string
	EntitiesHyp []string
	EntitiesKG  []string
	NewQuery    string
	Answer      string
	// Rejected lists payload elements that were dropped while decoding.
	Rejected []error
}

// ScoredPaths is a response whose edges are derived from the entity mentions
// inside its reasoning paths.
type ScoredPaths struct {
	Envelope
	Paths []common.ReasoningPath
}

// PrebuiltGraph is a response that already carries nodes and edges.
type PrebuiltGraph struct {
	Envelope
	Nodes []common.Node
	Edges []common.Edge
	Paths []common.ReasoningPath
}

func (r ScoredPaths) envelope() Envelope   { return r.Envelope }
func (r PrebuiltGraph) envelope() Envelope { return r.Envelope }

// Classify picks the variant of a decoded payload. A payload with a graph is
// a PrebuiltGraph, everything else is ScoredPaths. The hypothesis field must
// be present, it may be empty.
func Classify(resp ChatResponse) (Response, error) {
	if resp.Hypothesis == nil {
		return nil, fmt.Errorf("%w: hypothesis is required", ErrMalformedInput)
	}

	env := Envelope{
		Hypothesis:  *resp.Hypothesis,
		EntitiesHyp: resp.EntitiesHyp,
		EntitiesKG:  resp.EntitiesKG,
		NewQuery:    resp.NewQuery,
		Answer:      resp.Response,
		Rejected:    resp.Rejected,
	}

	if resp.Graph != nil {
		return PrebuiltGraph{
			Envelope: env,
			Nodes:    resp.Graph.Nodes,
			Edges:    resp.Graph.Edges,
			Paths:    resp.Graph.Paths,
		}, nil
	}

	return ScoredPaths{Envelope: env, Paths: resp.TopPaths}, nil
}

// DecodeResponse parses a raw payload and classifies it.
func DecodeResponse(data []byte) (Response, error) {
	var resp ChatResponse
	if err := decodeLenient(data, &resp); err != nil {
		return nil, err
	}
	return Classify(resp)
}
