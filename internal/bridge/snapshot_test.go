package bridge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRawAXValueString(t *testing.T) {
	tests := []struct {
		name string
		val  *RawAXValue
		want string
	}{
		{"nil", nil, ""},
		{"nil value", &RawAXValue{Type: "string"}, ""},
		{"string", &RawAXValue{Type: "string", Value: json.RawMessage(`"hello"`)}, "hello"},
		{"number", &RawAXValue{Type: "integer", Value: json.RawMessage(`42`)}, "42"},
		{"bool", &RawAXValue{Type: "boolean", Value: json.RawMessage(`true`)}, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.val.String()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInteractiveRoles(t *testing.T) {
	interactive := []string{"button", "link", "textbox", "checkbox", "radio", "tab", "menuitem"}
	for _, r := range interactive {
		if !InteractiveRoles[r] {
			t.Errorf("expected %q to be interactive", r)
		}
	}

	nonInteractive := []string{"heading", "paragraph", "image", "banner", "main", "navigation"}
	for _, r := range nonInteractive {
		if InteractiveRoles[r] {
			t.Errorf("expected %q to NOT be interactive", r)
		}
	}
}

func sampleTree() []RawAXNode {
	return []RawAXNode{
		{
			NodeID:           "root",
			Role:             &RawAXValue{Value: json.RawMessage(`"WebArea"`)},
			Name:             &RawAXValue{Value: json.RawMessage(`"Suggestions"`)},
			ChildIDs:         []string{"n1", "n2", "n3", "n4"},
			BackendDOMNodeID: 1,
		},
		{
			NodeID:           "n1",
			Role:             &RawAXValue{Value: json.RawMessage(`"region"`)},
			Name:             &RawAXValue{Value: json.RawMessage(`"Solutions"`)},
			BackendDOMNodeID: 10,
			Properties: []RawAXProp{
				{Name: "busy", Value: &RawAXValue{Value: json.RawMessage(`"false"`)}},
			},
		},
		{
			NodeID:           "n2",
			Role:             &RawAXValue{Value: json.RawMessage(`"link"`)},
			Name:             &RawAXValue{Value: json.RawMessage(`"Inspect source code (opens in a new window)"`)},
			BackendDOMNodeID: 20,
			Properties: []RawAXProp{
				{Name: "focused", Value: &RawAXValue{Value: json.RawMessage(`"true"`)}},
			},
		},
		{
			NodeID:  "n3",
			Ignored: true,
			Role:    &RawAXValue{Value: json.RawMessage(`"none"`)},
		},
		{
			NodeID:           "n4",
			Role:             &RawAXValue{Value: json.RawMessage(`"generic"`)},
			Name:             &RawAXValue{Value: json.RawMessage(`""`)},
			BackendDOMNodeID: 30,
		},
	}
}

func TestBuildSnapshot(t *testing.T) {
	flat, refs := BuildSnapshot(sampleTree(), "", -1)

	// root + region + link; ignored and generic nodes drop out.
	if len(flat) != 3 {
		t.Fatalf("expected 3 nodes, got %d: %+v", len(flat), flat)
	}

	if flat[0].Role != "WebArea" || flat[0].Depth != 0 {
		t.Errorf("unexpected root: %+v", flat[0])
	}
	if flat[1].Depth != 1 {
		t.Errorf("expected child depth 1, got %d", flat[1].Depth)
	}
	if flat[2].Role != "link" || !flat[2].Focused {
		t.Errorf("unexpected link node: %+v", flat[2])
	}

	if refs[flat[2].Ref] != 20 {
		t.Errorf("ref %s should map to backend 20, got %d", flat[2].Ref, refs[flat[2].Ref])
	}
}

func TestBuildSnapshotBusyProp(t *testing.T) {
	nodes := []RawAXNode{
		{
			NodeID:           "n1",
			Role:             &RawAXValue{Value: json.RawMessage(`"region"`)},
			Name:             &RawAXValue{Value: json.RawMessage(`"Solutions"`)},
			BackendDOMNodeID: 10,
			Properties: []RawAXProp{
				{Name: "busy", Value: &RawAXValue{Value: json.RawMessage(`"true"`)}},
			},
		},
	}
	flat, _ := BuildSnapshot(nodes, "", -1)
	if len(flat) != 1 || !flat[0].Busy {
		t.Fatalf("expected busy region, got %+v", flat)
	}
}

func TestBuildSnapshotInteractiveFilter(t *testing.T) {
	flat, _ := BuildSnapshot(sampleTree(), FilterInteractive, -1)
	if len(flat) != 1 || flat[0].Role != "link" {
		t.Fatalf("expected only the link, got %+v", flat)
	}
}

func TestBuildSnapshotMaxDepth(t *testing.T) {
	flat, _ := BuildSnapshot(sampleTree(), "", 0)
	if len(flat) != 1 || flat[0].Role != "WebArea" {
		t.Fatalf("expected only the root at depth 0, got %+v", flat)
	}
}

func TestFindByRoleName(t *testing.T) {
	flat, _ := BuildSnapshot(sampleTree(), "", -1)

	tests := []struct {
		name  string
		role  string
		query string
		found bool
	}{
		{"exact", "link", "Inspect source code (opens in a new window)", true},
		{"substring", "link", "Inspect source code", true},
		{"case insensitive", "link", "inspect SOURCE code", true},
		{"wrong role", "button", "Inspect source code", false},
		{"no such name", "link", "Download binary", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindByRoleName(flat, tt.role, tt.query)
			if (got != nil) != tt.found {
				t.Errorf("FindByRoleName(%q, %q) found=%v, want %v", tt.role, tt.query, got != nil, tt.found)
			}
			if got != nil && got.NodeID != 20 {
				t.Errorf("expected backend 20, got %d", got.NodeID)
			}
		})
	}
}

func TestFilterSubtree(t *testing.T) {
	nodes := []RawAXNode{
		{NodeID: "root", ChildIDs: []string{"a", "b"}, BackendDOMNodeID: 1,
			Role: &RawAXValue{Value: json.RawMessage(`"WebArea"`)}},
		{NodeID: "a", ChildIDs: []string{"a1"}, BackendDOMNodeID: 10,
			Role: &RawAXValue{Value: json.RawMessage(`"region"`)}},
		{NodeID: "a1", BackendDOMNodeID: 11,
			Role: &RawAXValue{Value: json.RawMessage(`"link"`)}},
		{NodeID: "b", BackendDOMNodeID: 20,
			Role: &RawAXValue{Value: json.RawMessage(`"button"`)}},
	}

	sub := FilterSubtree(nodes, 10)
	if len(sub) != 2 {
		t.Fatalf("expected region subtree of 2 nodes, got %d", len(sub))
	}
	for _, n := range sub {
		if n.NodeID == "b" || n.NodeID == "root" {
			t.Errorf("node %s should be outside the subtree", n.NodeID)
		}
	}

	// Unknown scope falls back to the full tree.
	all := FilterSubtree(nodes, 999)
	if len(all) != len(nodes) {
		t.Errorf("expected full tree for unknown scope, got %d nodes", len(all))
	}
}

func TestFormatSnapshotText(t *testing.T) {
	flat, _ := BuildSnapshot(sampleTree(), "", -1)
	out := FormatSnapshotText(flat)

	if !strings.Contains(out, "link") || !strings.Contains(out, "Inspect source code") {
		t.Errorf("expected link line in output:\n%s", out)
	}
	if !strings.Contains(out, "[focused]") {
		t.Errorf("expected focused marker in output:\n%s", out)
	}
}
