package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/pybundle/pkg/dag"
)

func TestWriteJSON(t *testing.T) {
	g := dag.New()
	_ = g.AddEdge("/p/app.py", "/p/pkg/__init__.py")
	_ = g.AddEdge("/p/pkg/__init__.py", "/p/app.py")
	_ = g.SetMeta("/p/app.py", "rel", "app.py")

	var buf bytes.Buffer
	err := WriteJSON(g, &buf, Options{
		Root:   "/p",
		Entry:  "/p/app.py",
		Order:  []string{"/p/pkg/__init__.py", "/p/app.py"},
		Cycles: []dag.Edge{{From: "/p/pkg/__init__.py", To: "/p/app.py"}},
	})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var got graph
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Entry != "app.py" || len(got.Nodes) != 2 || got.Nodes[1].ID != "pkg/__init__.py" {
		t.Errorf("nodes/entry = %+v / %q", got.Nodes, got.Entry)
	}
	if got.Nodes[1].Path != "/p/pkg/__init__.py" || got.Nodes[1].Meta != nil {
		t.Errorf("node[1] = %+v", got.Nodes[1])
	}
	if !slices.Equal(got.Nodes[1].ImportedBy, []string{"app.py"}) {
		t.Errorf("node[1].ImportedBy = %v", got.Nodes[1].ImportedBy)
	}
	if len(got.Edges) != 2 || got.Edges[0].Cycle || !got.Edges[1].Cycle {
		t.Errorf("edges = %+v", got.Edges)
	}
	if len(got.Order) != 2 || got.Order[1] != "app.py" {
		t.Errorf("order = %v", got.Order)
	}
	if len(got.Cycles) != 1 || got.Cycles[0].From != "pkg/__init__.py" {
		t.Errorf("cycles = %+v", got.Cycles)
	}
}

func TestWriteJSON_EmptyGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(dag.New(), &buf, Options{}); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["nodes"].([]any); !ok {
		t.Errorf("nodes should be an empty array, got %v", got["nodes"])
	}
}

func TestExportJSON(t *testing.T) {
	g := dag.New()
	_ = g.AddNode("/p/main.py")
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := ExportJSON(g, path, Options{Root: "/p"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Contains(data, []byte(`"id": "main.py"`)) {
		t.Errorf("exported file = %s, %v", data, err)
	}
	if err := ExportJSON(g, filepath.Join(t.TempDir(), "missing", "g.json"), Options{}); err == nil {
		t.Error("expected error for missing directory")
	}
}
