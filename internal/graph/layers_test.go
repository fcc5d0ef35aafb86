package graph

import (
	"testing"

	"github.com/gantry/gantry/internal/domain"
)

func TestLayers_Diamond(t *testing.T) {
	g, err := Build("tg-test", "user-1", diamond())
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	layers, err := Layers(g)
	if err != nil {
		t.Fatalf("Layers() returned error: %v", err)
	}

	want := map[int][]string{
		0: {"A"},
		1: {"B", "C"},
		2: {"D"},
	}
	if len(layers) != len(want) {
		t.Fatalf("got %d layers, want %d", len(layers), len(want))
	}
	for layer, ids := range want {
		got := layers[layer]
		if len(got) != len(ids) {
			t.Fatalf("layer %d = %v, want %v", layer, got, ids)
		}
		for i := range ids {
			if got[i] != ids[i] {
				t.Errorf("layer %d = %v, want %v", layer, got, ids)
			}
		}
	}
}

func TestLayers_LongestChainWins(t *testing.T) {
	// d depends on both a root and a depth-1 node: its layer is 2, not 1.
	nodes := []*domain.TaskNode{
		domain.NewTaskNode("root", 1),
		domain.NewTaskNode("mid", 1, "root"),
		domain.NewTaskNode("d", 1, "root", "mid"),
	}
	g, err := Build("tg-test", "user-1", nodes)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	layers, err := Layers(g)
	if err != nil {
		t.Fatalf("Layers() returned error: %v", err)
	}
	if len(layers[2]) != 1 || layers[2][0] != "d" {
		t.Errorf("layer 2 = %v, want [d]", layers[2])
	}
}

func TestLayers_NoPathWithinLayer(t *testing.T) {
	g, err := Build("tg-test", "user-1", diamond())
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	layers, err := Layers(g)
	if err != nil {
		t.Fatalf("Layers() returned error: %v", err)
	}

	// No node may depend, directly or transitively, on a node in its own
	// layer. Direct dependency check is sufficient for the diamond.
	for _, ids := range layers {
		inLayer := make(map[string]bool)
		for _, id := range ids {
			inLayer[id] = true
		}
		for _, id := range ids {
			for _, dep := range g.Node(id).Dependencies {
				if inLayer[dep] {
					t.Errorf("node %s and its dependency %s share a layer", id, dep)
				}
			}
		}
	}
}
