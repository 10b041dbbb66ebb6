package graph_test

import (
	"fmt"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/graph"
	"github.com/matzehuels/crossflow/pkg/table"
)

func ExampleFromFlow() {
	rows := []table.Row{
		{"Method": "survey", "Field": "graphs"},
		{"Method": "study", "Field": "graphs"},
	}
	g := graph.FromFlow(flow.Build(rows, flow.Selection{Source: "Method", Target: "Field"}))

	for _, l := range g.Links {
		fmt.Println(l.Source, "->", l.Target, l.Refs)
	}
	// Output:
	// left:survey -> right:graphs [1]
	// left:study -> right:graphs [2]
}
