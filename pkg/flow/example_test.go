package flow_test

import (
	"fmt"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/table"
)

func ExampleBuild() {
	rows := []table.Row{
		{"Method": "survey", "Field": "graphs"},
		{"Method": "survey", "Field": "graphs"},
		{"Method": "study", "Field": "graphs"},
		{"Method": "survey", "Field": ""},
	}
	g := flow.Build(rows, flow.Selection{Source: "Method", Target: "Field"})

	for _, n := range g.Nodes() {
		fmt.Println(n.Key, n.Flow)
	}
	for _, l := range g.Links() {
		fmt.Println(l.Source.Value, "->", l.Target.Value, l.Count, l.RefIDs)
	}
	// Output:
	// left:survey 2
	// left:study 1
	// right:graphs 3
	// survey -> graphs 2 [1 2]
	// study -> graphs 1 [3]
}

func ExampleGraph_LinksForRef() {
	rows := []table.Row{
		{"A": "x", "B": "p"},
		{"A": "y", "B": "q"},
	}
	g := flow.Build(rows, flow.Selection{Source: "A", Target: "B"})

	for _, l := range g.LinksForRef(2) {
		fmt.Println(l.Source, "->", l.Target)
	}
	// Output:
	// left:y -> right:q
}
