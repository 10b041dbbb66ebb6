package sankey_test

import (
	"fmt"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/sankey"
	"github.com/matzehuels/crossflow/pkg/table"
)

func ExampleCompute() {
	rows := []table.Row{
		{"Method": "survey", "Field": "graphs"},
		{"Method": "survey", "Field": "graphs"},
		{"Method": "study", "Field": "graphs"},
	}
	g := flow.Build(rows, flow.Selection{Source: "Method", Target: "Field"})
	l := sankey.Compute(g, sankey.Config{}, ordering.Identity{})

	for _, b := range l.Nodes() {
		fmt.Printf("%s x=%v y=%v..%v\n", b.Key, b.X0, b.Y0, b.Y1)
	}
	// Output:
	// left:survey x=160 y=20..32
	// left:study x=160 y=42..48
	// right:graphs x=785 y=20..38
}

func ExampleLayout_StartDrag() {
	rows := []table.Row{
		{"S": "a", "T": "x"},
		{"S": "b", "T": "x"},
		{"S": "c", "T": "x"},
	}
	g := flow.Build(rows, flow.Selection{Source: "S", Target: "T"})
	l := sankey.Compute(g, sankey.Config{}, ordering.Identity{})

	d, _ := l.StartDrag(flow.Key(flow.Left, "a"))
	_, _ = d.Move(1000) // past every sibling
	fmt.Println("insert at", d.InsertIndex())
	_, _ = d.End()
	fmt.Println(l.Column(flow.Left))
	// Output:
	// insert at 2
	// [left:b left:c left:a]
}
