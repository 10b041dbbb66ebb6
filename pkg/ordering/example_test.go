package ordering_test

import (
	"fmt"

	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/table"
)

func ExampleBarycentric() {
	// a->x, b->y, a->y, c->x: builder order lets c->x cross two links
	rows := []table.Row{
		{"S": "a", "T": "x"},
		{"S": "b", "T": "y"},
		{"S": "a", "T": "y"},
		{"S": "c", "T": "x"},
	}
	g := flow.Build(rows, flow.Selection{Source: "S", Target: "T"})

	l0, r0 := ordering.Identity{}.Order(g)
	fmt.Println("Initial crossings:", flow.CountCrossings(g, l0, r0))

	left, right := ordering.Barycentric{Passes: 24}.Order(g)
	fmt.Println("After ordering:", flow.CountCrossings(g, left, right))
	// Output:
	// Initial crossings: 2
	// After ordering: 0
}

func Example_ordererInterface() {
	rows := []table.Row{{"S": "a", "T": "x"}}
	g := flow.Build(rows, flow.Selection{Source: "S", Target: "T"})

	var orderer ordering.Orderer = ordering.Identity{}
	left, right := orderer.Order(g)
	fmt.Println(left, right)
	// Output:
	// [left:a] [right:x]
}

func ExampleIdentity_Order() {
	rows := []table.Row{
		{"S": "b", "T": "y"},
		{"S": "a", "T": "x"},
		{"S": "b", "T": "x"},
	}
	g := flow.Build(rows, flow.Selection{Source: "S", Target: "T"})

	left, right := ordering.Identity{}.Order(g)
	fmt.Println(left, right)
	// Output:
	// [left:b left:a] [right:y right:x]
}
