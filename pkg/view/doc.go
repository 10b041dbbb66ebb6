// Package view binds a dataset, a column selection and a sankey layout to
// the events of an interactive renderer.
//
// A [View] rebuilds its graph and layout whenever rows or the selection
// change and reports a [Placeholder] when there is nothing to draw. Drag
// events are forwarded to the layout's drag state machine, reference ids
// are resolved in constant time through the graph's reference index, and
// surface resizes are coalesced by a [Debouncer] before a relayout. A
// relayout never interrupts a gesture; it runs when the gesture ends.
package view
