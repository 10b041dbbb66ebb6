// Package sankey computes two-column flow layouts and lets callers reorder
// nodes by dragging.
//
// # Layout
//
// [Compute] positions every node of a [flow.Graph]: left nodes at the left
// margin, right nodes against the right margin. Node height is proportional
// to flow (Config.FlowScale pixels per unit, at least Config.MinNodeHeight)
// and columns are packed from the top margin with Config.NodePadding
// between nodes. The layout never shrinks to fit: a tall column extends
// [Layout.Bottom] beyond the surface.
//
// Links leave the right edge of their source node and enter the left edge
// of their target node. Each node is divided into slices, one per incident
// link in link order, sized by the link's share of the node's flow.
//
// # Dragging
//
// Drag transitions are plain method calls on the layout with no rendering
// dependency:
//
//	d, err := layout.StartDrag(key)
//	boxes, err := d.Move(pointerY) // repeat while the pointer moves
//	boxes, err = d.End()           // commit the new column order
//
// While dragging, siblings make room for the node at its prospective slot;
// on End the column is repacked with uniform padding.
package sankey
