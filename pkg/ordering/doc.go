// Package ordering provides crossing-reduction strategies for the two
// columns of a flow diagram.
//
// [Barycentric] is the default: a bounded number of barycenter sweeps with
// the best ordering retained. [Identity] keeps first-encounter order.
// Custom strategies implement [Orderer].
package ordering
