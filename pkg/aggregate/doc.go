// Package aggregate folds a set of IPv4 addresses into CIDR groups.
//
// Addresses are bucketed by /24, /16 and /8 prefix. /24 buckets with at least two
// members become groups first, then /16 buckets with at least three addresses and at
// least two still unassigned. Each selected bucket is folded into the smallest block
// that shares the common prefix of its lowest and highest member. Everything left over
// is reported as a /32.
//
// The fold is a heuristic: a block may cover addresses that were not in the input.
//
//	groups, err := aggregate.AggregateStrings([]string{"10.0.0.1", "10.0.0.2"})
//	// groups[0].Subnet() == "10.0.0.0/30"
//
// All functions are pure and safe for concurrent use.
package aggregate
