package aggregate

import "slices"

const (
	// minSlash24Members is the number of unassigned addresses a /24 needs to become a group.
	minSlash24Members = 2
	// minSlash16Unique is the number of addresses a /16 must hold before filtering.
	minSlash16Unique = 3
	// minSlash16Remaining is the number of unassigned addresses a /16 must still hold.
	minSlash16Remaining = 2
)

// AggregateStrings parses ips and aggregates them. A single malformed address fails
// the whole call.
func AggregateStrings(ips []string) ([]Group, error) {
	addrs, err := ParseAddrs(ips)
	if err != nil {
		return nil, err
	}
	return Aggregate(addrs), nil
}

// Aggregate groups addrs into CIDR blocks. Duplicates are collapsed; every distinct
// address ends up in exactly one group. Groups are ordered by their first member.
func Aggregate(addrs []Addr) []Group {
	buckets := Bucketize(addrs)
	consumed := make(map[Addr]struct{})
	groups := make([]Group, 0)

	for _, b := range buckets.Slash24 {
		free := unconsumed(b.Members, consumed)
		if len(free) < minSlash24Members {
			continue
		}
		groups = append(groups, Fold(free))
		markConsumed(free, consumed)
	}

	// /16 eligibility counts every member of the bucket, not only what /24 left behind
	for _, b := range buckets.Slash16 {
		if len(b.Members) < minSlash16Unique {
			continue
		}
		free := unconsumed(b.Members, consumed)
		if len(free) < minSlash16Remaining {
			continue
		}
		groups = append(groups, Fold(free))
		markConsumed(free, consumed)
	}

	// /8 buckets are never promoted; whatever is left stands alone
	for _, b := range buckets.Slash8 {
		for _, a := range unconsumed(b.Members, consumed) {
			groups = append(groups, Fold([]Addr{a}))
		}
	}

	slices.SortFunc(groups, func(x, y Group) int {
		return x.Members[0].Compare(y.Members[0])
	})
	return groups
}

func unconsumed(members []Addr, consumed map[Addr]struct{}) []Addr {
	var free []Addr
	for _, a := range members {
		if _, ok := consumed[a]; !ok {
			free = append(free, a)
		}
	}
	return free
}

func markConsumed(members []Addr, consumed map[Addr]struct{}) {
	for _, a := range members {
		consumed[a] = struct{}{}
	}
}
