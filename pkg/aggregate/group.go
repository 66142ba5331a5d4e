package aggregate

import (
	"encoding/json"
	"math/bits"
	"slices"
	"strconv"
)

// Group is a CIDR block and the input addresses it was built from.
type Group struct {
	Network Addr
	Bits    int
	Members []Addr
}

// Subnet returns the block in "a.b.c.d/n" form.
func (g Group) Subnet() string {
	return g.Network.String() + "/" + strconv.Itoa(g.Bits)
}

// Contains reports whether a lies inside the block.
func (g Group) Contains(a Addr) bool {
	return a.Mask(g.Bits) == g.Network
}

// Size is the number of addresses covered by the block.
func (g Group) Size() uint64 {
	return uint64(1) << uint(32-g.Bits)
}

// MemberStrings renders the members in dotted-quad form.
func (g Group) MemberStrings() []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.String()
	}
	return out
}

func (g Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subnet  string   `json:"subnet"`
		Members []string `json:"members"`
	}{
		Subnet:  g.Subnet(),
		Members: g.MemberStrings(),
	})
}

// Fold builds the group enclosing addrs. The prefix length is the number of leading
// bits shared by the lowest and highest member, so the block can be wider than the
// input. An empty addrs yields the zero Group.
func Fold(addrs []Addr) Group {
	if len(addrs) == 0 {
		return Group{}
	}
	members := slices.Clone(addrs)
	slices.Sort(members)
	if len(members) == 1 {
		return Group{Network: members[0], Bits: 32, Members: members}
	}
	lo, hi := members[0], members[len(members)-1]
	prefixLen := 32 - bits.Len32(uint32(lo^hi))
	return Group{
		Network: lo.Mask(prefixLen),
		Bits:    prefixLen,
		Members: members,
	}
}
