package aggregate

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
)

// ErrMalformedAddress is matched by every error returned for unparsable input.
var ErrMalformedAddress = errors.New("malformed ipv4 address")

// MalformedAddressError reports an input that is not four decimal octets 0-255.
type MalformedAddressError struct {
	Address string
}

func (e *MalformedAddressError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMalformedAddress, e.Address)
}

func (e *MalformedAddressError) Is(target error) bool {
	return target == ErrMalformedAddress
}

// Addr is an IPv4 address in host byte order.
type Addr uint32

// ParseAddr parses a dotted-quad IPv4 address.
func ParseAddr(s string) (Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return 0, &MalformedAddressError{Address: s}
	}
	b := ip.As4()
	return Addr(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

// ParseAddrs parses every string, failing on the first malformed one.
func ParseAddrs(ips []string) ([]Addr, error) {
	addrs := make([]Addr, 0, len(ips))
	for _, s := range ips {
		a, err := ParseAddr(s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

// Octets returns the four octets, most significant first.
func (a Addr) Octets() [4]byte {
	return [4]byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)}
}

func (a Addr) String() string {
	o := a.Octets()
	return fmt.Sprintf("%d.%d.%d.%d", o[0], o[1], o[2], o[3])
}

// Compare orders addresses octet by octet, which matches numeric order.
func (a Addr) Compare(b Addr) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Mask keeps the leading bits of the address.
func (a Addr) Mask(bits int) Addr {
	return a & maskOf(bits)
}

func maskOf(bits int) Addr {
	// shifts of 32 yield 0 on unsigned values
	return Addr(uint32(0xFFFFFFFF) << uint(32-bits))
}

// SortStrings sorts dotted-quad strings numerically. Unparsable entries keep their
// relative order after every valid one.
func SortStrings(ips []string) {
	slices.SortStableFunc(ips, func(x, y string) int {
		a, errA := ParseAddr(x)
		b, errB := ParseAddr(y)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return a.Compare(b)
	})
}

func dedupeSorted(addrs []Addr) []Addr {
	sorted := slices.Clone(addrs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
