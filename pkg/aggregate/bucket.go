package aggregate

import (
	"strconv"
	"strings"
)

// PrefixBucket holds the addresses sharing the leading Bits of Prefix.
type PrefixBucket struct {
	Bits    int
	Prefix  Addr
	Members []Addr
}

// Key renders the bucket prefix the way it reads in a report, e.g. "10.0.1" for a /24.
func (b PrefixBucket) Key() string {
	o := b.Prefix.Octets()
	switch b.Bits {
	case 24:
		return fmtOctets(o[:3])
	case 16:
		return fmtOctets(o[:2])
	default:
		return fmtOctets(o[:1])
	}
}

// Buckets is the output of Bucketize. Every address appears once in each tier.
type Buckets struct {
	Slash24 []PrefixBucket
	Slash16 []PrefixBucket
	Slash8  []PrefixBucket
}

// Bucketize groups addresses by /24, /16 and /8 prefix. Input is deduplicated and
// sorted first, so bucket order follows the lowest member of each bucket.
func Bucketize(addrs []Addr) Buckets {
	unique := dedupeSorted(addrs)
	return Buckets{
		Slash24: bucketBy(unique, 24),
		Slash16: bucketBy(unique, 16),
		Slash8:  bucketBy(unique, 8),
	}
}

func bucketBy(sorted []Addr, bits int) []PrefixBucket {
	var buckets []PrefixBucket
	index := make(map[Addr]int)
	for _, a := range sorted {
		prefix := a.Mask(bits)
		i, ok := index[prefix]
		if !ok {
			i = len(buckets)
			index[prefix] = i
			buckets = append(buckets, PrefixBucket{Bits: bits, Prefix: prefix})
		}
		buckets[i].Members = append(buckets[i].Members, a)
	}
	return buckets
}

func fmtOctets(o []byte) string {
	parts := make([]string, len(o))
	for i, b := range o {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ".")
}
