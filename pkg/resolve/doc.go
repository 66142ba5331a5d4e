// Package resolve turns hostnames into IPv4 addresses.
//
// Resolvers query either a JSON DNS API (dns.google style) or plain DNS servers over UDP.
// A Client pairs a resolver with a caller-owned Cache and resolves host lists in small
// batches with a pause between batches, reporting progress after each one.
//
//	c := resolve.NewClient(resolve.NewDoHResolver(), resolve.NewCache(10000, 0))
//	results, err := c.LookupAll(ctx, hosts, resolve.BatchOptions{
//		Progress: func(done, total int) { fmt.Printf("%d/%d\n", done, total) },
//	})
//
// Failed lookups never abort a batch; they resolve to no addresses and are cached as such.
package resolve
