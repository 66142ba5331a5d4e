package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/projectdiscovery/cidrx/pkg/aggregate"
	sliceutil "github.com/projectdiscovery/utils/slice"
	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = 200 * time.Millisecond
)

// Client resolves hostnames through a Resolver, consulting the Cache first.
type Client struct {
	resolver Resolver
	cache    *Cache
}

// NewClient pairs resolver with cache. A nil cache gets a default sized one.
func NewClient(resolver Resolver, cache *Cache) *Client {
	if cache == nil {
		cache = NewCache(DefaultCacheSize, 0)
	}
	return &Client{resolver: resolver, cache: cache}
}

// Cache returns the cache backing the client.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Lookup returns the IPv4 addresses of host. Resolution errors are logged and
// remembered as an empty answer.
func (c *Client) Lookup(ctx context.Context, host string) []string {
	host = strings.TrimSpace(host)
	if ips, ok := c.cache.Get(host); ok {
		return ips
	}

	ips, err := c.resolver.Resolve(ctx, host)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// not cached, the name was never really asked
			return []string{}
		}
		slog.Debug("lookup failed", "host", host, "error", err)
		ips = nil
	}
	c.cache.Set(host, ips)

	if ips == nil {
		return []string{}
	}
	return ips
}

// BatchOptions controls LookupAll pacing.
type BatchOptions struct {
	// Size is the number of concurrent lookups per batch
	Size int
	// Delay is the pause between batches; none follows the last batch
	Delay time.Duration
	// Progress is called after each batch with the processed and total host counts
	Progress func(processed, total int)
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Size <= 0 {
		o.Size = DefaultBatchSize
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	return o
}

// Result is the answer for one host.
type Result struct {
	Host string   `json:"host"`
	IPs  []string `json:"ips"`
}

// LookupAll resolves hosts batch by batch and returns one Result per host in input
// order. It stops early and returns ctx.Err() when ctx is cancelled.
func (c *Client) LookupAll(ctx context.Context, hosts []string, opts BatchOptions) ([]Result, error) {
	opts = opts.withDefaults()
	total := len(hosts)
	results := make([]Result, total)

	for start := 0; start < total; start += opts.Size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+opts.Size, total)
		awg, err := syncutil.New(syncutil.WithSize(opts.Size))
		if err != nil {
			return nil, err
		}
		for i := start; i < end; i++ {
			awg.Add()
			go func(i int) {
				defer awg.Done()
				results[i] = Result{Host: hosts[i], IPs: c.Lookup(ctx, hosts[i])}
			}(i)
		}
		awg.Wait()

		if opts.Progress != nil {
			opts.Progress(end, total)
		}

		if end < total && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// UniqueIPs flattens results into a deduplicated list in numeric order.
func UniqueIPs(results []Result) []string {
	var all []string
	for _, r := range results {
		all = append(all, r.IPs...)
	}
	all = sliceutil.Dedupe(all)
	aggregate.SortStrings(all)
	if all == nil {
		return []string{}
	}
	return all
}
