package resolve

import "context"

// Resolver looks up the IPv4 addresses of a hostname.
type Resolver interface {
	Resolve(ctx context.Context, host string) ([]string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, host string) ([]string, error)

func (f ResolverFunc) Resolve(ctx context.Context, host string) ([]string, error) {
	return f(ctx, host)
}
