package pipeline

import (
	"context"
	"strings"
)

// NameResolver maps a wallet address to a human-readable label. An empty
// name with a nil error means the wallet has none.
type NameResolver interface {
	Resolve(ctx context.Context, address string) (string, error)
}

// StaticResolver serves names from a fixed address book.
type StaticResolver map[string]string

func NewStaticResolver(names map[string]string) StaticResolver {
	r := make(StaticResolver, len(names))
	for address, name := range names {
		r[strings.ToLower(address)] = name
	}
	return r
}

func (r StaticResolver) Resolve(_ context.Context, address string) (string, error) {
	return r[strings.ToLower(address)], nil
}
