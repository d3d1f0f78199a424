package abstraction

import "context"

// Resolver maps a file inside a repository to its xet content hash.
type Resolver interface {
	Resolve(ctx context.Context, repoID, file string) (string, error)
}
