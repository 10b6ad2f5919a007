package relay

import (
	"context"
	"log"
	"sync"
)

// Activate prunes every cache store that is not the current version.
//
// Deletions run concurrently and individual failures are logged, not
// propagated: a stale store that survives one activation is retried on the
// next, and nothing here may block the relay from serving.
func (r *Relay) Activate(ctx context.Context) error {
	names, err := r.registry.Names(ctx)
	if err != nil {
		log.Printf("relay: list cache stores: %v", err)
		return nil
	}

	var wg sync.WaitGroup
	for _, name := range names {
		if name == r.storeName {
			continue
		}
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.registry.Remove(ctx, name); err != nil {
				log.Printf("relay: remove stale store %s: %v", name, err)
				return
			}
			log.Printf("relay: removed stale store %s", name)
		}()
	}
	wg.Wait()
	return nil
}
