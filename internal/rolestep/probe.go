package rolestep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe fetches role cards from the candidate endpoints concurrently and
// returns the role -> endpoint map of producers that answered. Endpoints that
// do not answer within the timeout are skipped; probing never fails the
// caller.
func Probe(ctx context.Context, candidates []string, timeout time.Duration, logger *zap.Logger) map[string]string {
	if timeout <= 0 {
		timeout = defaultDiscoverTimeout
	}

	client := NewHTTPClient(nil)

	var mu sync.Mutex
	found := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	for _, endpoint := range candidates {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			card, err := client.Discover(probeCtx, endpoint)
			if err != nil {
				logger.Debug("step producer probe failed",
					zap.String("endpoint", endpoint), zap.Error(err))
				return nil // unreachable endpoints are not an error
			}

			mu.Lock()
			defer mu.Unlock()
			if prev, dup := found[card.Role]; dup {
				logger.Warn("duplicate step producer for role, keeping first",
					zap.String("role", card.Role),
					zap.String("kept", prev),
					zap.String("ignored", endpoint))
				return nil
			}
			found[card.Role] = endpoint
			logger.Info("discovered step producer",
				zap.String("role", card.Role),
				zap.String("endpoint", endpoint),
				zap.String("name", card.Name))
			return nil
		})
	}
	g.Wait()

	return found
}
