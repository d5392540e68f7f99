// Package rpc checks the configured networks' JSON-RPC endpoints.
package rpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

// checkTimeout bounds a single endpoint check.
const checkTimeout = 5 * time.Second

// Target is one network endpoint to check.
type Target struct {
	Network string
	URL     string
}

// Endpoint is the outcome of probing a Target.
type Endpoint struct {
	Network     string
	URL         string
	Latency     time.Duration
	ChainID     uint64
	BlockNumber uint64
	Healthy     bool
	Err         error
}

// HealthCheck asks the node at t.URL for its chain ID and head block.
// Latency covers the block number request only.
func HealthCheck(ctx context.Context, t Target) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	ep := Endpoint{Network: t.Network, URL: t.URL}

	eth, err := ethclient.DialContext(ctx, t.URL)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer eth.Close()

	id, err := eth.ChainID(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.ChainID = id.Uint64()

	start := time.Now()
	block, err := eth.BlockNumber(ctx)
	ep.Latency = time.Since(start)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.BlockNumber = block
	ep.Healthy = true
	return ep
}

// CheckAll checks every target in parallel. Results keep the order of targets.
func CheckAll(ctx context.Context, targets []Target) []Endpoint {
	results := make([]Endpoint, len(targets))

	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			results[i] = HealthCheck(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
