package app

import (
	"context"

	"github.com/bft-labs/ytcontrol/internal/ports"
)

// moduleState is the tagged lifecycle state of a Module.
// Only ready carries the live API client and cache.
type moduleState interface {
	phase() Phase
}

type uninitialized struct{}

type authorizing struct{}

type ready struct {
	api   ports.APIClient
	cache ports.StateCache
	// ctx is cancelled by Destroy; actions run under it.
	ctx context.Context
}

type failed struct {
	reason string
}

type destroyed struct{}

func (uninitialized) phase() Phase { return PhaseUninitialized }
func (authorizing) phase() Phase   { return PhaseAuthorizing }
func (ready) phase() Phase         { return PhaseReady }
func (failed) phase() Phase        { return PhaseError }
func (destroyed) phase() Phase     { return PhaseDestroyed }
