package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/aterpe/internal/adapters/postgres"
	"github.com/samirrijal/aterpe/internal/adapters/valkey"
	"github.com/samirrijal/aterpe/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Search     *usecases.SearchService
	Similarity *usecases.SimilarityService
	Clusters   *usecases.ClusterService
	Listings   *usecases.ListingService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
