package http

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/tripcost/internal/adapters/postgres"
	"github.com/samirrijal/tripcost/internal/adapters/valkey"
	"github.com/samirrijal/tripcost/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// History, NATS, DB and Cache are optional.
type Dependencies struct {
	Estimation     *usecases.EstimationService
	Tariffs        *usecases.TariffService
	History        *usecases.HistoryService
	NATS           *nats.Conn
	DB             *postgres.DB
	Cache          *valkey.Cache
	RequestTimeout time.Duration
	DocsPath       string
}
