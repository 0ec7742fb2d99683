package webhookservice

import (
	"log/slog"
	"time"

	httpadapter "beacon/contexts/delivery/webhook-service/adapters/http"
	"beacon/contexts/delivery/webhook-service/adapters/memory"
	"beacon/contexts/delivery/webhook-service/application/commands"
	"beacon/contexts/delivery/webhook-service/application/fanout"
	"beacon/contexts/delivery/webhook-service/application/inbound"
	"beacon/contexts/delivery/webhook-service/application/queries"
	"beacon/contexts/delivery/webhook-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Dispatcher *fanout.Dispatcher
	Store      *memory.Store
}

type Dependencies struct {
	Repository      ports.Repository
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	SecretGenerator ports.SecretGenerator
	Deliverer       ports.Deliverer
	MaxInFlight     int
	SendTimeout     time.Duration
	UserAgent       string
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	dispatcher := &fanout.Dispatcher{
		Registry:    deps.Repository,
		Deliverer:   deps.Deliverer,
		Clock:       deps.Clock,
		MaxInFlight: deps.MaxInFlight,
		Timeout:     deps.SendTimeout,
		UserAgent:   deps.UserAgent,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Commands: commands.UseCase{
				Repository: deps.Repository,
				Clock:      deps.Clock,
				IDGen:      deps.IDGenerator,
				Secrets:    deps.SecretGenerator,
				Logger:     deps.Logger,
			},
			Queries: queries.UseCase{
				Repository: deps.Repository,
				Logger:     deps.Logger,
			},
			Dispatcher: dispatcher,
			Verifier: inbound.Verifier{
				Registry: deps.Repository,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
		Dispatcher: dispatcher,
	}
}

func NewInMemoryModule(deliverer ports.Deliverer, logger *slog.Logger) Module {
	store := memory.NewStore(nil)
	module := NewModule(Dependencies{
		Repository:      store,
		Clock:           store,
		IDGenerator:     store,
		SecretGenerator: store,
		Deliverer:       deliverer,
		MaxInFlight:     8,
		SendTimeout:     10 * time.Second,
		Logger:          logger,
	})
	module.Store = store
	return module
}
