package mailservice

import (
	"log/slog"
	"time"

	httpadapter "beacon/contexts/delivery/mail-service/adapters/http"
	"beacon/contexts/delivery/mail-service/adapters/memory"
	"beacon/contexts/delivery/mail-service/application/commands"
	"beacon/contexts/delivery/mail-service/application/queries"
	"beacon/contexts/delivery/mail-service/application/workers"
	"beacon/contexts/delivery/mail-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Dispatcher *workers.Dispatcher
	Store      *memory.Store
}

type Dependencies struct {
	Repository   ports.Repository
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Deliverer    ports.Deliverer
	MailEndpoint string
	MailAPIKey   string
	BatchSize    int
	SendTimeout  time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	commandUseCase := commands.UseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.UseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Commands: commandUseCase,
			Queries:  queryUseCase,
			Logger:   deps.Logger,
		},
		Dispatcher: &workers.Dispatcher{
			Repository: deps.Repository,
			Deliverer:  deps.Deliverer,
			Clock:      deps.Clock,
			Endpoint:   deps.MailEndpoint,
			APIKey:     deps.MailAPIKey,
			BatchSize:  deps.BatchSize,
			Timeout:    deps.SendTimeout,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(deliverer ports.Deliverer, logger *slog.Logger) Module {
	store := memory.NewStore(nil)
	module := NewModule(Dependencies{
		Repository:   store,
		Clock:        store,
		IDGenerator:  store,
		Deliverer:    deliverer,
		MailEndpoint: "http://localhost:0/send",
		BatchSize:    100,
		SendTimeout:  10 * time.Second,
		Logger:       logger,
	})
	module.Store = store
	return module
}
