package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/kanvaslabs/kanvas/internal/api/v1"
	"github.com/kanvaslabs/kanvas/internal/api/ws"
	"github.com/kanvaslabs/kanvas/internal/store/postgres"
	"github.com/kanvaslabs/kanvas/internal/tasks"
)

func registerAPIRoutes(api huma.API, store *postgres.Store, taskSvc *tasks.Service) {
	v1.RegisterBoardRoutes(api, store)
	v1.RegisterTaskRoutes(api, store, taskSvc)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/", hub.ServeWS)
}
