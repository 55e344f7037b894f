package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/afford-api/http"
	httpv1 "github.com/yourorg/afford-api/http/v1"
	"github.com/yourorg/afford-api/internal/logger"
)

func BuildRouter(affordDeps httpapi.AffordDeps, incomeDeps httpv1.IncomeDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect upstream quota
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })

	httpapi.RegisterAfford(r, affordDeps)
	httpapi.RegisterOptions(r)

	// v1 income endpoint with Redis + SWR
	httpv1.RegisterIncome(r, incomeDeps)

	return r
}
