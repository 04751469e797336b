package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "alertgate/internal/api/context"
	"alertgate/internal/api/handlers"
	"alertgate/internal/api/middleware"
)

type Dependencies struct {
	IngestHandler       *handlers.IngestHandler
	DeliveryHandler     *handlers.DeliveryHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	AlertHandler        *handlers.AlertHandler
	AuthHandler         *handlers.AuthHandler
	AuditHandler        *handlers.AuditHandler
	HealthHandler       *handlers.HealthHandler
	StatsHandler        *handlers.StatsHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimiter         *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	rl := deps.RateLimiter
	authMid := deps.AuthMiddleware

	// Inbound webhook ingestion. Authenticated by HMAC signature, not by
	// operator tokens.
	router.POST("/webhooks/:source", wrap(chainFuncs(deps.IngestHandler.Receive, rl.Limit("ingest"))))
	router.GET("/webhooks/adapters", wrap(deps.IngestHandler.ListAdapters))

	// Operator token exchange.
	router.POST("/api/v1/auth/token", wrap(chainFuncs(deps.AuthHandler.Token, rl.Limit("api_write"))))
	router.POST("/api/v1/auth/keys",
		chain(deps.AuthHandler.CreateKey, authMid.Handle, middleware.RequireRole("admin")))
	router.DELETE("/api/v1/auth/keys/:key_id",
		chain(deps.AuthHandler.RevokeKey, authMid.Handle, middleware.RequireRole("admin")))

	// Delivery ledger and replay. Batch replay lives under /replays to
	// keep the :delivery_id segment unambiguous for httprouter.
	router.GET("/api/v1/deliveries",
		chain(deps.DeliveryHandler.ListFailed, authMid.Handle, rl.Limit("api_read")))
	router.GET("/api/v1/deliveries/:delivery_id",
		chain(deps.DeliveryHandler.Get, authMid.Handle, rl.Limit("api_read")))
	router.POST("/api/v1/deliveries/:delivery_id/replay",
		chain(deps.DeliveryHandler.Replay, authMid.Handle, rl.Limit("api_write")))
	router.POST("/api/v1/replays",
		chain(deps.DeliveryHandler.ReplayBatch, authMid.Handle, rl.Limit("api_write")))

	// Subscription management.
	router.POST("/api/v1/subscriptions",
		chain(deps.SubscriptionHandler.Create, authMid.Handle, rl.Limit("api_write")))
	router.GET("/api/v1/subscriptions",
		chain(deps.SubscriptionHandler.List, authMid.Handle, rl.Limit("api_read")))
	router.GET("/api/v1/subscriptions/:subscription_id",
		chain(deps.SubscriptionHandler.Get, authMid.Handle, rl.Limit("api_read")))
	router.PATCH("/api/v1/subscriptions/:subscription_id",
		chain(deps.SubscriptionHandler.Update, authMid.Handle, rl.Limit("api_write")))
	router.DELETE("/api/v1/subscriptions/:subscription_id",
		chain(deps.SubscriptionHandler.Delete, authMid.Handle, rl.Limit("api_write")))

	// Alert archive and audit trail.
	router.GET("/api/v1/alerts",
		chain(deps.AlertHandler.List, authMid.Handle, rl.Limit("api_read")))
	router.GET("/api/v1/audit",
		chain(deps.AuditHandler.List, authMid.Handle, rl.Limit("api_read")))

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/api/v1/stats", chain(deps.StatsHandler.Export, authMid.Handle))

	return router
}

// chain applies middlewares right-to-left and adapts the result for
// httprouter.
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	return wrap(chainFuncs(handler, middlewares...))
}

func chainFuncs(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// wrap converts an http.HandlerFunc to an httprouter.Handle, carrying
// the route params in the request context.
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
