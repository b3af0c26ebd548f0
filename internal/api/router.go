package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"silant-backend/internal/access"
	"silant-backend/internal/auth"
	"silant-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	handler := NewHandler(opts)

	r.Use(mw.RequestLogger(handler.logger))
	r.Use(gin.Recovery())
	if opts.Metrics != nil {
		r.Use(mw.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/healthz", handler.Healthz)

	// Reference lists change rarely and look the same to every caller.
	cacheStore := opts.Cache
	if cacheStore == nil {
		cacheStore = cache.New(5*time.Minute, 10*time.Minute)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	caching := mw.Cache(cacheStore, ttl)
	invalidate := mw.Invalidate(cacheStore)

	can := auth.RequirePermission
	authenticated := auth.RequireAuthenticated()

	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(mw.RateLimiter(opts.RateLimiter))
	}
	api.Use(opts.Auth.Authenticate(opts.Resolver))
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/register", handler.Register)
		api.GET("/auth/me", authenticated, handler.Me)

		// Anonymous callers get the serial search.
		api.GET("/machines", handler.ListMachines)
		api.GET("/machines/:id", can(access.ViewMachine), handler.GetMachine)
		api.POST("/machines", can(access.AddMachine), handler.CreateMachine)
		api.PUT("/machines/:id", can(access.ChangeMachine), handler.UpdateMachine)
		api.DELETE("/machines/:id", can(access.DeleteMachine), handler.DeleteMachine)
		api.POST("/machines/:id/resync", can(access.ChangeMachine), handler.ResyncMachine)

		api.GET("/maintenance", can(access.ViewMaintenance), handler.ListMaintenance)
		api.GET("/maintenance/:id", can(access.ViewMaintenance), handler.GetMaintenance)
		api.POST("/maintenance", can(access.AddMaintenance), handler.CreateMaintenance)
		api.PUT("/maintenance/:id", can(access.ChangeMaintenance), handler.UpdateMaintenance)
		api.DELETE("/maintenance/:id", can(access.DeleteMaintenance), handler.DeleteMaintenance)

		api.GET("/claims", can(access.ViewClaim), handler.ListClaims)
		api.GET("/claims/:id", can(access.ViewClaim), handler.GetClaim)
		api.POST("/claims", can(access.AddClaim), handler.CreateClaim)
		api.PUT("/claims/:id", can(access.ChangeClaim), handler.UpdateClaim)
		api.DELETE("/claims/:id", can(access.DeleteClaim), handler.DeleteClaim)

		api.GET("/references", can(access.ViewReference), handler.ListReferenceKinds)
		api.GET("/references/:kind", can(access.ViewReference), caching, handler.ListReferences)
		api.GET("/references/:kind/:id", can(access.ViewReference), caching, handler.GetReference)
		api.POST("/references/:kind", can(access.ManageReference), invalidate, handler.CreateReference)
		api.PUT("/references/:kind/:id", can(access.ManageReference), invalidate, handler.UpdateReference)
		api.DELETE("/references/:kind/:id", can(access.ManageReference), invalidate, handler.DeleteReference)

		api.GET("/clients", can(access.ManageParties), handler.ListClients)
		api.POST("/clients", can(access.ManageParties), handler.CreateClient)
		api.GET("/service-companies", can(access.ManageParties), handler.ListServiceCompanies)
		api.POST("/service-companies", can(access.ManageParties), handler.CreateServiceCompany)

		api.GET("/forms/machines", authenticated, handler.MachineChoices)

		api.GET("/subscriptions", authenticated, handler.GetSubscription)
		api.PUT("/subscriptions", authenticated, handler.PutSubscription)
		api.DELETE("/subscriptions", authenticated, handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
