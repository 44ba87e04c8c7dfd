package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"webprint-client/config"
	"webprint-client/internal/mw"
)

// NewRouter creates and configures a new Gin router for the local view API.
func NewRouter(d Deps, cfg *config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	handler := NewHandler(d)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	local := r.Group("/local")
	local.Use(rateLimiter)
	{
		local.GET("/session", handler.GetSession)
		local.POST("/session/signin", handler.SignIn)
		local.POST("/session/signout", handler.SignOut)
		local.POST("/session/refresh", handler.Refresh)
		local.DELETE("/queue/:job_id", handler.DeleteJob)
		local.GET("/cloudprint", handler.GetCloudPrint)
		local.POST("/cloudprint/revoke", handler.RevokeCloudPrint)

		local.GET("/upload", handler.GetUpload)
		local.POST("/upload", handler.SelectFile)
		local.PUT("/upload/options", handler.SetOptions)
		local.POST("/upload/submit", handler.Submit)
		local.POST("/upload/cancel", handler.Cancel)

		local.GET("/printers", caching, handler.GetPrinters)
		local.PUT("/printers/private", handler.SetShowPrivate)
		local.GET("/selection", handler.GetSelection)
		local.POST("/selection/list", handler.SelectFromList)
		local.POST("/selection/map", handler.SelectFromMap)
		local.POST("/map/loaded", handler.MapLoaded)
		local.POST("/map/enter", handler.PointerEnter)
		local.POST("/map/leave", handler.PointerLeave)

		local.GET("/history", handler.GetHistory)
		local.PUT("/subscriptions", handler.PutSubscription)
		local.DELETE("/subscriptions", handler.DeleteSubscription)
		local.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	// The event stream is long-lived and stays outside the rate limit.
	r.GET("/local/events", handler.Events)

	return r
}
