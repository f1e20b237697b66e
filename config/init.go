package config

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with CORS applied.
func NewRouter(cfg *Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	configCors := cors.DefaultConfig()
	configCors.AddAllowHeaders("Authorization", "X-Request-ID")
	configCors.AddExposeHeaders("X-Request-ID")
	configCors.AllowCredentials = true
	if len(cfg.CORSOrigins) > 0 {
		configCors.AllowOrigins = cfg.CORSOrigins
	} else {
		configCors.AllowOriginFunc = func(origin string) bool {
			return true
		}
	}
	router.Use(cors.New(configCors))

	_ = router.SetTrustedProxies(nil)
	return router
}
