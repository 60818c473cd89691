package main

import (
	"net/http"
	"slices"

	"doodleparty/config"
	"doodleparty/judge"
	"doodleparty/logger"
	"doodleparty/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	if len(allowedOrigins) > 0 {
		r.Use(func(ctx *gin.Context) {
			origin := ctx.Request.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, origin) {
				ctx.Next()
				return
			}
			ctx.String(http.StatusForbidden, "forbidden origin")
			ctx.Abort()
		})

		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
		}))
	}

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("could not load config: %v", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if cfg.GinMode != "release" {
		logger.SetDebug()
	}

	var allowedOrigins []string
	if cfg.FrontendOrigin != "" {
		if cfg.GinMode == "release" {
			allowedOrigins = append(allowedOrigins, "https://"+cfg.FrontendOrigin)
			allowedOrigins = append(allowedOrigins, "https://www."+cfg.FrontendOrigin)
		} else {
			allowedOrigins = append(allowedOrigins, "http://"+cfg.FrontendOrigin)
		}
	}

	engine := store.NewEngine()
	engineStarted := make(chan struct{})
	go engine.Run(engineStarted)
	<-engineStarted

	r := CreateServer(allowedOrigins)
	store.NewSyncHandler(engine).RegisterRoutes(r)

	if cfg.JudgeURL != "" {
		judge.NewHandler(judge.NewClient(cfg.JudgeURL, cfg.JudgeAPIKey)).RegisterRoutes(r)
	} else {
		logger.Warningf("JUDGE_URL not set, trace verdicts disabled")
	}

	logger.Infof("room store listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("could not start server: %v", err)
	}
}
