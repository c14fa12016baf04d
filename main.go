package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"event-chat-service/internal/auth"
	"event-chat-service/internal/chat"
	"event-chat-service/internal/config"
	"event-chat-service/internal/db"
	"event-chat-service/internal/handlers"
	"event-chat-service/internal/logger"
	"event-chat-service/internal/middleware"
	"event-chat-service/internal/observability"
	"event-chat-service/internal/rabbitmq"
	"event-chat-service/internal/ratelimit"
	"event-chat-service/internal/repositories"
	"event-chat-service/internal/telemetry"
	"event-chat-service/internal/tracing"
	"event-chat-service/internal/ws"
)

const serviceName = "event-chat-service"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRouting, serviceName, cfg.Environment)

	if opsPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
		observability.SetPublisher(opsPublisher)
		defer opsPublisher.Close()
	} else if cfg.AMQPURL != "" {
		log.Warn().Err(err).Msg("operational event publisher unavailable")
	}

	verifier := auth.NewJWTVerifier(cfg.SigningSecret)

	userRepo := repositories.NewUserRepo(database)
	eventRepo := repositories.NewEventRepo(database)
	chatroomRepo := repositories.NewChatroomRepo(database)
	accessRepo := repositories.NewAccessRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	accessService := chat.NewAccessService(verifier, eventRepo, chatroomRepo, accessRepo, userRepo)
	chatroomService := chat.NewChatroomService(eventRepo, chatroomRepo)
	messageService := chat.NewMessageService(verifier, accessService, chatroomRepo, messageRepo, userRepo)

	hub := ws.NewHub()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		bridge := ws.NewBridge(rdb)
		hub.AttachBridge(bridge)
		go bridge.Run(ctx, hub)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis broadcast bridge enabled")
	}

	limiter := ratelimit.New(cfg.RateLimitBurst, cfg.RateLimitWindow)
	gateway := ws.NewGateway(hub, messageService, accessService, limiter)

	chatHandler := handlers.NewChatHandler(chatroomService, messageService, accessService, hub, audit)
	accessHandler := handlers.NewAccessHandler(accessService, audit)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logger.GinLogger(), logger.GinRecovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.Auth(verifier)
	rateLimitMiddleware := middleware.RateLimit(limiter)

	events := router.Group("/events/:event_id", authMiddleware)
	{
		events.POST("/chat", chatHandler.CreateChatroom)
		events.GET("/chat/messages", chatHandler.GetHistory)
		events.POST("/chat/messages", rateLimitMiddleware, chatHandler.PostMessage)
		events.POST("/chat/messages/:message_id/pin", chatHandler.TogglePin)
		events.GET("/chat/access", accessHandler.GetAccess)
		events.POST("/chat/access", accessHandler.GrantAccess)
		events.PATCH("/chat/access/:user_id", accessHandler.UpdateAccessRole)
		events.DELETE("/chat/access", accessHandler.RevokeAccess)
		events.GET("/chat/participants", accessHandler.GetParticipants)
	}

	router.GET("/ws/chat", gateway.Handle)

	log.Info().Str("addr", cfg.ServerAddr).Msg("server starting")
	if err := router.Run(cfg.ServerAddr); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
