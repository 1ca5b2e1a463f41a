package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/config"
	"github.com/lumichat/auth-service/internal/database"
	"github.com/lumichat/auth-service/internal/handler"
	"github.com/lumichat/auth-service/internal/llm"
	mw "github.com/lumichat/auth-service/internal/middleware"
	"github.com/lumichat/auth-service/internal/queue"
	"github.com/lumichat/auth-service/internal/repository"
	"github.com/lumichat/auth-service/internal/router"
	"github.com/lumichat/auth-service/internal/service"
	"github.com/lumichat/auth-service/internal/sms"
	"github.com/lumichat/auth-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	codes := repository.NewCodeRepo(db)
	tokens := repository.NewTokenRepo(db)

	issuer := token.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)

	var dispatcher sms.Dispatcher = sms.LogDispatcher{}
	if cfg.SMSBaseURL != "" {
		dispatcher = sms.NewHTTPDispatcher(cfg.SMSBaseURL, cfg.SMSAccount, cfg.SMSPassword, cfg.SMSSender)
	} else if !cfg.IsDev() {
		log.Fatalf("SMS_BASE_URL is required outside dev mode")
	}

	events := service.AMQPPublisher{}

	auth := service.NewAuthService(users, codes, tokens, issuer, dispatcher, events,
		time.Duration(cfg.CodeTTLMin)*time.Minute, cfg.CodesPerHour, cfg.BcryptCost, cfg.IsDev())
	admin := service.NewUserAdminService(users, tokens, events)

	// Background workers: table cleanup and the audit log consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.NewCleanupWorker(codes, tokens, 10*time.Minute).Run(ctx)
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit-consumer: stopped: %v", err)
		}
	}()

	gate := mw.Authenticate(issuer, users, cfg.AuthBypass)
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	rl := config.LoadRateLimitConfig()
	var sendLimit, chatLimit echo.MiddlewareFunc
	if rl.Enabled {
		sendLimit = mw.RateLimit(rdb, rl.Prefix, mw.SubjectByIP,
			mw.Tier{Scope: "send-code", Window: time.Minute, Max: rl.SendPerMinute})
		chatLimit = mw.RateLimit(rdb, rl.Prefix, mw.SubjectByUser,
			mw.Tier{Scope: "chat-minute", Window: time.Minute, Max: rl.ChatPerMinute},
			mw.Tier{Scope: "chat-hour", Window: time.Hour, Max: rl.ChatPerHour})
	} else {
		sendLimit = mw.RateLimit(nil, rl.Prefix, mw.SubjectByIP)
		chatLimit = mw.RateLimit(nil, rl.Prefix, mw.SubjectByUser)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, cfg.IsDev()), gate, sendLimit)
	router.RegisterAdmin(e, handler.NewUserAdminHandler(admin), gate)
	if client := llm.NewFromEnv(); client != nil {
		router.RegisterChat(e, handler.NewChatHandler(client), gate, chatLimit)
	} else {
		log.Printf("LLM_BASE_URL unset, chat proxy disabled")
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
