package bootstrap

import (
	"context"
	"log"
	"time"

	"arogya-chat-be/internal/config"
	"arogya-chat-be/internal/controller"
	"arogya-chat-be/internal/pkg/logger"
	"arogya-chat-be/internal/pkg/serverutils"
	"arogya-chat-be/internal/repository/memory"
	"arogya-chat-be/internal/repository/unitofwork"
	"arogya-chat-be/internal/service"
	chatEvents "arogya-chat-be/pkg/chat/events"
	"arogya-chat-be/pkg/chat/title"
	"arogya-chat-be/pkg/events"
	"arogya-chat-be/pkg/llm"
	"arogya-chat-be/pkg/llm/completion"
	"arogya-chat-be/pkg/llm/factory"
	pktNats "arogya-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatbotController controller.IChatbotController
	UserController    controller.IUserController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SweepScheduler  service.ISweepScheduler

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	// 2. In-process bus for background sweep jobs
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. LLM
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		APIKey:        cfg.Ai.APIKey,
		BaseURL:       cfg.Ai.BaseURL,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	completionClient := completion.NewClient(llmProvider,
		llm.WithTemperature(cfg.Ai.Temperature),
		llm.WithMaxTokens(cfg.Ai.MaxTokens),
	)
	titleGenerator := title.NewGenerator(completionClient, llm.WithMaxTokens(cfg.Ai.TitleMaxTokens))

	// 4. Infrastructure, all optional
	var eventBus events.Publisher
	var eventSubscriber service.EventSubscriber
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventBus = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			eventSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		cancel()
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 5. Services
	policyCache := memory.NewRetentionPolicyCache(cfg.History.PolicyCacheTTL)
	publisher := chatEvents.NewBusPublisher(eventBus, sysLogger)

	chatbotService := service.NewChatbotService(
		uowFactory,
		completionClient,
		titleGenerator,
		policyCache,
		publisher,
		sysLogger,
	)
	userService := service.NewUserService(uowFactory, policyCache, publisher, sysLogger)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.History.SweepTopic,
		chatbotService,
		policyCache,
		eventSubscriber,
		sysLogger,
	)
	c.SweepScheduler = service.NewSweepScheduler(
		uowFactory,
		pubSub,
		cfg.History.SweepTopic,
		cfg.History.BackgroundSweepInterval,
		sysLogger,
	)

	// 6. Controllers
	auth := serverutils.OptionalJwtMiddleware(cfg.Auth.JWTSecret)
	c.ChatbotController = controller.NewChatbotController(
		chatbotService,
		auth,
		serverutils.RateLimit(rdb, cfg.App.RateLimitQPS, sysLogger),
	)
	c.UserController = controller.NewUserController(userService, auth)

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
