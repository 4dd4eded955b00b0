package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	adapterhttp "streamforge/ddd/adapter/http"
	appservice "streamforge/ddd/application/app"
	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/service"
	"streamforge/ddd/infrastructure/cache"
	"streamforge/ddd/infrastructure/database/persistence"
	"streamforge/ddd/infrastructure/executor"
	"streamforge/ddd/infrastructure/mq"
	"streamforge/ddd/infrastructure/queue"
	"streamforge/ddd/infrastructure/storage"
	"streamforge/ddd/infrastructure/worker"
	"streamforge/internal/resource"
	"streamforge/pkg/config"
	"streamforge/pkg/kafka"
	"streamforge/pkg/logger"
	"streamforge/pkg/registry"
	"streamforge/pkg/task"
)

// Run 装配并启动整个服务
func Run() {
	fmt.Println("[STARTUP] Starting streamforge...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	defer logService.Close()

	logger.Infof("streamforge starting config=%s", cfgPath)

	// 转码器二进制缺失直接在启动阶段失败
	transcoder := executor.NewFFmpegTranscoder(cfg)
	if err := transcoder.CheckBinaries(); err != nil {
		logger.Fatal(fmt.Sprintf("FFmpeg toolchain unavailable, set transcode.ffmpeg.binary_path: %v", err))
	}
	thumbnailer := executor.NewFFmpegThumbnailer(cfg)

	// 外部资源
	logger.Infof("Initializing resources...")
	resource.MustInit()
	defer resource.CloseAll()
	logger.Infof("Resources initialized")

	// 基础设施装配
	videoRepo := persistence.NewVideoRepository(resource.DefaultMysqlResource().MainDB())
	manifestCache := cache.NewRedisCache(resource.DefaultRedisResource().GetClient())
	archive := storage.NewMinioArchive(resource.DefaultMinioResource())
	uploadQueue := queue.NewMemoryUploadQueue(cfg.Pipeline.QueueCapacity)
	defer uploadQueue.Close()

	eventPublisher := buildEventPublisher(cfg)

	// 领域管线
	tracker := service.NewStatusTracker()
	pipeline := service.NewPipelineService(
		videoRepo, transcoder, thumbnailer, archive, eventPublisher, manifestCache, tracker,
		cfg.Pipeline.MaxConcurrentTiers, cfg.Transcode.FFmpeg.TierTimeout,
	)

	// 应用服务
	appservice.SetDefaultVideoAppFactory(func() appservice.VideoApp {
		return appservice.NewVideoAppWith(videoRepo, pipeline, uploadQueue, archive, manifestCache, cfg)
	})
	appservice.SetDefaultStreamingAppFactory(func() appservice.StreamingApp {
		return appservice.NewStreamingAppWith(videoRepo, manifestCache)
	})
	videoApp := appservice.DefaultVideoApp()
	streamingApp := appservice.DefaultStreamingApp()

	// 后台工作器
	pipelineWorker := worker.NewPipelineWorker(uploadQueue, pipeline, cfg.Pipeline.MaxConcurrentTiers, cfg.Pipeline.StatusTTL)
	task.Register(pipelineWorker)
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks: %v", err))
	}
	defer task.StopAll()

	// HTTP服务
	if strings.EqualFold(cfg.Server.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = 32 << 20

	router := adapterhttp.NewRouter(videoApp, streamingApp)
	router.SetupRoutes(engine, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("HTTP server started addr=%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server: %v", err))
		}
	}()

	// 可选的服务注册
	var reg *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		serviceID := cfg.ServiceRegistry.ServiceID
		if serviceID == "" {
			serviceID = fmt.Sprintf("%s-%d", cfg.ServiceRegistry.ServiceName, os.Getpid())
		}
		registerAddr := fmt.Sprintf("%s:%d", cfg.ServiceRegistry.RegisterHost, cfg.Server.Port)
		reg, err = registry.NewServiceRegistry(
			registry.RegistryConfig{
				Endpoints:   cfg.ServiceRegistry.Endpoints,
				DialTimeout: cfg.ServiceRegistry.DialTimeout,
			},
			registry.ServiceConfig{
				ServiceName: cfg.ServiceRegistry.ServiceName,
				ServiceID:   serviceID,
				TTL:         cfg.ServiceRegistry.TTL,
			},
			registerAddr,
		)
		if err != nil {
			logger.Errorf("service registry unavailable: %v", err)
			reg = nil
		} else if err := reg.Register(); err != nil {
			logger.Errorf("service registration failed: %v", err)
			reg = nil
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down...")

	if reg != nil {
		_ = reg.Deregister()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server forced to close: %v", err)
	}

	logger.Infof("streamforge exited safely")
}

// buildEventPublisher Kafka启用时创建真实发布器并确保topic存在，否则空实现
func buildEventPublisher(cfg *config.Config) gateway.EventPublisher {
	if !cfg.Kafka.Enabled {
		logger.Infof("Kafka disabled, processing events will not be published")
		return mq.NoopEventPublisher{}
	}
	client := kafka.DefaultClient()
	topic := cfg.Kafka.Topics.VideoProcessed
	if err := client.EnsureTopic(topic, 3, 1); err != nil {
		logger.Warnf("ensure topic %s: %v", topic, err)
	}
	return mq.NewKafkaEventPublisher(client, topic)
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config.prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
