package http

import (
	"github.com/gin-gonic/gin"

	"streamforge/ddd/application/app"
	"streamforge/pkg/config"
	"streamforge/pkg/middleware"
)

// Router 路由配置
type Router struct {
	videoApp     app.VideoApp
	streamingApp app.StreamingApp
}

// NewRouter 创建路由配置
func NewRouter(videoApp app.VideoApp, streamingApp app.StreamingApp) *Router {
	return &Router{
		videoApp:     videoApp,
		streamingApp: streamingApp,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine, cfg *config.Config) {
	engine.Use(middleware.RequestContextMiddleware())
	engine.Use(middleware.IdentityMiddleware(cfg.JWT))

	videoController := NewVideoController(r.videoApp)
	streamingController := NewStreamingController(r.streamingApp)

	// 上传与管理
	v1 := engine.Group("/api/v1")
	{
		videos := v1.Group("/videos")
		{
			videos.POST("/upload", videoController.UploadVideo)
			videos.GET("/:video_id", videoController.GetVideo)
			videos.GET("/:video_id/status", videoController.GetProcessingStatus)
			videos.GET("/:video_id/thumbnail", videoController.GetThumbnail)
			videos.DELETE("/:video_id", videoController.DeleteVideo)
		}
	}

	// 播放
	streaming := engine.Group("/streaming/video")
	{
		streaming.GET("/:video_id/manifest", streamingController.GetManifest)
		streaming.GET("/:video_id/segment/:quality/:segment_index", streamingController.GetSegment)
		streaming.GET("/:video_id/quality/:quality", streamingController.GetQualityInfo)
		streaming.GET("/:video_id/auto-quality", streamingController.GetAutoQuality)
	}

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "streamforge",
			"version": "1.0.0",
		})
	})
}
