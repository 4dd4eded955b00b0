package http

import (
	"github.com/gin-gonic/gin"

	"streamforge/ddd/application/app"
	"streamforge/ddd/application/cqe"
	"streamforge/pkg/errno"
	"streamforge/pkg/middleware"
	"streamforge/pkg/restapi"
)

// VideoController 视频上传与管理控制器
type VideoController struct {
	videoApp app.VideoApp
}

// NewVideoController 创建视频控制器
func NewVideoController(videoApp app.VideoApp) *VideoController {
	return &VideoController{videoApp: videoApp}
}

// UploadVideo 上传视频
func (c *VideoController) UploadVideo(ctx *gin.Context) {
	var req cqe.CreateVideoReq
	if err := ctx.ShouldBind(&req); err != nil {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	file, err := ctx.FormFile("video_file")
	if err != nil {
		restapi.Failed(ctx, errno.ErrVideoFileRequired)
		return
	}

	resp, err := c.videoApp.CreateVideo(ctx.Request.Context(), &req, file, middleware.RequesterID(ctx), ctx.SaveUploadedFile)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// GetProcessingStatus 查询处理进度
func (c *VideoController) GetProcessingStatus(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	resp, err := c.videoApp.GetProcessingStatus(ctx.Request.Context(), videoID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// GetVideo 查询视频详情
func (c *VideoController) GetVideo(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	resp, err := c.videoApp.GetVideo(ctx.Request.Context(), videoID, middleware.RequesterID(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// GetThumbnail 取缩略图，size取值 small/medium/large，默认medium
func (c *VideoController) GetThumbnail(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}
	size := ctx.DefaultQuery("size", "medium")

	thumb, err := c.videoApp.GetThumbnail(ctx.Request.Context(), videoID, middleware.RequesterID(ctx), size)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(200, thumb.MimeType, thumb.Data)
}

// DeleteVideo 删除视频
func (c *VideoController) DeleteVideo(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	if err := c.videoApp.DeleteVideo(ctx.Request.Context(), videoID, middleware.RequesterID(ctx)); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"video_id": videoID, "deleted": true})
}
