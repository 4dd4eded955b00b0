package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"streamforge/ddd/application/app"
	"streamforge/ddd/application/cqe"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
	"streamforge/pkg/middleware"
	"streamforge/pkg/restapi"
)

// StreamingController 播放侧控制器
type StreamingController struct {
	streamingApp app.StreamingApp
}

// NewStreamingController 创建播放控制器
func NewStreamingController(streamingApp app.StreamingApp) *StreamingController {
	return &StreamingController{streamingApp: streamingApp}
}

// GetManifest 取播放清单
func (c *StreamingController) GetManifest(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	manifest, err := c.streamingApp.GetManifest(ctx.Request.Context(), videoID, middleware.RequesterID(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, manifest)
}

// GetSegment 取切片数据，支持HTTP Range请求
func (c *StreamingController) GetSegment(ctx *gin.Context) {
	var req cqe.GetSegmentReq
	if err := ctx.ShouldBindUri(&req); err != nil {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	segment, err := c.streamingApp.GetSegment(ctx.Request.Context(), req.VideoID, middleware.RequesterID(ctx),
		vo.Quality(req.Quality), req.SegmentIndex, ctx.GetHeader("Range"))
	if err != nil {
		// 区间不可满足时按协议带上资源总大小
		if err == errno.ErrRangeNotSatisfiable && segment != nil {
			ctx.Header("Content-Range", fmt.Sprintf("bytes */%d", segment.TotalSize))
		}
		restapi.Failed(ctx, err)
		return
	}

	ctx.Header("Accept-Ranges", "bytes")
	ctx.Header("Cache-Control", "public, max-age=3600")
	if segment.Partial {
		ctx.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", segment.RangeStart, segment.RangeEnd, segment.TotalSize))
		ctx.Data(http.StatusPartialContent, segment.MimeType, segment.Data)
		return
	}
	ctx.Data(http.StatusOK, segment.MimeType, segment.Data)
}

// GetQualityInfo 取单个档位信息
func (c *StreamingController) GetQualityInfo(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	quality := vo.Quality(ctx.Param("quality"))
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	info, err := c.streamingApp.GetQualityInfo(ctx.Request.Context(), videoID, middleware.RequesterID(ctx), quality)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, info)
}

// GetAutoQuality 自动选档，带宽估计值从query读取（kbps）
func (c *StreamingController) GetAutoQuality(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	if videoID == "" {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}
	bandwidth, _ := strconv.Atoi(ctx.DefaultQuery("bandwidth", "0"))

	resp, err := c.streamingApp.GetAutoQuality(ctx.Request.Context(), videoID, middleware.RequesterID(ctx),
		bandwidth, ctx.GetHeader("User-Agent"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
