package cqe

import (
	"encoding/json"
	"strings"

	"streamforge/pkg/errno"
)

// maxTitleLength 标题长度上限
const maxTitleLength = 255

// CreateVideoReq 上传视频请求，multipart表单的非文件字段
type CreateVideoReq struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Category    string `form:"category"`
	Tags        string `form:"tags"`
	IsPublic    *bool  `form:"is_public"`
}

// Validate 校验请求并返回业务错误
func (req *CreateVideoReq) Validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errno.ErrTitleRequired
	}
	if len(req.Title) > maxTitleLength {
		return errno.ErrTitleTooLong
	}
	return nil
}

// Public 可见性默认公开
func (req *CreateVideoReq) Public() bool {
	if req.IsPublic == nil {
		return true
	}
	return *req.IsPublic
}

// ParsedTags 解析标签字段，先按JSON数组解析，失败退回逗号分隔
func (req *CreateVideoReq) ParsedTags() []string {
	raw := strings.TrimSpace(req.Tags)
	if raw == "" {
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return trimTags(tags)
	}
	return trimTags(strings.Split(raw, ","))
}

func trimTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// GetSegmentReq 切片请求参数
type GetSegmentReq struct {
	VideoID      string `uri:"video_id" binding:"required"`
	Quality      string `uri:"quality" binding:"required"`
	SegmentIndex int    `uri:"segment_index"`
}

// Validate 校验切片请求
func (req *GetSegmentReq) Validate() error {
	if req.VideoID == "" || req.Quality == "" {
		return errno.ErrInvalidParam
	}
	if req.SegmentIndex < 0 {
		return errno.ErrInvalidParam
	}
	return nil
}
