package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/config"
)

// FFmpegThumbnailer 基于 ffmpeg 抽帧的缩略图实现
type FFmpegThumbnailer struct {
	cfg *config.Config
}

var _ gateway.Thumbnailer = (*FFmpegThumbnailer)(nil)

func NewFFmpegThumbnailer(cfg *config.Config) *FFmpegThumbnailer {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegThumbnailer{cfg: cfg}
}

// GenerateThumbnails 在指定时间点抽一帧，按各目标尺寸缩放出JPEG。
// 任一尺寸失败整组失败，不返回残缺的尺寸集。
func (t *FFmpegThumbnailer) GenerateThumbnails(ctx context.Context, inputPath string, timestamp float64, sizes []vo.ThumbnailSize) ([]vo.Thumbnail, error) {
	if timestamp < 0 {
		timestamp = 0
	}

	outDir, err := os.MkdirTemp(t.tempDir(), "thumb_*")
	if err != nil {
		return nil, fmt.Errorf("create thumbnail dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	thumbnails := make([]vo.Thumbnail, 0, len(sizes))
	for i, size := range sizes {
		outPath := filepath.Join(outDir, fmt.Sprintf("thumb_%d.jpg", i))
		cmd := exec.CommandContext(ctx, t.ffmpegBin(),
			"-ss", fmt.Sprintf("%.3f", timestamp),
			"-i", inputPath,
			"-vframes", "1",
			"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", size.Width, size.Height),
			"-q:v", "2",
			"-y", outPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			tail := string(out)
			if len(tail) > 512 {
				tail = tail[len(tail)-512:]
			}
			return nil, fmt.Errorf("thumbnail %dx%d: %w, output tail: %s", size.Width, size.Height, err, tail)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			return nil, fmt.Errorf("read thumbnail: %w", err)
		}
		thumbnails = append(thumbnails, vo.Thumbnail{
			Data:     data,
			Width:    size.Width,
			Height:   size.Height,
			MimeType: "image/jpeg",
		})
	}
	return thumbnails, nil
}

func (t *FFmpegThumbnailer) ffmpegBin() string {
	if t.cfg != nil && t.cfg.Transcode.FFmpeg.BinaryPath != "" {
		return t.cfg.Transcode.FFmpeg.BinaryPath
	}
	return "ffmpeg"
}

func (t *FFmpegThumbnailer) tempDir() string {
	if t.cfg != nil && strings.TrimSpace(t.cfg.Transcode.FFmpeg.TempDir) != "" {
		return t.cfg.Transcode.FFmpeg.TempDir
	}
	return os.TempDir()
}
