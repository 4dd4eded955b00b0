package service

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/repo"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
	"streamforge/pkg/logger"
)

// thumbnailTimestamp 缩略图取帧时间点（秒），超短视频取首帧
const thumbnailTimestamp = 1.0

// PipelineService 视频处理管线。
// Prepare 在请求线程同步完成分析/缩略图/建行，ProcessTiers 由后台工作器执行。
type PipelineService struct {
	videoRepo   repo.VideoRepository
	transcoder  gateway.Transcoder
	thumbnailer gateway.Thumbnailer
	archive     gateway.SourceArchive
	publisher   gateway.EventPublisher
	cache       gateway.ManifestCache
	tracker     *StatusTracker

	maxConcurrentTiers int
	tierTimeout        time.Duration
}

// NewPipelineService 装配处理管线
func NewPipelineService(
	videoRepo repo.VideoRepository,
	transcoder gateway.Transcoder,
	thumbnailer gateway.Thumbnailer,
	archive gateway.SourceArchive,
	publisher gateway.EventPublisher,
	cache gateway.ManifestCache,
	tracker *StatusTracker,
	maxConcurrentTiers int,
	tierTimeout time.Duration,
) *PipelineService {
	if maxConcurrentTiers <= 0 {
		maxConcurrentTiers = 2
	}
	if tierTimeout <= 0 {
		tierTimeout = 5 * time.Minute
	}
	return &PipelineService{
		videoRepo:          videoRepo,
		transcoder:         transcoder,
		thumbnailer:        thumbnailer,
		archive:            archive,
		publisher:          publisher,
		cache:              cache,
		tracker:            tracker,
		maxConcurrentTiers: maxConcurrentTiers,
		tierTimeout:        tierTimeout,
	}
}

// Tracker 暴露进度跟踪器供查询接口使用
func (s *PipelineService) Tracker() *StatusTracker {
	return s.tracker
}

// Prepare 上传后的同步阶段：分析源视频、生成缩略图、落库、登记进度。
// 任一步失败整个上传失败，不会留下半成品视频行。
func (s *PipelineService) Prepare(ctx context.Context, video *entity.Video, inputPath string) (*vo.UploadJob, error) {
	analysis, err := s.transcoder.Analyze(ctx, inputPath)
	if err != nil {
		logger.Warnf("analyze failed for %s: %v", video.OriginalFilename, err)
		return nil, errno.ErrUnanalyzableVideo
	}

	timestamp := thumbnailTimestamp
	if analysis.Duration <= thumbnailTimestamp {
		timestamp = 0
	}
	thumbnails, err := s.thumbnailer.GenerateThumbnails(ctx, inputPath, timestamp, vo.DefaultThumbnailSizes)
	if err != nil {
		logger.Warnf("thumbnail generation failed for %s: %v", video.ID, err)
		return nil, errno.ErrThumbnailFailed
	}

	video.Duration = int(analysis.Duration)
	video.OriginalResolution = analysis.OriginalResolution()
	video.OriginalSize = analysis.FileSize
	video.FPS = int(analysis.FPS)
	video.ProcessingStatus = vo.StatusProcessing
	if len(thumbnails) == len(vo.DefaultThumbnailSizes) {
		video.ThumbnailSmall = thumbnails[0].Data
		video.ThumbnailMedium = thumbnails[1].Data
		video.ThumbnailLarge = thumbnails[2].Data
		video.ThumbnailMimeType = thumbnails[0].MimeType
	}

	qualities := analysis.OptimalQualities()

	if err := s.tracker.Begin(video.ID, len(qualities)); err != nil {
		return nil, err
	}
	if err := s.videoRepo.CreateVideo(ctx, video); err != nil {
		s.tracker.Fail(video.ID, err.Error())
		return nil, err
	}

	logger.Info("video prepared", map[string]interface{}{
		"video_id":   video.ID,
		"resolution": video.OriginalResolution,
		"duration":   video.Duration,
		"qualities":  len(qualities),
	})

	return &vo.UploadJob{
		VideoID:   video.ID,
		UserID:    video.UserID,
		InputPath: inputPath,
		Filename:  video.OriginalFilename,
		Qualities: qualities,
		Analysis:  analysis,
	}, nil
}

// ProcessTiers 后台阶段：并发转码各档位并逐档提交，最后定稿整体状态。
// 档位之间互不影响，任一档位成功整体即算完成；全失败才标记failed。
func (s *PipelineService) ProcessTiers(ctx context.Context, job *vo.UploadJob) {
	started := time.Now()
	results := make([]vo.TierResult, len(job.Qualities))

	limit := s.maxConcurrentTiers
	if n := runtime.GOMAXPROCS(0); n < limit {
		limit = n
	}
	if limit > len(job.Qualities) {
		limit = len(job.Qualities)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, quality := range job.Qualities {
		i, quality := i, quality
		g.Go(func() error {
			results[i] = s.processTier(gctx, job, quality)
			// 单档位失败不取消其他档位
			return nil
		})
	}
	_ = g.Wait()

	var ready, failed []string
	for _, r := range results {
		if r.Succeeded() {
			ready = append(ready, r.Quality.String())
		} else {
			failed = append(failed, r.Quality.String())
			logger.Errorf("tier %s failed for video %s: %v", r.Quality, job.VideoID, r.Err)
		}
	}

	finalStatus := vo.StatusFailed
	if len(ready) > 0 {
		finalStatus = vo.StatusCompleted
	}
	if err := s.videoRepo.UpdateProcessingStatus(ctx, job.VideoID, finalStatus); err != nil {
		logger.Errorf("update processing status for %s: %v", job.VideoID, err)
	}

	if finalStatus == vo.StatusCompleted {
		s.tracker.Complete(job.VideoID)
	} else {
		s.tracker.Fail(job.VideoID, fmt.Sprintf("all %d quality tiers failed", len(job.Qualities)))
	}

	s.cache.InvalidateManifest(ctx, job.VideoID)

	duration := 0
	if job.Analysis != nil {
		duration = int(job.Analysis.Duration)
	}
	event := vo.VideoProcessedEvent{
		VideoID:         job.VideoID,
		UserID:          job.UserID,
		Status:          string(finalStatus),
		QualitiesReady:  ready,
		QualitiesFailed: failed,
		Duration:        duration,
		FinishedAt:      time.Now(),
	}
	if err := s.publisher.PublishVideoProcessed(ctx, event); err != nil {
		logger.Warnf("publish video.processed for %s: %v", job.VideoID, err)
	}

	s.archiveAndCleanup(ctx, job)

	logger.Info("pipeline finished", map[string]interface{}{
		"video_id": job.VideoID,
		"status":   string(finalStatus),
		"ready":    ready,
		"failed":   failed,
		"elapsed":  time.Since(started).String(),
	})
}

// processTier 单个档位：转码切片后在一个事务内提交档位行和全部切片行
func (s *PipelineService) processTier(ctx context.Context, job *vo.UploadJob, quality vo.Quality) vo.TierResult {
	s.tracker.SetStep(job.VideoID, fmt.Sprintf("Transcoding %s...", quality))

	tierCtx, cancel := context.WithTimeout(ctx, s.tierTimeout)
	defer cancel()

	var sourceDuration float64
	if job.Analysis != nil {
		sourceDuration = job.Analysis.Duration
	}
	segments, err := s.transcoder.EncodeSegments(tierCtx, job.InputPath, quality, sourceDuration)
	if err != nil {
		return vo.TierResult{Quality: quality, Err: err}
	}
	if len(segments) == 0 {
		return vo.TierResult{Quality: quality, Err: fmt.Errorf("transcode produced no segments for %s", quality)}
	}

	preset := quality.Preset()
	qualityRow := &entity.VideoQuality{
		ID:              uuid.NewString(),
		VideoID:         job.VideoID,
		Quality:         quality,
		Resolution:      quality.Resolution(),
		BitrateK:        preset.BitrateK,
		Codec:           preset.Codec,
		FPS:             preset.FPS,
		SegmentDuration: vo.SegmentDuration,
		TotalSegments:   len(segments),
		Status:          vo.StatusCompleted,
	}

	var totalBytes int64
	segmentRows := make([]*entity.VideoSegment, 0, len(segments))
	elapsed := 0.0
	for _, seg := range segments {
		segmentRows = append(segmentRows, &entity.VideoSegment{
			ID:             uuid.NewString(),
			VideoQualityID: qualityRow.ID,
			SegmentIndex:   seg.Index,
			Data:           seg.Data,
			Size:           seg.Size,
			StartTime:      elapsed,
			EndTime:        elapsed + seg.Duration,
		})
		elapsed += seg.Duration
		totalBytes += seg.Size
	}
	qualityRow.TotalSize = totalBytes

	if err := s.videoRepo.CommitTier(ctx, qualityRow, segmentRows); err != nil {
		return vo.TierResult{Quality: quality, Err: err}
	}

	s.tracker.MarkTierDone(job.VideoID, quality)
	logger.Infof("tier %s committed for video %s, %d segments, %d bytes",
		quality, job.VideoID, len(segments), totalBytes)

	return vo.TierResult{Quality: quality, Segments: len(segments), TotalBytes: totalBytes}
}

// archiveAndCleanup 源文件归档到对象存储后删除本地暂存
func (s *PipelineService) archiveAndCleanup(ctx context.Context, job *vo.UploadJob) {
	contentType := mime.TypeByExtension(filepath.Ext(job.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.archive.ArchiveOriginal(ctx, job.InputPath, job.VideoID, contentType); err != nil {
		logger.Warnf("archive original for %s: %v", job.VideoID, err)
	}
	if err := os.Remove(job.InputPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf("remove temp file %s: %v", job.InputPath, err)
	}
}
