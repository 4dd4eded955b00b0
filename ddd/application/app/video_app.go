package app

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"streamforge/ddd/application/cqe"
	"streamforge/ddd/application/dto"
	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/repo"
	"streamforge/ddd/domain/service"
	"streamforge/ddd/domain/vo"
	"streamforge/ddd/infrastructure/queue"
	"streamforge/pkg/config"
	"streamforge/pkg/errno"
	"streamforge/pkg/logger"
)

var (
	singleVideoApp VideoApp
	onceVideoApp   sync.Once
)

// VideoApp 视频上传与管理的应用服务
type VideoApp interface {
	// CreateVideo 受理上传：校验、暂存、同步分析、入队异步处理
	CreateVideo(ctx context.Context, req *cqe.CreateVideoReq, file *multipart.FileHeader, userID string, saveFile func(*multipart.FileHeader, string) error) (*dto.UploadAcceptedDto, error)

	// GetProcessingStatus 查询处理进度，进度缓存缺失时回退到持久状态
	GetProcessingStatus(ctx context.Context, videoID string) (*dto.ProcessingStatusDto, error)

	// GetVideo 查询视频详情并累加播放计数
	GetVideo(ctx context.Context, videoID, requesterID string) (*dto.VideoDto, error)

	// GetThumbnail 按尺寸取缩略图
	GetThumbnail(ctx context.Context, videoID, requesterID, size string) (*dto.ThumbnailDto, error)

	// DeleteVideo 删除视频，仅所有者可操作
	DeleteVideo(ctx context.Context, videoID, requesterID string) error
}

type videoAppImpl struct {
	videoRepo   repo.VideoRepository
	pipeline    *service.PipelineService
	uploadQueue queue.UploadQueue
	archive     gateway.SourceArchive
	cache       gateway.ManifestCache

	maxUploadBytes int64
	tempDir        string
}

var defaultVideoAppFactory func() VideoApp

// SetDefaultVideoAppFactory 装配期注入默认实例的构造方式
func SetDefaultVideoAppFactory(f func() VideoApp) {
	defaultVideoAppFactory = f
}

// DefaultVideoApp 获取视频应用服务单例
func DefaultVideoApp() VideoApp {
	onceVideoApp.Do(func() {
		if defaultVideoAppFactory == nil {
			panic("video app factory not configured")
		}
		singleVideoApp = defaultVideoAppFactory()
	})
	return singleVideoApp
}

// NewVideoAppWith 显式依赖装配，测试时可注入假实现
func NewVideoAppWith(
	videoRepo repo.VideoRepository,
	pipeline *service.PipelineService,
	uploadQueue queue.UploadQueue,
	archive gateway.SourceArchive,
	cache gateway.ManifestCache,
	cfg *config.Config,
) VideoApp {
	maxUploadBytes := int64(1 << 30)
	tempDir := os.TempDir()
	if cfg != nil {
		if cfg.Pipeline.MaxUploadBytes > 0 {
			maxUploadBytes = cfg.Pipeline.MaxUploadBytes
		}
		if cfg.Transcode.FFmpeg.TempDir != "" {
			tempDir = cfg.Transcode.FFmpeg.TempDir
		}
	}
	return &videoAppImpl{
		videoRepo:      videoRepo,
		pipeline:       pipeline,
		uploadQueue:    uploadQueue,
		archive:        archive,
		cache:          cache,
		maxUploadBytes: maxUploadBytes,
		tempDir:        tempDir,
	}
}

// CreateVideo 受理上传
func (a *videoAppImpl) CreateVideo(ctx context.Context, req *cqe.CreateVideoReq, file *multipart.FileHeader, userID string, saveFile func(*multipart.FileHeader, string) error) (*dto.UploadAcceptedDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if file == nil || file.Size == 0 {
		return nil, errno.ErrVideoFileRequired
	}
	if file.Size > a.maxUploadBytes {
		return nil, errno.ErrVideoFileTooLarge
	}

	videoID := uuid.NewString()

	// 源文件先落本地暂存目录，管线处理完后归档并清理
	inputDir := filepath.Join(a.tempDir, "uploads")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	inputPath := filepath.Join(inputDir, fmt.Sprintf("upload_%s%s", videoID, filepath.Ext(file.Filename)))
	if err := saveFile(file, inputPath); err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}

	video := &entity.Video{
		ID:               videoID,
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Tags:             req.ParsedTags(),
		IsPublic:         req.Public(),
		OriginalFilename: file.Filename,
	}

	job, err := a.pipeline.Prepare(ctx, video, inputPath)
	if err != nil {
		_ = os.Remove(inputPath)
		return nil, err
	}

	if err := a.uploadQueue.Enqueue(ctx, job); err != nil {
		logger.Errorf("enqueue upload job video_id=%s error=%v", videoID, err)
		// 受理失败回滚已建的视频行和进度记录，不留半成品
		a.pipeline.Tracker().Remove(videoID)
		if derr := a.videoRepo.DeleteVideo(ctx, videoID); derr != nil {
			logger.Warnf("rollback video row %s: %v", videoID, derr)
		}
		_ = os.Remove(inputPath)
		return nil, errno.ErrQueueFull
	}

	qualities := make([]string, 0, len(job.Qualities))
	for _, q := range job.Qualities {
		qualities = append(qualities, q.String())
	}

	return &dto.UploadAcceptedDto{
		VideoID:          videoID,
		ProcessingStatus: vo.StatusProcessing.String(),
		TargetQualities:  qualities,
		Message:          "Video uploaded, transcoding started",
	}, nil
}

// GetProcessingStatus 查询处理进度。
// 进程内进度缓存丢失时（如重启后），用数据库中的最终状态兜底。
func (a *videoAppImpl) GetProcessingStatus(ctx context.Context, videoID string) (*dto.ProcessingStatusDto, error) {
	job := a.pipeline.Tracker().Get(videoID)
	if job.Status != service.StatusUnknown {
		return dto.NewProcessingStatusDto(videoID, job), nil
	}

	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	fallback := service.JobStatus{Status: video.ProcessingStatus.String()}
	if video.ProcessingStatus == vo.StatusCompleted {
		fallback.Progress = 100
	}
	return dto.NewProcessingStatusDto(videoID, fallback), nil
}

// GetVideo 查询视频详情
func (a *videoAppImpl) GetVideo(ctx context.Context, videoID, requesterID string) (*dto.VideoDto, error) {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, errno.ErrVideoPrivate
	}

	// 播放计数走Redis计数器，Redis不可用时直接落库
	if count, err := a.cache.IncrementViews(ctx, videoID); err == nil {
		video.Views += count
	} else {
		_ = a.videoRepo.AddViews(ctx, videoID, 1)
		video.Views++
	}

	return dto.NewVideoDto(video), nil
}

// GetThumbnail 按尺寸取缩略图，目标尺寸缺失时降级
func (a *videoAppImpl) GetThumbnail(ctx context.Context, videoID, requesterID, size string) (*dto.ThumbnailDto, error) {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.VisibleTo(requesterID) {
		return nil, errno.ErrVideoPrivate
	}

	data := video.ThumbnailBySize(size)
	if len(data) == 0 {
		return nil, errno.ErrThumbnailNotFound
	}
	mimeType := video.ThumbnailMimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return &dto.ThumbnailDto{Data: data, MimeType: mimeType}, nil
}

// DeleteVideo 删除视频及其档位、切片、归档件与缓存
func (a *videoAppImpl) DeleteVideo(ctx context.Context, videoID, requesterID string) error {
	video, err := a.videoRepo.GetVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if !video.OwnedBy(requesterID) {
		return errno.ErrNotOwner
	}

	if err := a.videoRepo.DeleteVideo(ctx, videoID); err != nil {
		return err
	}

	if err := a.archive.RemoveOriginal(ctx, videoID); err != nil {
		logger.Warnf("remove archived original for %s: %v", videoID, err)
	}
	a.cache.InvalidateManifest(ctx, videoID)
	a.cache.ResetViews(ctx, videoID)

	logger.Infof("video %s deleted by %s", videoID, requesterID)
	return nil
}
