package app

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamforge/ddd/application/cqe"
	"streamforge/ddd/domain/service"
	"streamforge/ddd/domain/vo"
	"streamforge/ddd/infrastructure/queue"
	"streamforge/pkg/config"
	"streamforge/pkg/errno"
)

// ---- fakes ----

type stubTranscoder struct{}

func (stubTranscoder) Analyze(_ context.Context, _ string) (*vo.Analysis, error) {
	return vo.NewAnalysis(1280, 720, 30, 300, 1<<20)
}

func (stubTranscoder) EncodeSegments(_ context.Context, _ string, _ vo.Quality, _ float64) ([]vo.EncodedSegment, error) {
	return []vo.EncodedSegment{{Index: 0, Data: []byte("seg"), Size: 3, Duration: 4}}, nil
}

type stubThumbnailer struct{}

func (stubThumbnailer) GenerateThumbnails(_ context.Context, _ string, _ float64, sizes []vo.ThumbnailSize) ([]vo.Thumbnail, error) {
	thumbs := make([]vo.Thumbnail, 0, len(sizes))
	for _, s := range sizes {
		thumbs = append(thumbs, vo.Thumbnail{Data: []byte("jpeg"), Width: s.Width, Height: s.Height, MimeType: "image/jpeg"})
	}
	return thumbs, nil
}

type stubArchive struct{}

func (stubArchive) ArchiveOriginal(_ context.Context, _, videoID, _ string) (string, error) {
	return "originals/" + videoID, nil
}

func (stubArchive) RemoveOriginal(_ context.Context, _ string) error { return nil }

type stubPublisher struct{}

func (stubPublisher) PublishVideoProcessed(_ context.Context, _ vo.VideoProcessedEvent) error {
	return nil
}

// ---- helpers ----

func newTestVideoApp(repo *stubVideoRepo, cache *stubCache, tempDir string, queueCap int) (VideoApp, queue.UploadQueue, *service.PipelineService) {
	pipeline := service.NewPipelineService(
		repo, stubTranscoder{}, stubThumbnailer{}, stubArchive{}, stubPublisher{}, cache,
		service.NewStatusTracker(), 2, time.Minute,
	)
	uploadQueue := queue.NewMemoryUploadQueue(queueCap)
	cfg := &config.Config{}
	cfg.Pipeline.MaxUploadBytes = 1 << 20
	cfg.Transcode.FFmpeg.TempDir = tempDir
	return NewVideoAppWith(repo, pipeline, uploadQueue, stubArchive{}, cache, cfg), uploadQueue, pipeline
}

func uploadHeader(size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "clip.mp4", Size: size}
}

func createReq(title string) *cqe.CreateVideoReq {
	return &cqe.CreateVideoReq{Title: title}
}

func saveTestFile(_ *multipart.FileHeader, dst string) error {
	return os.WriteFile(dst, []byte("payload"), 0o644)
}

// ---- tests ----

func TestCreateVideoAccepted(t *testing.T) {
	repo := newStubRepo()
	videoApp, uploadQueue, pipeline := newTestVideoApp(repo, newStubCache(), t.TempDir(), 4)

	res, err := videoApp.CreateVideo(context.Background(), createReq("My Clip"), uploadHeader(1024), "user-1", saveTestFile)
	require.NoError(t, err)
	assert.NotEmpty(t, res.VideoID)
	assert.Equal(t, "processing", res.ProcessingStatus)
	assert.Equal(t, []string{"144p", "240p", "360p", "480p", "720p"}, res.TargetQualities)

	assert.Equal(t, 1, uploadQueue.Size())
	require.Contains(t, repo.videos, res.VideoID)
	assert.Equal(t, vo.StatusProcessing, repo.videos[res.VideoID].ProcessingStatus)
	assert.Equal(t, "processing", pipeline.Tracker().Get(res.VideoID).Status)
}

func TestCreateVideoQueueFullRollsBack(t *testing.T) {
	repo := newStubRepo()
	tempDir := t.TempDir()
	videoApp, uploadQueue, pipeline := newTestVideoApp(repo, newStubCache(), tempDir, 1)

	// 占满队列
	require.NoError(t, uploadQueue.Enqueue(context.Background(), &vo.UploadJob{VideoID: "occupied"}))

	_, err := videoApp.CreateVideo(context.Background(), createReq("My Clip"), uploadHeader(1024), "user-1", saveTestFile)
	assert.ErrorIs(t, err, errno.ErrQueueFull)

	// 拒绝受理不留任何痕迹：视频行、进度记录、暂存文件全部回滚
	require.Len(t, repo.deleted, 1)
	assert.Empty(t, repo.videos)
	assert.Equal(t, service.StatusUnknown, pipeline.Tracker().Get(repo.deleted[0]).Status)

	entries, err := os.ReadDir(filepath.Join(tempDir, "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateVideoRejectsBadUploads(t *testing.T) {
	repo := newStubRepo()
	videoApp, uploadQueue, _ := newTestVideoApp(repo, newStubCache(), t.TempDir(), 4)
	ctx := context.Background()

	_, err := videoApp.CreateVideo(ctx, createReq("My Clip"), nil, "user-1", saveTestFile)
	assert.ErrorIs(t, err, errno.ErrVideoFileRequired)

	_, err = videoApp.CreateVideo(ctx, createReq("My Clip"), uploadHeader(0), "user-1", saveTestFile)
	assert.ErrorIs(t, err, errno.ErrVideoFileRequired)

	_, err = videoApp.CreateVideo(ctx, createReq("My Clip"), uploadHeader(2<<20), "user-1", saveTestFile)
	assert.ErrorIs(t, err, errno.ErrVideoFileTooLarge)

	assert.Empty(t, repo.videos)
	assert.Equal(t, 0, uploadQueue.Size())
}

func TestGetVideoViewCounting(t *testing.T) {
	// Redis可用：展示值 = 行内基数 + 计数器增量
	repo := newStubRepo()
	seedVideo(repo, true)
	cache := newStubCache()
	videoApp, _, _ := newTestVideoApp(repo, cache, t.TempDir(), 4)

	res, err := videoApp.GetVideo(context.Background(), "vid-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Views)
	assert.Empty(t, repo.addedViews)
}

func TestGetVideoViewCountingRedisDown(t *testing.T) {
	// Redis不可用时计数直接落库
	repo := newStubRepo()
	seedVideo(repo, true)
	cache := newStubCache()
	cache.viewsErr = context.DeadlineExceeded
	videoApp, _, _ := newTestVideoApp(repo, cache, t.TempDir(), 4)

	res, err := videoApp.GetVideo(context.Background(), "vid-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Views)
	assert.Equal(t, []int64{1}, repo.addedViews)
}

func TestGetProcessingStatusFallsBackToRow(t *testing.T) {
	repo := newStubRepo()
	seedVideo(repo, true)
	videoApp, _, _ := newTestVideoApp(repo, newStubCache(), t.TempDir(), 4)

	res, err := videoApp.GetProcessingStatus(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 100, res.Progress)
}

func TestDeleteVideoOwnerOnly(t *testing.T) {
	repo := newStubRepo()
	seedVideo(repo, false)
	cache := newStubCache()
	videoApp, _, _ := newTestVideoApp(repo, cache, t.TempDir(), 4)
	ctx := context.Background()

	assert.ErrorIs(t, videoApp.DeleteVideo(ctx, "vid-1", "intruder"), errno.ErrNotOwner)
	require.Contains(t, repo.videos, "vid-1")

	require.NoError(t, videoApp.DeleteVideo(ctx, "vid-1", "owner-1"))
	assert.Equal(t, []string{"vid-1"}, repo.deleted)
	assert.Equal(t, []string{"vid-1"}, cache.resets)
	assert.Equal(t, []string{"vid-1"}, cache.invalidated)
}
