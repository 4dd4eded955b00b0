package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamforge/ddd/domain/entity"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
)

// ---- fakes ----

type fakeTranscoder struct {
	analysis   *vo.Analysis
	analyzeErr error
	failTiers  map[vo.Quality]error
	segments   map[vo.Quality][]vo.EncodedSegment
}

func (f *fakeTranscoder) Analyze(_ context.Context, _ string) (*vo.Analysis, error) {
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.analysis, nil
}

func (f *fakeTranscoder) EncodeSegments(_ context.Context, _ string, quality vo.Quality, _ float64) ([]vo.EncodedSegment, error) {
	if err := f.failTiers[quality]; err != nil {
		return nil, err
	}
	if segs, ok := f.segments[quality]; ok {
		return segs, nil
	}
	return []vo.EncodedSegment{
		{Index: 0, Data: []byte("seg0"), Size: 4, Duration: 4},
		{Index: 1, Data: []byte("seg1"), Size: 4, Duration: 4},
		{Index: 2, Data: []byte("s2"), Size: 2, Duration: 2},
	}, nil
}

type fakeThumbnailer struct {
	err error
}

func (f *fakeThumbnailer) GenerateThumbnails(_ context.Context, _ string, _ float64, sizes []vo.ThumbnailSize) ([]vo.Thumbnail, error) {
	if f.err != nil {
		return nil, f.err
	}
	thumbs := make([]vo.Thumbnail, 0, len(sizes))
	for _, s := range sizes {
		thumbs = append(thumbs, vo.Thumbnail{Data: []byte("jpeg"), Width: s.Width, Height: s.Height, MimeType: "image/jpeg"})
	}
	return thumbs, nil
}

type fakeRepo struct {
	mu             sync.Mutex
	created        []*entity.Video
	committedTiers map[vo.Quality][]*entity.VideoSegment
	statusUpdates  []vo.ProcessingStatus
	commitErr      map[vo.Quality]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		committedTiers: make(map[vo.Quality][]*entity.VideoSegment),
		commitErr:      make(map[vo.Quality]error),
	}
}

func (f *fakeRepo) CreateVideo(_ context.Context, video *entity.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, video)
	return nil
}

func (f *fakeRepo) GetVideo(_ context.Context, _ string) (*entity.Video, error) {
	return nil, errno.ErrVideoNotFound
}

func (f *fakeRepo) UpdateProcessingStatus(_ context.Context, _ string, status vo.ProcessingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeRepo) AddViews(_ context.Context, _ string, _ int64) error { return nil }
func (f *fakeRepo) DeleteVideo(_ context.Context, _ string) error       { return nil }

func (f *fakeRepo) CommitTier(_ context.Context, quality *entity.VideoQuality, segments []*entity.VideoSegment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.commitErr[quality.Quality]; err != nil {
		return err
	}
	f.committedTiers[quality.Quality] = segments
	return nil
}

func (f *fakeRepo) ListQualities(_ context.Context, _ string) ([]*entity.VideoQuality, error) {
	return nil, nil
}

func (f *fakeRepo) ListSegmentMetas(_ context.Context, _ string) ([]*entity.VideoSegment, error) {
	return nil, nil
}

func (f *fakeRepo) GetSegment(_ context.Context, _ string, _ vo.Quality, _ int) (*entity.VideoSegment, error) {
	return nil, errno.ErrSegmentNotFound
}

type fakeArchive struct {
	mu       sync.Mutex
	archived []string
	removed  []string
}

func (f *fakeArchive) ArchiveOriginal(_ context.Context, _ string, videoID string, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, videoID)
	return "originals/" + videoID, nil
}

func (f *fakeArchive) RemoveOriginal(_ context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, videoID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []vo.VideoProcessedEvent
}

func (f *fakePublisher) PublishVideoProcessed(_ context.Context, event vo.VideoProcessedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeCache) GetManifest(_ context.Context, _ string) ([]byte, bool) { return nil, false }

func (f *fakeCache) SetManifest(_ context.Context, _ string, _ []byte) {}

func (f *fakeCache) IncrementViews(_ context.Context, _ string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeCache) ResetViews(_ context.Context, _ string) {}

func (f *fakeCache) InvalidateManifest(_ context.Context, videoID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, videoID)
}

// ---- helpers ----

func newTestPipeline(transcoder *fakeTranscoder, repo *fakeRepo) (*PipelineService, *fakePublisher, *fakeCache) {
	publisher := &fakePublisher{}
	cache := &fakeCache{}
	pipeline := NewPipelineService(
		repo, transcoder, &fakeThumbnailer{}, &fakeArchive{}, publisher, cache,
		NewStatusTracker(), 2, time.Minute,
	)
	return pipeline, publisher, cache
}

func testJob(qualities ...vo.Quality) *vo.UploadJob {
	analysis, _ := vo.NewAnalysis(1280, 720, 30, 300, 1<<20)
	return &vo.UploadJob{
		VideoID:   "vid-1",
		UserID:    "user-1",
		InputPath: "/nonexistent/input.mp4",
		Filename:  "input.mp4",
		Qualities: qualities,
		Analysis:  analysis,
	}
}

// ---- tests ----

func TestProcessTiersAllSucceed(t *testing.T) {
	repo := newFakeRepo()
	pipeline, publisher, cache := newTestPipeline(&fakeTranscoder{}, repo)
	job := testJob(vo.Quality144p, vo.Quality240p, vo.Quality360p)
	require.NoError(t, pipeline.Tracker().Begin(job.VideoID, len(job.Qualities)))

	pipeline.ProcessTiers(context.Background(), job)

	assert.Len(t, repo.committedTiers, 3)
	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, vo.StatusCompleted, repo.statusUpdates[0])

	status := pipeline.Tracker().Get(job.VideoID)
	assert.Equal(t, string(vo.StatusCompleted), status.Status)
	assert.Equal(t, 100, status.Progress)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "completed", publisher.events[0].Status)
	assert.Len(t, publisher.events[0].QualitiesReady, 3)
	assert.Empty(t, publisher.events[0].QualitiesFailed)

	assert.Equal(t, []string{job.VideoID}, cache.invalidated)
}

func TestProcessTiersPartialFailure(t *testing.T) {
	// 单个档位失败不影响其他档位，整体仍算完成
	transcoder := &fakeTranscoder{
		failTiers: map[vo.Quality]error{vo.Quality720p: errors.New("encoder crashed")},
	}
	repo := newFakeRepo()
	pipeline, publisher, _ := newTestPipeline(transcoder, repo)
	job := testJob(vo.Quality360p, vo.Quality480p, vo.Quality720p)
	require.NoError(t, pipeline.Tracker().Begin(job.VideoID, len(job.Qualities)))

	pipeline.ProcessTiers(context.Background(), job)

	assert.Len(t, repo.committedTiers, 2)
	assert.Contains(t, repo.committedTiers, vo.Quality360p)
	assert.Contains(t, repo.committedTiers, vo.Quality480p)
	assert.NotContains(t, repo.committedTiers, vo.Quality720p)

	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, vo.StatusCompleted, repo.statusUpdates[0])

	require.Len(t, publisher.events, 1)
	assert.ElementsMatch(t, []string{"360p", "480p"}, publisher.events[0].QualitiesReady)
	assert.Equal(t, []string{"720p"}, publisher.events[0].QualitiesFailed)
}

func TestProcessTiersTotalFailure(t *testing.T) {
	transcoder := &fakeTranscoder{
		failTiers: map[vo.Quality]error{
			vo.Quality360p: errors.New("boom"),
			vo.Quality480p: errors.New("boom"),
		},
	}
	repo := newFakeRepo()
	pipeline, publisher, _ := newTestPipeline(transcoder, repo)
	job := testJob(vo.Quality360p, vo.Quality480p)
	require.NoError(t, pipeline.Tracker().Begin(job.VideoID, len(job.Qualities)))

	pipeline.ProcessTiers(context.Background(), job)

	assert.Empty(t, repo.committedTiers)
	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, vo.StatusFailed, repo.statusUpdates[0])

	status := pipeline.Tracker().Get(job.VideoID)
	assert.Equal(t, string(vo.StatusFailed), status.Status)
	assert.NotEmpty(t, status.Error)

	// 失败也要发事件
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "failed", publisher.events[0].Status)
}

func TestProcessTiersCommitFailureCountsAsTierFailure(t *testing.T) {
	// 转码成功但落库失败的档位按失败处理
	repo := newFakeRepo()
	repo.commitErr[vo.Quality480p] = errors.New("deadlock")
	pipeline, publisher, _ := newTestPipeline(&fakeTranscoder{}, repo)
	job := testJob(vo.Quality360p, vo.Quality480p)
	require.NoError(t, pipeline.Tracker().Begin(job.VideoID, len(job.Qualities)))

	pipeline.ProcessTiers(context.Background(), job)

	assert.Len(t, repo.committedTiers, 1)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, []string{"360p"}, publisher.events[0].QualitiesReady)
	assert.Equal(t, []string{"480p"}, publisher.events[0].QualitiesFailed)
}

func TestProcessTiersSegmentTimeline(t *testing.T) {
	// 切片起止时间首尾相接，末段短于标称时长
	repo := newFakeRepo()
	pipeline, _, _ := newTestPipeline(&fakeTranscoder{}, repo)
	job := testJob(vo.Quality360p)
	require.NoError(t, pipeline.Tracker().Begin(job.VideoID, 1))

	pipeline.ProcessTiers(context.Background(), job)

	segments := repo.committedTiers[vo.Quality360p]
	require.Len(t, segments, 3)
	assert.Equal(t, 0.0, segments[0].StartTime)
	for i, seg := range segments {
		assert.Equal(t, i, seg.SegmentIndex)
		if i > 0 {
			assert.Equal(t, segments[i-1].EndTime, seg.StartTime)
		}
	}
	assert.InDelta(t, 10.0, segments[2].EndTime, 1e-9)
	assert.InDelta(t, 2.0, segments[2].Duration(), 1e-9)
}

func TestPrepareUnanalyzableInput(t *testing.T) {
	transcoder := &fakeTranscoder{analyzeErr: errors.New("moov atom not found")}
	repo := newFakeRepo()
	pipeline, _, _ := newTestPipeline(transcoder, repo)

	video := &entity.Video{ID: "vid-1", UserID: "user-1", Title: "t", OriginalFilename: "bad.mp4"}
	_, err := pipeline.Prepare(context.Background(), video, "/tmp/bad.mp4")

	assert.ErrorIs(t, err, errno.ErrUnanalyzableVideo)
	assert.Empty(t, repo.created)
}

func TestPrepareThumbnailFailure(t *testing.T) {
	analysis, _ := vo.NewAnalysis(1280, 720, 30, 300, 1<<20)
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	pipeline := NewPipelineService(
		repo, &fakeTranscoder{analysis: analysis}, &fakeThumbnailer{err: errors.New("no frames")},
		&fakeArchive{}, publisher, &fakeCache{}, NewStatusTracker(), 2, time.Minute,
	)

	video := &entity.Video{ID: "vid-1", UserID: "user-1", Title: "t", OriginalFilename: "in.mp4"}
	_, err := pipeline.Prepare(context.Background(), video, "/tmp/in.mp4")

	assert.ErrorIs(t, err, errno.ErrThumbnailFailed)
	assert.Empty(t, repo.created)
}

func TestPrepareBuildsJob(t *testing.T) {
	analysis, _ := vo.NewAnalysis(1280, 720, 30, 300, 1<<20)
	repo := newFakeRepo()
	pipeline, _, _ := newTestPipeline(&fakeTranscoder{analysis: analysis}, repo)

	video := &entity.Video{ID: "vid-1", UserID: "user-1", Title: "t", OriginalFilename: "in.mp4"}
	job, err := pipeline.Prepare(context.Background(), video, "/tmp/in.mp4")
	require.NoError(t, err)

	// 720p源只产出144p到720p
	assert.Equal(t, []vo.Quality{vo.Quality144p, vo.Quality240p, vo.Quality360p, vo.Quality480p, vo.Quality720p}, job.Qualities)
	assert.Equal(t, 10, video.Duration)
	assert.Equal(t, "1280x720", video.OriginalResolution)
	assert.Equal(t, vo.StatusProcessing, video.ProcessingStatus)
	assert.NotEmpty(t, video.ThumbnailMedium)
	require.Len(t, repo.created, 1)

	// 同一视频重复登记被拒绝
	_, err = pipeline.Prepare(context.Background(), video, "/tmp/in.mp4")
	assert.ErrorIs(t, err, errno.ErrAlreadyProcessing)
}
