package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamforge/ddd/application/dto"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/errno"
)

type fakeStreamingApp struct {
	manifest    *dto.ManifestDto
	manifestErr error

	segment    *dto.SegmentDataDto
	segmentErr error
	gotRange   string
	gotQuality vo.Quality
	gotIndex   int

	qualityInfo    *dto.QualityInfoDto
	qualityInfoErr error

	auto         *dto.AutoQualityDto
	autoErr      error
	gotBandwidth int
	gotUserAgent string
}

func (f *fakeStreamingApp) GetManifest(_ context.Context, _, _ string) (*dto.ManifestDto, error) {
	return f.manifest, f.manifestErr
}

func (f *fakeStreamingApp) GetSegment(_ context.Context, _, _ string, quality vo.Quality, index int, rangeHeader string) (*dto.SegmentDataDto, error) {
	f.gotQuality = quality
	f.gotIndex = index
	f.gotRange = rangeHeader
	return f.segment, f.segmentErr
}

func (f *fakeStreamingApp) GetQualityInfo(_ context.Context, _, _ string, _ vo.Quality) (*dto.QualityInfoDto, error) {
	return f.qualityInfo, f.qualityInfoErr
}

func (f *fakeStreamingApp) GetAutoQuality(_ context.Context, _, _ string, bandwidthKbps int, userAgent string) (*dto.AutoQualityDto, error) {
	f.gotBandwidth = bandwidthKbps
	f.gotUserAgent = userAgent
	return f.auto, f.autoErr
}

func newStreamingTestRouter(app *fakeStreamingApp) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	controller := NewStreamingController(app)

	group := engine.Group("/streaming/video")
	group.GET("/:video_id/manifest", controller.GetManifest)
	group.GET("/:video_id/segment/:quality/:segment_index", controller.GetSegment)
	group.GET("/:video_id/quality/:quality", controller.GetQualityInfo)
	group.GET("/:video_id/auto-quality", controller.GetAutoQuality)
	return engine
}

func TestGetSegmentFullContent(t *testing.T) {
	app := &fakeStreamingApp{
		segment: &dto.SegmentDataDto{Data: []byte("full-payload"), TotalSize: 12, MimeType: "video/mp4"},
	}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/segment/720p/0", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "full-payload", w.Body.String())
	assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Content-Range"))
	assert.Equal(t, vo.Quality720p, app.gotQuality)
	assert.Equal(t, 0, app.gotIndex)
}

func TestGetSegmentPartialContent(t *testing.T) {
	app := &fakeStreamingApp{
		segment: &dto.SegmentDataDto{
			Data: []byte("part"), TotalSize: 1000, MimeType: "video/mp4",
			Partial: true, RangeStart: 0, RangeEnd: 3,
		},
	}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/segment/480p/2", nil)
	req.Header.Set("Range", "bytes=0-3")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "part", w.Body.String())
	assert.Equal(t, "bytes 0-3/1000", w.Header().Get("Content-Range"))
	assert.Equal(t, "bytes=0-3", app.gotRange)
	assert.Equal(t, 2, app.gotIndex)
}

func TestGetSegmentRangeNotSatisfiable(t *testing.T) {
	// 416响应必须带上资源总大小
	app := &fakeStreamingApp{
		segment:    &dto.SegmentDataDto{TotalSize: 1000},
		segmentErr: errno.ErrRangeNotSatisfiable,
	}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/segment/720p/0", nil)
	req.Header.Set("Range", "bytes=5000-")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, w.Code)
	assert.Equal(t, "bytes */1000", w.Header().Get("Content-Range"))
}

func TestGetSegmentInvalidIndex(t *testing.T) {
	engine := newStreamingTestRouter(&fakeStreamingApp{})

	for _, path := range []string{
		"/streaming/video/vid-1/segment/720p/abc",
		"/streaming/video/vid-1/segment/720p/-1",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path=%s", path)
	}
}

func TestGetSegmentNotFound(t *testing.T) {
	app := &fakeStreamingApp{segmentErr: errno.ErrSegmentNotFound}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/segment/720p/99", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetManifestSuccess(t *testing.T) {
	app := &fakeStreamingApp{
		manifest: &dto.ManifestDto{
			VideoID:         "vid-1",
			Title:           "demo",
			Duration:        10,
			SegmentDuration: vo.SegmentDuration,
			Qualities: []dto.ManifestQualityDto{
				{Quality: "360p", Resolution: "640x360", TotalSegments: 3},
			},
		},
	}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/manifest", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"video_id":"vid-1"`)
	assert.Contains(t, w.Body.String(), `"segment_duration":4`)
}

func TestVisibilityForbiddenPerEndpoint(t *testing.T) {
	// 私有视频在清单、切片、选档三个入口都必须独立拦截
	app := &fakeStreamingApp{
		manifestErr: errno.ErrVideoPrivate,
		segmentErr:  errno.ErrVideoPrivate,
		autoErr:     errno.ErrVideoPrivate,
	}
	engine := newStreamingTestRouter(app)

	for _, path := range []string{
		"/streaming/video/vid-1/manifest",
		"/streaming/video/vid-1/segment/720p/0",
		"/streaming/video/vid-1/auto-quality",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusForbidden, w.Code, "path=%s", path)
	}
}

func TestGetManifestNoQualities(t *testing.T) {
	app := &fakeStreamingApp{manifestErr: errno.ErrNoQualities}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/manifest", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAutoQualityPassesContext(t *testing.T) {
	app := &fakeStreamingApp{
		auto: &dto.AutoQualityDto{VideoID: "vid-1", SelectedQuality: "720p"},
	}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/auto-quality?bandwidth=3000", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3000, app.gotBandwidth)
	assert.Equal(t, "Mozilla/5.0 (iPhone)", app.gotUserAgent)
	assert.Contains(t, w.Body.String(), `"selected_quality":"720p"`)
}

func TestGetQualityInfoNotFound(t *testing.T) {
	app := &fakeStreamingApp{qualityInfoErr: errno.ErrQualityNotFound}
	engine := newStreamingTestRouter(app)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/streaming/video/vid-1/quality/2160p", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
