package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"streamforge/ddd/domain/vo"
)

func TestDetectOptimalQualityByBandwidth(t *testing.T) {
	available := []vo.Quality{vo.Quality360p, vo.Quality720p, vo.Quality1080p}

	// 目标2160p未就绪，降到最近可用
	assert.Equal(t, vo.Quality1080p, DetectOptimalQuality(available, 30000, ""))
	assert.Equal(t, vo.Quality1080p, DetectOptimalQuality(available, 6000, ""))
	assert.Equal(t, vo.Quality720p, DetectOptimalQuality(available, 3000, ""))
	// 目标480p未就绪，回落到不高于480p的最高可用档位360p
	assert.Equal(t, vo.Quality360p, DetectOptimalQuality(available, 1500, ""))
	assert.Equal(t, vo.Quality360p, DetectOptimalQuality(available, 700, ""))
	// 目标低于全部可用档位时取可用里清晰度最低的
	assert.Equal(t, vo.Quality360p, DetectOptimalQuality(available, 100, ""))
}

func TestDetectOptimalQualityMonotonic(t *testing.T) {
	// 带宽单调增加时所选档位清晰度单调不降
	available := []vo.Quality{vo.Quality144p, vo.Quality240p, vo.Quality360p, vo.Quality480p, vo.Quality720p, vo.Quality1080p}

	prev := DetectOptimalQuality(available, 100, "")
	for kbps := 200; kbps <= 40000; kbps += 100 {
		cur := DetectOptimalQuality(available, kbps, "")
		assert.LessOrEqual(t, cur.Priority(), prev.Priority(), "bandwidth %d picked lower quality than %d", kbps, kbps-100)
		prev = cur
	}
}

func TestDetectOptimalQualityByUserAgent(t *testing.T) {
	available := []vo.Quality{vo.Quality360p, vo.Quality480p, vo.Quality720p, vo.Quality1080p}

	mobileUA := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	desktopUA := "Mozilla/5.0 (X11; Linux x86_64) Chrome/126.0"

	assert.Equal(t, vo.Quality480p, DetectOptimalQuality(available, 0, mobileUA))
	assert.Equal(t, vo.Quality720p, DetectOptimalQuality(available, 0, desktopUA))
}

func TestDetectOptimalQualityPreferredMissing(t *testing.T) {
	// 偏好列表全部未就绪时取可用里清晰度最低的
	available := []vo.Quality{vo.Quality1440p, vo.Quality2160p}
	assert.Equal(t, vo.Quality1440p, DetectOptimalQuality(available, 0, "some-tv-box"))
}

func TestDetectOptimalQualityEmptyAvailable(t *testing.T) {
	assert.Equal(t, vo.FallbackQuality, DetectOptimalQuality(nil, 5000, ""))
}

func TestIsMobileUserAgent(t *testing.T) {
	assert.True(t, IsMobileUserAgent("Mozilla/5.0 (Linux; Android 14)"))
	assert.True(t, IsMobileUserAgent("Mozilla/5.0 (iPad; CPU OS 16_0)"))
	assert.False(t, IsMobileUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64)"))
	assert.False(t, IsMobileUserAgent(""))
}
