package service

import (
	"strings"

	"streamforge/ddd/domain/vo"
)

// mobilePreferredOrder 移动端偏好的档位顺序，省流量优先
var mobilePreferredOrder = []vo.Quality{
	vo.Quality480p, vo.Quality360p, vo.Quality240p, vo.Quality144p,
}

// desktopPreferredOrder 桌面端偏好的档位顺序
var desktopPreferredOrder = []vo.Quality{
	vo.Quality720p, vo.Quality1080p, vo.Quality480p, vo.Quality360p,
}

var mobileUAMarkers = []string{"mobile", "android", "iphone", "ipad"}

// IsMobileUserAgent 按UA关键字粗判移动端
func IsMobileUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range mobileUAMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// DetectOptimalQuality 从已就绪档位中选择最适合请求方的一档。
// 带宽估计值优先于UA偏好；目标档位未就绪时降到不高于目标的最近可用档位，
// 全部高于目标时取可用里清晰度最低的一档。available 不能为空。
func DetectOptimalQuality(available []vo.Quality, bandwidthKbps int, userAgent string) vo.Quality {
	if len(available) == 0 {
		return vo.FallbackQuality
	}

	if bandwidthKbps > 0 {
		target := vo.QualityForBandwidth(bandwidthKbps)
		if q, ok := bestAtOrBelow(available, target); ok {
			return q
		}
		return lowestQuality(available)
	}

	preferred := desktopPreferredOrder
	if IsMobileUserAgent(userAgent) {
		preferred = mobilePreferredOrder
	}
	availSet := make(map[vo.Quality]bool, len(available))
	for _, q := range available {
		availSet[q] = true
	}
	for _, q := range preferred {
		if availSet[q] {
			return q
		}
	}
	return lowestQuality(available)
}

// bestAtOrBelow 取不高于目标清晰度的最高可用档位
func bestAtOrBelow(available []vo.Quality, target vo.Quality) (vo.Quality, bool) {
	var best vo.Quality
	found := false
	for _, q := range available {
		if q.Priority() < target.Priority() {
			continue
		}
		if !found || q.Priority() < best.Priority() {
			best = q
			found = true
		}
	}
	return best, found
}

func lowestQuality(available []vo.Quality) vo.Quality {
	lowest := available[0]
	for _, q := range available[1:] {
		if q.Priority() > lowest.Priority() {
			lowest = q
		}
	}
	return lowest
}
