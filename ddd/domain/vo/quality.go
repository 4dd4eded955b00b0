package vo

import "fmt"

// Quality 清晰度档位
type Quality string

const (
	Quality144p  Quality = "144p"
	Quality240p  Quality = "240p"
	Quality360p  Quality = "360p"
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality1440p Quality = "1440p"
	Quality2160p Quality = "2160p"
)

// SegmentDuration 自适应流切片时长（秒）
const SegmentDuration = 4

// FallbackQuality 源分辨率低于最小档位时的兜底档位
const FallbackQuality = Quality360p

// QualityPreset 档位编码参数
type QualityPreset struct {
	Width    int
	Height   int
	BitrateK int // kbps
	FPS      int
	Codec    string
	Profile  string
	Preset   string
}

// QualityLadder 档位阶梯，低清晰度在前。
// 管线按此顺序启动转码，低档位先就绪，用户可以更快拿到首个可播放版本。
var QualityLadder = []Quality{
	Quality144p, Quality240p, Quality360p, Quality480p,
	Quality720p, Quality1080p, Quality1440p, Quality2160p,
}

// qualityPresets 各档位的转码参数
var qualityPresets = map[Quality]QualityPreset{
	Quality144p:  {Width: 256, Height: 144, BitrateK: 100, FPS: 15, Codec: "libx264", Profile: "baseline", Preset: "fast"},
	Quality240p:  {Width: 426, Height: 240, BitrateK: 300, FPS: 24, Codec: "libx264", Profile: "baseline", Preset: "fast"},
	Quality360p:  {Width: 640, Height: 360, BitrateK: 700, FPS: 30, Codec: "libx264", Profile: "main", Preset: "medium"},
	Quality480p:  {Width: 854, Height: 480, BitrateK: 1500, FPS: 30, Codec: "libx264", Profile: "main", Preset: "medium"},
	Quality720p:  {Width: 1280, Height: 720, BitrateK: 3000, FPS: 30, Codec: "libx264", Profile: "high", Preset: "slow"},
	Quality1080p: {Width: 1920, Height: 1080, BitrateK: 6000, FPS: 30, Codec: "libx264", Profile: "high", Preset: "slow"},
	Quality1440p: {Width: 2560, Height: 1440, BitrateK: 12000, FPS: 30, Codec: "libx264", Profile: "high", Preset: "slower"},
	Quality2160p: {Width: 3840, Height: 2160, BitrateK: 25000, FPS: 30, Codec: "libx264", Profile: "high", Preset: "slower"},
}

// Preset 获取档位编码参数
func (q Quality) Preset() QualityPreset {
	return qualityPresets[q]
}

// IsValid 检查档位是否有效
func (q Quality) IsValid() bool {
	_, ok := qualityPresets[q]
	return ok
}

// String 返回档位字符串
func (q Quality) String() string {
	return string(q)
}

// Resolution 返回 "WxH" 形式的分辨率
func (q Quality) Resolution() string {
	p := qualityPresets[q]
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// PixelCount 档位像素总数
func (q Quality) PixelCount() int {
	p := qualityPresets[q]
	return p.Width * p.Height
}

// Priority 档位优先级，数值越小清晰度越高
func (q Quality) Priority() int {
	for i, ql := range QualityLadder {
		if ql == q {
			return len(QualityLadder) - 1 - i
		}
	}
	return 999
}

// OptimalQualities 根据源分辨率选择目标档位，仅降采样不升采样。
// 源低于最小档位时返回兜底档位，保证任何输入至少有一个可播放版本。
func OptimalQualities(width, height int) []Quality {
	sourcePixels := width * height
	qualities := make([]Quality, 0, len(QualityLadder))
	for _, q := range QualityLadder {
		if q.PixelCount() <= sourcePixels {
			qualities = append(qualities, q)
		}
	}
	if len(qualities) == 0 {
		qualities = []Quality{FallbackQuality}
	}
	return qualities
}

// bandwidthBrackets kbps阈值到目标档位的映射，阈值降序排列
var bandwidthBrackets = []struct {
	MinKbps int
	Quality Quality
}{
	{25000, Quality2160p},
	{12000, Quality1440p},
	{6000, Quality1080p},
	{3000, Quality720p},
	{1500, Quality480p},
	{700, Quality360p},
	{300, Quality240p},
	{0, Quality144p},
}

// QualityForBandwidth 根据带宽估计值（kbps）选择目标档位
func QualityForBandwidth(kbps int) Quality {
	for _, b := range bandwidthBrackets {
		if kbps >= b.MinKbps {
			return b.Quality
		}
	}
	return Quality144p
}
