package vo

// EncodedSegment 转码产出的单个切片
type EncodedSegment struct {
	Index    int
	Data     []byte
	Size     int64
	Duration float64 // 秒，末段可能短于标称切片时长
}

// Thumbnail 单个尺寸的缩略图产出
type Thumbnail struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// ThumbnailSize 缩略图目标尺寸
type ThumbnailSize struct {
	Width  int
	Height int
}

// DefaultThumbnailSizes 标准三档缩略图尺寸，顺序即 small/medium/large
var DefaultThumbnailSizes = []ThumbnailSize{
	{Width: 320, Height: 180},
	{Width: 480, Height: 270},
	{Width: 640, Height: 360},
}

// TierResult 单个档位的处理结果（成功或失败的带标签结果）
type TierResult struct {
	Quality    Quality
	Segments   int
	TotalBytes int64
	Err        error
}

// Succeeded 档位是否成功提交
func (r TierResult) Succeeded() bool {
	return r.Err == nil
}
