package gateway

import "context"

// SourceArchive 源片归档存储（对象存储）。
// 归档只保留原始上传件，切片数据走数据库。
type SourceArchive interface {
	// ArchiveOriginal 上传原始文件，返回对象key
	ArchiveOriginal(ctx context.Context, localPath, videoID, contentType string) (string, error)

	// RemoveOriginal 删除视频对应的归档对象
	RemoveOriginal(ctx context.Context, videoID string) error
}
