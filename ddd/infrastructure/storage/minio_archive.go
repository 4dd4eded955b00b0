package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"

	"streamforge/ddd/domain/gateway"
	"streamforge/internal/resource"
	"streamforge/pkg/logger"
)

// originalPrefix 原始上传件在桶内的key前缀
const originalPrefix = "originals/"

// MinioArchive 基于MinIO的源片归档实现
type MinioArchive struct {
	minioResource *resource.MinioResource
}

var _ gateway.SourceArchive = (*MinioArchive)(nil)

// NewMinioArchive 创建MinIO归档实例
func NewMinioArchive(minioResource *resource.MinioResource) *MinioArchive {
	return &MinioArchive{minioResource: minioResource}
}

// ArchiveOriginal 上传原始文件，返回对象key
func (s *MinioArchive) ArchiveOriginal(ctx context.Context, localPath, videoID, contentType string) (string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open original file for archive", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("open original file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("get file info failed: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectKey := originalPrefix + videoID
	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to archive original to MinIO", map[string]interface{}{
			"video_id":   videoID,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("archive original to minio failed: %w", err)
	}

	logger.Info("Original archived successfully", map[string]interface{}{
		"video_id":   videoID,
		"object_key": objectKey,
		"size":       fileInfo.Size(),
	})
	return objectKey, nil
}

// RemoveOriginal 删除视频对应的归档对象
func (s *MinioArchive) RemoveOriginal(ctx context.Context, videoID string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	objectKey := originalPrefix + videoID
	if err := client.RemoveObject(ctx, bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		logger.Error("Failed to remove archived original", map[string]interface{}{
			"video_id":   videoID,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("remove archived original failed: %w", err)
	}
	return nil
}
