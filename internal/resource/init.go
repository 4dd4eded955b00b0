package resource

import (
	"streamforge/pkg/config"
	"streamforge/pkg/kafka"
)

// MustInit 按依赖顺序初始化全部外部资源，任一失败直接panic终止启动
func MustInit() {
	DefaultMysqlResource().MustOpen()
	DefaultRedisResource().MustOpen()
	DefaultMinioResource().MustOpen()

	if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Kafka.Enabled {
		kafka.DefaultClient().MustOpen()
	}
}

// CloseAll 逆序释放全部资源
func CloseAll() {
	if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Kafka.Enabled {
		kafka.DefaultClient().Close()
	}
	DefaultMinioResource().Close()
	DefaultRedisResource().Close()
	DefaultMysqlResource().Close()
}
