package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"
)

// StartProfiling 启动pyroscope持续性能剖析。
// 未配置 PYROSCOPE_SERVER_ADDRESS 时跳过，剖析失败不阻塞服务启动。
func StartProfiling(appName string) {
	serverAddr := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if serverAddr == "" {
		return
	}

	_, _ = pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   serverAddr,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
}
