package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"streamforge/ddd/domain/gateway"
	"streamforge/ddd/domain/vo"
	"streamforge/pkg/config"
	"streamforge/pkg/logger"
)

// stderrTailLines ffmpeg失败时保留的stderr尾部行数
const stderrTailLines = 50

// FFmpegTranscoder 基于本地 ffmpeg/ffprobe 子进程的转码实现
type FFmpegTranscoder struct {
	cfg *config.Config
}

var _ gateway.Transcoder = (*FFmpegTranscoder)(nil)

func NewFFmpegTranscoder(cfg *config.Config) *FFmpegTranscoder {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegTranscoder{cfg: cfg}
}

// CheckBinaries 启动时验证 ffmpeg/ffprobe 可执行，缺失直接拒绝启动
func (t *FFmpegTranscoder) CheckBinaries() error {
	for _, bin := range []string{t.ffmpegBin(), t.ffprobeBin()} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required binary %q not found: %w", bin, err)
		}
	}
	return nil
}

// Analyze 用 ffprobe 读取首个视频流的分辨率/帧率/帧数
func (t *FFmpegTranscoder) Analyze(ctx context.Context, inputPath string) (*vo.Analysis, error) {
	stat, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.ffprobeBin(),
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=width,height,r_frame_rate,nb_read_frames",
		"-of", "csv=p=0",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) < 4 {
		return nil, fmt.Errorf("ffprobe output malformed: %q", strings.TrimSpace(string(out)))
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("invalid width %q", parts[0])
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("invalid height %q", parts[1])
	}
	fps := parseFrameRate(parts[2])
	frameCount, _ := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)

	return vo.NewAnalysis(width, height, fps, frameCount, stat.Size())
}

// EncodeSegments 切片转码：ffmpeg segment muxer 按固定时长切片，
// 产物先落临时目录，按文件名序号读回后整组返回。
// 末段时长由调用方传入的源时长推算，不再二次探测。
func (t *FFmpegTranscoder) EncodeSegments(ctx context.Context, inputPath string, quality vo.Quality, sourceDuration float64) ([]vo.EncodedSegment, error) {
	outDir, err := os.MkdirTemp(t.tempDir(), fmt.Sprintf("seg_%s_*", quality))
	if err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	pattern := filepath.Join(outDir, "segment_%04d.mp4")
	args := t.encodeArgs(inputPath, quality)
	args = append(args,
		"-f", "segment",
		"-segment_time", strconv.Itoa(vo.SegmentDuration),
		"-reset_timestamps", "1",
		"-segment_format", "mp4",
		"-movflags", "+faststart",
		"-y", pattern,
	)

	if err := t.runFFmpeg(ctx, args, quality); err != nil {
		return nil, err
	}

	names, err := filepath.Glob(filepath.Join(outDir, "segment_*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("glob segments: %w", err)
	}
	sort.Strings(names)

	segments := make([]vo.EncodedSegment, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read segment %s: %w", name, err)
		}
		segments = append(segments, vo.EncodedSegment{
			Index:    i,
			Data:     data,
			Size:     int64(len(data)),
			Duration: segmentDuration(i, len(names), sourceDuration),
		})
	}
	return segments, nil
}

// encodeArgs 某档位的公共编码参数
func (t *FFmpegTranscoder) encodeArgs(inputPath string, quality vo.Quality) []string {
	p := quality.Preset()
	args := []string{
		"-probesize", "5M",
		"-analyzeduration", "5M",
		"-i", inputPath,
		"-nostats",
		"-c:v", p.Codec,
		"-profile:v", p.Profile,
		"-preset", p.Preset,
		"-b:v", fmt.Sprintf("%dk", p.BitrateK),
		"-maxrate", fmt.Sprintf("%dk", p.BitrateK),
		"-bufsize", fmt.Sprintf("%dk", p.BitrateK*2),
		"-r", strconv.Itoa(p.FPS),
		// 保持宽高比降采样，补边到目标画幅
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
			p.Width, p.Height, p.Width, p.Height),
		"-c:a", "aac",
		"-b:a", "128k",
	}
	if threads := t.cfg.Transcode.FFmpeg.Threads; threads > 0 {
		args = append(args, "-threads", strconv.Itoa(threads))
	}
	return args
}

// runFFmpeg 执行 ffmpeg 并在失败时带上stderr尾部
func (t *FFmpegTranscoder) runFFmpeg(ctx context.Context, args []string, quality vo.Quality) error {
	cmd := exec.CommandContext(ctx, t.ffmpegBin(), args...)
	logger.Debugf("ffmpeg command quality=%s command=%s", quality, strings.Join(cmd.Args, " "))

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	tail := collectTail(stderr, stderrTailLines)
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg %s: %w", quality, ctx.Err())
		}
		return fmt.Errorf("ffmpeg %s failed: %w, stderr tail:\n%s", quality, err, strings.Join(tail, "\n"))
	}
	return nil
}

// collectTail 读完stderr流，保留最后n行
func collectTail(r io.Reader, n int) []string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	tail := make([]string, 0, n)
	for scanner.Scan() {
		if len(tail) >= n {
			tail = tail[1:]
		}
		tail = append(tail, scanner.Text())
	}
	return tail
}

// segmentDuration 第idx个切片的时长，末段用总时长减去前面的整切片
func segmentDuration(idx, total int, totalDuration float64) float64 {
	if idx < total-1 || totalDuration <= 0 {
		return float64(vo.SegmentDuration)
	}
	rem := totalDuration - float64(idx)*float64(vo.SegmentDuration)
	if rem <= 0 || rem > float64(vo.SegmentDuration) {
		return float64(vo.SegmentDuration)
	}
	return rem
}

// parseFrameRate 解析 ffprobe 的 "num/den" 形式帧率
func parseFrameRate(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, '/'); idx >= 0 {
		num, err1 := strconv.ParseFloat(raw[:idx], 64)
		den, err2 := strconv.ParseFloat(raw[idx+1:], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0
		}
		return num / den
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return val
}

func (t *FFmpegTranscoder) ffmpegBin() string {
	if t.cfg != nil && t.cfg.Transcode.FFmpeg.BinaryPath != "" {
		return t.cfg.Transcode.FFmpeg.BinaryPath
	}
	return "ffmpeg"
}

func (t *FFmpegTranscoder) ffprobeBin() string {
	if t.cfg != nil && t.cfg.Transcode.FFmpeg.ProbeBinaryPath != "" {
		return t.cfg.Transcode.FFmpeg.ProbeBinaryPath
	}
	return "ffprobe"
}

func (t *FFmpegTranscoder) tempDir() string {
	if t.cfg != nil && strings.TrimSpace(t.cfg.Transcode.FFmpeg.TempDir) != "" {
		return t.cfg.Transcode.FFmpeg.TempDir
	}
	return os.TempDir()
}
