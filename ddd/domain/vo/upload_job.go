package vo

// UploadJob 一次上传的处理作业。
// 分析和缩略图在入库前同步完成，作业入队后由管线工作器处理各档位。
type UploadJob struct {
	VideoID   string
	UserID    string
	InputPath string // 暂存的源文件路径，档位全部处理完后清理
	Filename  string
	Qualities []Quality
	Analysis  *Analysis
}
