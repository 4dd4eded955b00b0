package errno

// code=2xx 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrForbidden    = &Errno{Code: 403, Message: "Forbidden"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}

	// 业务错误码
	ErrTitleRequired       = &Errno{Code: 21001, Message: "Video title is required"}
	ErrTitleTooLong        = &Errno{Code: 21002, Message: "Video title too long"}
	ErrVideoFileRequired   = &Errno{Code: 21003, Message: "Video file is required"}
	ErrVideoFileTooLarge   = &Errno{Code: 21004, Message: "Video file too large"}
	ErrUnanalyzableVideo   = &Errno{Code: 21005, Message: "Could not analyze video file"}
	ErrThumbnailFailed     = &Errno{Code: 21006, Message: "Thumbnail generation failed"}
	ErrVideoNotFound       = &Errno{Code: 21007, Message: "Video not found"}
	ErrVideoPrivate        = &Errno{Code: 21008, Message: "Video is private"}
	ErrQualityNotFound     = &Errno{Code: 21009, Message: "Video quality not found"}
	ErrSegmentNotFound     = &Errno{Code: 21010, Message: "Video segment not found"}
	ErrThumbnailNotFound   = &Errno{Code: 21011, Message: "Thumbnail not found"}
	ErrNoQualities         = &Errno{Code: 21012, Message: "No video qualities available"}
	ErrNotOwner            = &Errno{Code: 21013, Message: "Only video creator can delete video"}
	ErrQueueFull           = &Errno{Code: 21014, Message: "Processing queue is full"}
	ErrAlreadyProcessing   = &Errno{Code: 21015, Message: "Video is already being processed"}
	ErrRangeNotSatisfiable = &Errno{Code: 21016, Message: "Requested range not satisfiable"}
)
