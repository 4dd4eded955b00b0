package service

import (
	"strconv"
	"strings"

	"streamforge/pkg/errno"
)

// ByteRange 解析后的字节区间，闭区间 [Start, End]
type ByteRange struct {
	Start int64
	End   int64
}

// Length 区间字节数
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange 解析 "bytes=start-end" 形式的 Range 头。
// 返回 nil 且无错误表示按完整内容响应（无Range头或格式不合法时的宽松处理）；
// 起始位置超出资源大小返回 ErrRangeNotSatisfiable，调用方应答 416。
// 结束位置超界或缺省时截断到资源末尾。
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" || size <= 0 {
		return nil, nil
	}
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil, nil
	}
	spec := strings.TrimPrefix(header, prefix)
	// 多区间请求不支持，取第一个区间
	if idx := strings.IndexByte(spec, ','); idx >= 0 {
		spec = spec[:idx]
	}
	spec = strings.TrimSpace(spec)

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return nil, nil
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	// 后缀区间 "bytes=-N"：最后N个字节
	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return nil, nil
		}
		if n > size {
			n = size
		}
		return &ByteRange{Start: size - n, End: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}
	if start >= size {
		return nil, errno.ErrRangeNotSatisfiable
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return nil, nil
		}
		if end >= size {
			end = size - 1
		}
	}
	return &ByteRange{Start: start, End: end}, nil
}
