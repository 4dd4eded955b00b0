package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamforge/pkg/errno"
)

func TestParseRangeFull(t *testing.T) {
	// 无Range头按完整内容响应
	r, err := ParseRange("", 1000)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestParseRangeExplicit(t *testing.T) {
	r, err := ParseRange("bytes=0-499", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(0), r.Start)
	assert.Equal(t, int64(499), r.End)
	assert.Equal(t, int64(500), r.Length())
}

func TestParseRangeOpenEnded(t *testing.T) {
	r, err := ParseRange("bytes=500-", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(500), r.Start)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeSuffix(t *testing.T) {
	// 后缀区间取最后N字节
	r, err := ParseRange("bytes=-200", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(800), r.Start)
	assert.Equal(t, int64(999), r.End)

	// 后缀长度超过资源大小时整个资源
	r, err = ParseRange("bytes=-5000", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(0), r.Start)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeEndClamped(t *testing.T) {
	// 结束位置超界截断到资源末尾
	r, err := ParseRange("bytes=900-5000", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(900), r.Start)
	assert.Equal(t, int64(999), r.End)
}

func TestParseRangeStartBeyondSize(t *testing.T) {
	// 起始超出资源大小，区间不可满足
	_, err := ParseRange("bytes=1000-1500", 1000)
	assert.ErrorIs(t, err, errno.ErrRangeNotSatisfiable)

	_, err = ParseRange("bytes=1000-", 1000)
	assert.ErrorIs(t, err, errno.ErrRangeNotSatisfiable)
}

func TestParseRangeMalformed(t *testing.T) {
	// 格式不合法按完整内容响应，不报错
	for _, header := range []string{
		"bytes=abc-def",
		"bytes=500-100",
		"bytes=",
		"bytes=--",
		"octets=0-100",
		"bytes=-0",
	} {
		r, err := ParseRange(header, 1000)
		assert.NoError(t, err, "header=%q", header)
		assert.Nil(t, r, "header=%q", header)
	}
}

func TestParseRangeMultiRangeTakesFirst(t *testing.T) {
	r, err := ParseRange("bytes=0-99,200-299", 1000)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(0), r.Start)
	assert.Equal(t, int64(99), r.End)
}

func TestParseRangeBoundsWithinResource(t *testing.T) {
	// 任意合法解析结果都必须落在资源范围内
	headers := []string{"bytes=0-0", "bytes=999-999", "bytes=0-", "bytes=-1", "bytes=123-456"}
	for _, h := range headers {
		r, err := ParseRange(h, 1000)
		require.NoError(t, err, "header=%q", h)
		require.NotNil(t, r, "header=%q", h)
		assert.GreaterOrEqual(t, r.Start, int64(0))
		assert.LessOrEqual(t, r.End, int64(999))
		assert.LessOrEqual(t, r.Start, r.End)
	}
}
