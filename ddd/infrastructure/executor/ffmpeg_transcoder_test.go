package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentDuration(t *testing.T) {
	// 10秒源切成3片：4 + 4 + 2
	assert.Equal(t, 4.0, segmentDuration(0, 3, 10.0))
	assert.Equal(t, 4.0, segmentDuration(1, 3, 10.0))
	assert.InDelta(t, 2.0, segmentDuration(2, 3, 10.0), 1e-9)

	// 整切片时长的源，末段仍是标称时长
	assert.Equal(t, 4.0, segmentDuration(1, 2, 8.0))

	// 源时长未知或与切片数不符时退回标称时长
	assert.Equal(t, 4.0, segmentDuration(2, 3, 0))
	assert.Equal(t, 4.0, segmentDuration(2, 3, -1))
	assert.Equal(t, 4.0, segmentDuration(1, 2, 30.0))
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.01)
	assert.Equal(t, 25.0, parseFrameRate("25"))
	assert.Equal(t, 30.0, parseFrameRate(" 30/1 "))
	assert.Equal(t, 0.0, parseFrameRate("0/0"))
	assert.Equal(t, 0.0, parseFrameRate("garbage"))
}
