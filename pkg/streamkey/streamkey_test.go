package streamkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)
	assert.Len(t, key, KeyBytes*2)

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestURLBuilding(t *testing.T) {
	assert.Equal(t, "rtmp://media.test/live/abc", RTMPURL("rtmp://media.test/live", "abc"))
	assert.Equal(t, "rtmp://media.test/live/abc", RTMPURL("rtmp://media.test/live/", "abc"))
	assert.Equal(t, "http://media.test/hls/abc.m3u8", HLSURL("http://media.test/hls", "abc"))
}
