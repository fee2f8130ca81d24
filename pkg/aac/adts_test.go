package aac_test

import (
	"testing"

	"github.com/novoreel/shaka-packager/pkg/aac"
	"github.com/q191201771/naza/pkg/assert"
)

// kAudioExtraData: AudioSpecificConfig，aot=2(AAC LC) samplingFreqIndex=4(44100) channelConfig=2
var kAudioExtraData = []byte{0x12, 0x10}

func TestAdtsHeaderBuilder_AddAdtsHeader(t *testing.T) {
	b, err := aac.NewAdtsHeaderBuilder(kAudioExtraData)
	assert.Equal(t, nil, err)

	frame := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	out, err := b.AddAdtsHeader(frame)
	assert.Equal(t, nil, err)
	assert.Equal(t, aac.AdtsHeaderLength+len(frame), len(out))

	// adts同步字，固定12个1
	assert.Equal(t, byte(0xFF), out[0])
	assert.Equal(t, byte(0xF0), out[1]&0xF0)

	// 原始frame内容在adts头之后保持不变
	assert.Equal(t, frame, out[aac.AdtsHeaderLength:])
}

func TestAdtsHeaderBuilder_RejectsUnsupportedSamplingFrequency(t *testing.T) {
	// aot=2, samplingFreqIndex=11(11025，不在GetSamplingFrequency支持范围内)
	bad := []byte{0x15, 0x90}
	_, err := aac.NewAdtsHeaderBuilder(bad)
	assert.Equal(t, true, err != nil)
}
