package pes_test

import (
	"testing"

	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/novoreel/shaka-packager/pkg/pes"
	"github.com/q191201771/naza/pkg/assert"
)

var kVideoExtraData = []byte{
	0x01,
	0x00,
	0x00,
	0x00,
	0xFF,       // length_size_minus_one == 3
	0xE1,       // 1 sps
	0x00, 0x1D, // sps length == 29
	0x67, 0x64, 0x00, 0x1E, 0xAC, 0xD9, 0x40, 0xB4,
	0x2F, 0xF9, 0x7F, 0xF0, 0x00, 0x80, 0x00, 0x91,
	0x00, 0x00, 0x03, 0x03, 0xE9, 0x00, 0x00, 0xEA,
	0x60, 0x0F, 0x16, 0x2D, 0x96,
	0x01,       // 1 pps
	0x00, 0x0A, // pps length == 10
	0x68, 0xFE, 0xFD, 0xFC, 0xFB, 0x11, 0x12, 0x13, 0x14, 0x15,
}

var kAudioExtraData = []byte{0x12, 0x10}

func videoInfo(timescale uint32) *base.StreamInfo {
	return &base.StreamInfo{
		Kind:           base.StreamKindVideo,
		VideoCodec:     base.VideoCodecH264,
		Timescale:      timescale,
		ExtraData:      kVideoExtraData,
		NaluLengthSize: 1,
	}
}

func audioInfo(timescale uint32) *base.StreamInfo {
	return &base.StreamInfo{
		Kind:       base.StreamKindAudio,
		AudioCodec: base.AudioCodecAac,
		Timescale:  timescale,
		ExtraData:  kAudioExtraData,
	}
}

func TestGenerator_InitializeVideo(t *testing.T) {
	g := pes.NewGenerator(nil)
	err := g.Initialize(videoInfo(base.TsTimescale), nil)
	assert.Equal(t, nil, err)
}

func TestGenerator_InitializeVideoNonH264(t *testing.T) {
	g := pes.NewGenerator(nil)
	info := videoInfo(base.TsTimescale)
	info.VideoCodec = base.VideoCodecVp9
	err := g.Initialize(info, nil)
	assert.Equal(t, true, err != nil)
}

func TestGenerator_InitializeAudio(t *testing.T) {
	g := pes.NewGenerator(nil)
	err := g.Initialize(nil, audioInfo(base.TsTimescale))
	assert.Equal(t, nil, err)
}

func TestGenerator_InitializeAudioNonAac(t *testing.T) {
	g := pes.NewGenerator(nil)
	info := audioInfo(base.TsTimescale)
	info.AudioCodec = base.AudioCodecOpus
	err := g.Initialize(nil, info)
	assert.Equal(t, true, err != nil)
}

func TestGenerator_InitializeRejectsBothNil(t *testing.T) {
	g := pes.NewGenerator(nil)
	err := g.Initialize(nil, nil)
	assert.Equal(t, true, err != nil)
}

func TestGenerator_InitializeTwiceRejected(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))
	err := g.Initialize(videoInfo(base.TsTimescale), nil)
	assert.Equal(t, true, err != nil)
}

func TestGenerator_PushSampleBeforeInitializeRejected(t *testing.T) {
	g := pes.NewGenerator(nil)
	err := g.PushSample(base.StreamKindVideo, base.MediaSample{})
	assert.Equal(t, true, err != nil)
}

func TestGenerator_AddVideoSample(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))
	assert.Equal(t, 0, g.NumberOfReadyPesPackets())

	slice := []byte{0x61, 0xBB, 0xCC, 0xDD}
	payload := append([]byte{byte(len(slice))}, slice...)

	err := g.PushSample(base.StreamKindVideo, base.MediaSample{
		Payload:    payload,
		Pts:        12345,
		Dts:        12300,
		IsKeyFrame: true,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, g.NumberOfReadyPesPackets())

	pkt, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
	assert.Equal(t, base.StreamIdH264, pkt.StreamId)
	// timescale与mpeg-ts时钟一致(90000)，rescale是无操作
	assert.Equal(t, uint64(12345), pkt.Pts)
	assert.Equal(t, uint64(12300), pkt.Dts)
	assert.Equal(t, true, pkt.IsKeyFrame)
}

func TestGenerator_AddAudioSample(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(nil, audioInfo(base.TsTimescale)))

	err := g.PushSample(base.StreamKindAudio, base.MediaSample{
		Payload: []byte{0x01, 0x02, 0x03, 0x04, 0x05},
		Pts:     9000,
		Dts:     9000,
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, g.NumberOfReadyPesPackets())

	pkt, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
	assert.Equal(t, base.StreamIdAac, pkt.StreamId)
	assert.Equal(t, uint64(9000), pkt.Pts)
	assert.Equal(t, uint64(9000), pkt.Dts)
}

func TestGenerator_AddAudioSample_DtsAndIsKeyFrameNotDiscarded(t *testing.T) {
	const kTestTimescale = 1000
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(nil, audioInfo(kTestTimescale)))

	const kPts = 5000
	const kDts = 4000
	err := g.PushSample(base.StreamKindAudio, base.MediaSample{
		Payload:    []byte{0x01, 0x02, 0x03, 0x04, 0x05},
		Pts:        kPts,
		Dts:        kDts,
		IsKeyFrame: true,
	})
	assert.Equal(t, nil, err)

	pkt, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
	// Dts独立于Pts被换算到90kHz时钟，而不是被Pts覆盖
	assert.Equal(t, uint64(kPts*90), pkt.Pts)
	assert.Equal(t, uint64(kDts*90), pkt.Dts)
	// IsKeyFrame原样透传，而不是被硬编码成true
	assert.Equal(t, true, pkt.IsKeyFrame)
}

func TestGenerator_AddAudioSample_IsKeyFrameFalsePassedThrough(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(nil, audioInfo(base.TsTimescale)))

	err := g.PushSample(base.StreamKindAudio, base.MediaSample{
		Payload:    []byte{0x01, 0x02, 0x03, 0x04, 0x05},
		Pts:        9000,
		Dts:        9000,
		IsKeyFrame: false,
	})
	assert.Equal(t, nil, err)

	pkt, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
	// 之前的实现把音频包的IsKeyFrame硬编码成true，这里验证false也能原样透传
	assert.Equal(t, false, pkt.IsKeyFrame)
}

func TestGenerator_GetNextPesPacketEmpty(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))
	_, ok := g.GetNextPesPacket()
	assert.Equal(t, false, ok)
}

func TestGenerator_TimeStampScaling(t *testing.T) {
	const kTestTimescale = 1000
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(kTestTimescale), nil))

	slice := []byte{0x61, 0xBB, 0xCC, 0xDD}
	payload := append([]byte{byte(len(slice))}, slice...)

	const kPts = 5000
	const kDts = 4000
	err := g.PushSample(base.StreamKindVideo, base.MediaSample{
		Payload:    payload,
		Pts:        kPts,
		Dts:        kDts,
		IsKeyFrame: true,
	})
	assert.Equal(t, nil, err)

	pkt, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
	assert.Equal(t, uint64(kPts*90), pkt.Pts)
	assert.Equal(t, uint64(kDts*90), pkt.Dts)
}

func TestGenerator_SetEncryptionKeyShortNaluStaysClear(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))

	var key base.EncryptionKey
	assert.Equal(t, nil, g.SetEncryptionKey(&key))

	slice := []byte{0x61, 0xBB, 0xCC, 0xDD}
	payload := append([]byte{byte(len(slice))}, slice...)
	err := g.PushSample(base.StreamKindVideo, base.MediaSample{
		Payload:    payload,
		IsKeyFrame: true,
	})
	assert.Equal(t, nil, err)

	pkt, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
	// sps/pps之后紧跟的nalu(0x61 0xBB 0xCC 0xDD)短于加密所需的最小长度，保持明文
	assert.Equal(t, byte(0x61), pkt.Data[len(pkt.Data)-4])
}

func TestGenerator_CloseThenPushSampleRejected(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))
	g.Close()

	err := g.PushSample(base.StreamKindVideo, base.MediaSample{})
	assert.Equal(t, true, err != nil)
}

func TestGenerator_CloseThenGetNextPesPacketStillWorks(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))

	slice := []byte{0x61, 0xBB, 0xCC, 0xDD}
	payload := append([]byte{byte(len(slice))}, slice...)
	assert.Equal(t, nil, g.PushSample(base.StreamKindVideo, base.MediaSample{
		Payload:    payload,
		IsKeyFrame: true,
	}))

	g.Close()

	_, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
}

func TestGenerator_FlushThenPushSampleRejected(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))
	assert.Equal(t, nil, g.Flush())

	err := g.PushSample(base.StreamKindVideo, base.MediaSample{})
	assert.Equal(t, true, err != nil)
}

func TestGenerator_FlushThenGetNextPesPacketStillWorks(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))

	slice := []byte{0x61, 0xBB, 0xCC, 0xDD}
	payload := append([]byte{byte(len(slice))}, slice...)
	assert.Equal(t, nil, g.PushSample(base.StreamKindVideo, base.MediaSample{
		Payload:    payload,
		IsKeyFrame: true,
	}))

	assert.Equal(t, nil, g.Flush())

	_, ok := g.GetNextPesPacket()
	assert.Equal(t, true, ok)
}

func TestGenerator_FlushIsIdempotent(t *testing.T) {
	g := pes.NewGenerator(nil)
	assert.Equal(t, nil, g.Initialize(videoInfo(base.TsTimescale), nil))
	assert.Equal(t, nil, g.Flush())
	// 已经是Closed状态时再次Flush应该直接返回nil，而不是ErrInvariantViolation
	assert.Equal(t, nil, g.Flush())
}

func TestGenerator_FlushBeforeInitializeRejected(t *testing.T) {
	g := pes.NewGenerator(nil)
	err := g.Flush()
	assert.Equal(t, true, err != nil)
}
