// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

// StreamKind 描述一条输入流承载的媒体类型
type StreamKind uint8

const (
	StreamKindVideo StreamKind = iota + 1
	StreamKindAudio
	StreamKindText
)

func (k StreamKind) ReadableString() string {
	switch k {
	case StreamKindVideo:
		return "video"
	case StreamKindAudio:
		return "audio"
	case StreamKindText:
		return "text"
	}
	return "unknown"
}

// VideoCodec 视频编码格式，目前只支持H264
type VideoCodec uint8

const (
	VideoCodecUnknown VideoCodec = iota
	VideoCodecH264
	VideoCodecVp9 // 不支持，仅用于在Initialize阶段识别并拒绝
)

// AudioCodec 音频编码格式，目前只支持AAC
type AudioCodec uint8

const (
	AudioCodecUnknown AudioCodec = iota
	AudioCodecAac
	AudioCodecOpus // 不支持，仅用于在Initialize阶段识别并拒绝
)

const (
	// StreamIdH264 H264流的PES stream_id，固定值
	StreamIdH264 uint8 = 0xe0
	// StreamIdAac AAC流的PES stream_id，固定值
	StreamIdAac uint8 = 0xc0

	// TsTimescale mpeg-ts系统时钟的频率，固定90kHz
	TsTimescale uint32 = 90000
)

// StreamInfo 输入流的静态描述信息，在Initialize时一次性传入，生命周期内不再改变
//
// 注意，ExtraData的格式取决于Kind/VideoCodec/AudioCodec：
//   视频：AVCDecoderConfigurationRecord（ISO 14496-15）
//   音频：AudioSpecificConfig（ISO 14496-3）
type StreamInfo struct {
	Kind StreamKind

	VideoCodec VideoCodec
	AudioCodec AudioCodec

	// Timescale 输入样本的pts/dts所使用的时间刻度（不一定是90kHz），用于向TsTimescale换算
	Timescale uint32

	// ExtraData 编解码器的带外配置数据
	ExtraData []byte

	// NaluLengthSize 视频样本中nalu长度前缀的字节数，1/2/4，仅Kind为video时有意义
	NaluLengthSize int
}

// MediaSample 一个待处理的媒体帧
//
// 视频样本格式为AVCC：一个或多个[4字节长度(可配置)][nalu]
// 音频样本格式为裸raw aac frame（不带adts头，不带asc）
//
// 注意，内部不持有Payload的内存块的所有权，调用方需保证在调用返回前Payload不被复用
type MediaSample struct {
	Payload    []byte
	Pts        uint64
	Dts        uint64
	IsKeyFrame bool
}

// EncryptionKey SAMPLE-AES使用的128位密钥与初始化向量
type EncryptionKey struct {
	Key [16]byte
	Iv  [16]byte
}

// PesPacket 生成器产出的一枚PES包，负载已经是可以直接写入mpeg-ts payload的格式
// （视频：Annex-B字节流；音频：adts头+raw frame）
type PesPacket struct {
	StreamId byte
	Pts      uint64
	Dts      uint64
	Data     []byte

	IsKeyFrame bool
}
