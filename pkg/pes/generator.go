// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package pes 将已解封装的音视频样本转换为可以直接装入mpeg-ts payload的PES负载，
// 并在配置了密钥的情况下按SAMPLE-AES规则加密
package pes

import (
	"github.com/novoreel/shaka-packager/pkg/aac"
	"github.com/novoreel/shaka-packager/pkg/avc"
	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/novoreel/shaka-packager/pkg/sampleaes"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// state Generator的内部状态机
//
// Uninitialized --Initialize--> Ready --Close--> Closed
type state uint8

const (
	stateUninitialized state = iota
	stateReady
	stateClosed
)

// GeneratorConfig Generator的可配置项
type GeneratorConfig struct {
	// InitialPayloadBufferSize 用于预分配ready队列：队列初始容量为该值/256个PES包
	InitialPayloadBufferSize int `json:"initial_payload_buffer_size"`
}

func defaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{InitialPayloadBufferSize: 4096}
}

// Generator 将视频/音频样本流式转换为PES包队列
//
// 生命周期：Initialize之后才能调用PushSample，Close之后不应再调用除GetNextPesPacket/
// NumberOfReadyPesPackets以外的方法。非线程安全，调用方需自行保证同一个实例不被并发访问
type Generator struct {
	UniqueKey string

	config GeneratorConfig
	state  state

	videoInfo *base.StreamInfo
	audioInfo *base.StreamInfo

	converter    *avc.NalByteStreamConverter
	adtsBuilder  *aac.AdtsHeaderBuilder
	encryptor    *sampleaes.SampleEncryptor
	encryptKey   *base.EncryptionKey
	videoFramer  *Framer
	audioFramer  *Framer

	ready []base.PesPacket
}

// NewGenerator
//
// @param config: 传入nil使用默认配置
func NewGenerator(config *GeneratorConfig) *Generator {
	uk := base.GenUkPesPacketGenerator()
	base.Log.Infof("[%s] lifecycle new pes generator.", uk)

	cfg := defaultGeneratorConfig()
	if config != nil {
		cfg = *config
	}

	return &Generator{
		UniqueKey: uk,
		config:    cfg,
		state:     stateUninitialized,
		encryptor: sampleaes.NewSampleEncryptor(),
		ready:     make([]base.PesPacket, 0, cfg.InitialPayloadBufferSize/256),
	}
}

// Initialize 根据输入流的静态描述信息完成一次性初始化，之后才能调用PushSample
//
// videoInfo/audioInfo可以其中一个为nil（比如纯音频或纯视频），但不能都为nil
func (g *Generator) Initialize(videoInfo, audioInfo *base.StreamInfo) error {
	if g.state != stateUninitialized {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}
	if videoInfo == nil && audioInfo == nil {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}

	if videoInfo != nil {
		if videoInfo.Kind != base.StreamKindVideo || videoInfo.VideoCodec != base.VideoCodecH264 {
			return nazaerrors.Wrap(base.ErrUnsupportedCodec)
		}
		converter, err := avc.NewNalByteStreamConverter(videoInfo.ExtraData, videoInfo.NaluLengthSize)
		if err != nil {
			return nazaerrors.Wrap(err)
		}
		g.converter = converter
		g.videoInfo = videoInfo
		g.videoFramer = NewFramer(base.StreamIdH264, videoInfo.Timescale)
	}

	if audioInfo != nil {
		if audioInfo.Kind != base.StreamKindAudio || audioInfo.AudioCodec != base.AudioCodecAac {
			return nazaerrors.Wrap(base.ErrUnsupportedCodec)
		}
		adtsBuilder, err := aac.NewAdtsHeaderBuilder(audioInfo.ExtraData)
		if err != nil {
			return nazaerrors.Wrap(err)
		}
		g.adtsBuilder = adtsBuilder
		g.audioInfo = audioInfo
		g.audioFramer = NewFramer(base.StreamIdAac, audioInfo.Timescale)
	}

	g.state = stateReady
	base.Log.Infof("[%s] pes generator initialized.", g.UniqueKey)
	return nil
}

// SetEncryptionKey 设置SAMPLE-AES加密密钥，传入nil表示不加密
//
// 可以在Ready状态下随时调用，改变之后PushSample的加密行为（已经进入ready队列的PES包不受影响）
func (g *Generator) SetEncryptionKey(key *base.EncryptionKey) error {
	if g.state != stateReady {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}
	g.encryptKey = key
	return nil
}

// PushSample 喂入一个媒体样本，转换结果会追加到ready队列中
func (g *Generator) PushSample(kind base.StreamKind, sample base.MediaSample) error {
	if g.state != stateReady {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}

	switch kind {
	case base.StreamKindVideo:
		return g.pushVideoSample(sample)
	case base.StreamKindAudio:
		return g.pushAudioSample(sample)
	default:
		return nazaerrors.Wrap(base.ErrUnsupportedCodec)
	}
}

func (g *Generator) pushVideoSample(sample base.MediaSample) error {
	if g.converter == nil {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}

	byteStream, err := g.converter.ConvertToByteStream(sample.Payload, sample.IsKeyFrame)
	if err != nil {
		return nazaerrors.Wrap(err)
	}

	if g.encryptKey != nil {
		byteStream, err = g.encryptor.EncryptH264Sample(byteStream, *g.encryptKey)
		if err != nil {
			return nazaerrors.Wrap(err)
		}
	}

	pts, err := rescale(sample.Pts, g.videoInfo.Timescale)
	if err != nil {
		return nazaerrors.Wrap(err)
	}
	dts, err := rescale(sample.Dts, g.videoInfo.Timescale)
	if err != nil {
		return nazaerrors.Wrap(err)
	}

	pkt := g.videoFramer.Frame(byteStream, pts, dts, sample.IsKeyFrame)
	g.ready = append(g.ready, pkt)
	return nil
}

func (g *Generator) pushAudioSample(sample base.MediaSample) error {
	if g.adtsBuilder == nil {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}

	withAdts, err := g.adtsBuilder.AddAdtsHeader(sample.Payload)
	if err != nil {
		return nazaerrors.Wrap(err)
	}

	if g.encryptKey != nil {
		withAdts, err = g.encryptor.EncryptAacSample(withAdts, *g.encryptKey)
		if err != nil {
			return nazaerrors.Wrap(err)
		}
	}

	pts, err := rescale(sample.Pts, g.audioInfo.Timescale)
	if err != nil {
		return nazaerrors.Wrap(err)
	}
	dts, err := rescale(sample.Dts, g.audioInfo.Timescale)
	if err != nil {
		return nazaerrors.Wrap(err)
	}

	pkt := g.audioFramer.Frame(withAdts, pts, dts, sample.IsKeyFrame)
	g.ready = append(g.ready, pkt)
	return nil
}

// NumberOfReadyPesPackets 当前可以被取出的PES包数量
func (g *Generator) NumberOfReadyPesPackets() int {
	return len(g.ready)
}

// GetNextPesPacket 按推入顺序取出下一个PES包，没有数据时ok为false
func (g *Generator) GetNextPesPacket() (pkt base.PesPacket, ok bool) {
	if len(g.ready) == 0 {
		return base.PesPacket{}, false
	}
	pkt = g.ready[0]
	g.ready = g.ready[1:]
	return pkt, true
}

// Flush 将生成器由Ready转入Closed，之后不能再PushSample
//
// 当前实现不对样本做跨调用缓冲，所以Flush不会产生新的PES包，只完成状态迁移；
// Closed之后ready队列中尚未取走的PES包依然可以通过GetNextPesPacket取出。
// 重复调用是安全的（已经是Closed时直接返回nil）
func (g *Generator) Flush() error {
	if g.state == stateClosed {
		return nil
	}
	if g.state != stateReady {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}
	base.Log.Infof("[%s] lifecycle close pes generator.", g.UniqueKey)
	g.state = stateClosed
	return nil
}

// Close Flush的无错误返回版本，调用方不关心结果（比如defer场景）时使用
func (g *Generator) Close() {
	_ = g.Flush()
}

// rescale 将样本自身时间刻度下的时间戳换算到mpeg-ts固定的90kHz时钟
//
// pts_out = pts_in * 90000 / timescale，中间乘积可能超出64位，用math/bits做128位乘法
// 再做128/64位除法，避免先除再乘掉精度，同时能检测出结果本身溢出uint64的情况
func rescale(ts uint64, timescale uint32) (uint64, error) {
	if timescale == 0 {
		return 0, nazaerrors.Wrap(base.ErrInvariantViolation)
	}
	if timescale == base.TsTimescale {
		return ts, nil
	}
	return rescale128(ts, uint64(base.TsTimescale), uint64(timescale))
}
