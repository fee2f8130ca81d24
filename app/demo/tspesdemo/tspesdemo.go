// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"os"

	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/novoreel/shaka-packager/pkg/pes"
	"github.com/q191201771/naza/pkg/nazalog"

	ts "github.com/asticode/go-astits"
)

// 学习如何把pes包复用进真正的mpeg-ts容器：
// 用pes.Generator产生PES负载（本demo不设置密钥，负载为明文），再交给go-astits写出ts文件

const (
	videoPid uint16 = 256
	audioPid uint16 = 257
)

var kVideoExtraData = []byte{
	0x01, 0x00, 0x00, 0x00, 0xFF,
	0xE1, 0x00, 0x1D,
	0x67, 0x64, 0x00, 0x1E, 0xAC, 0xD9, 0x40, 0xB4,
	0x2F, 0xF9, 0x7F, 0xF0, 0x00, 0x80, 0x00, 0x91,
	0x00, 0x00, 0x03, 0x03, 0xE9, 0x00, 0x00, 0xEA,
	0x60, 0x0F, 0x16, 0x2D, 0x96,
	0x01, 0x00, 0x0A,
	0x68, 0xFE, 0xFD, 0xFC, 0xFB, 0x11, 0x12, 0x13, 0x14, 0x15,
}

var kAudioExtraData = []byte{0x12, 0x10}

var outFilename = "/tmp/tspesdemo.ts"

func main() {
	_ = nazalog.Init(func(option *nazalog.Option) {
		option.AssertBehavior = nazalog.AssertFatal
	})
	defer nazalog.Sync()

	g := pes.NewGenerator(nil)
	err := g.Initialize(
		&base.StreamInfo{
			Kind:           base.StreamKindVideo,
			VideoCodec:     base.VideoCodecH264,
			Timescale:      base.TsTimescale,
			ExtraData:      kVideoExtraData,
			NaluLengthSize: 1,
		},
		&base.StreamInfo{
			Kind:       base.StreamKindAudio,
			AudioCodec: base.AudioCodecAac,
			Timescale:  base.TsTimescale,
			ExtraData:  kAudioExtraData,
		},
	)
	nazalog.Assert(nil, err)

	videoSlice := []byte{0x61, 0xBB, 0xCC, 0xDD}
	videoPayload := append([]byte{byte(len(videoSlice))}, videoSlice...)
	for i := 0; i < 5; i++ {
		err = g.PushSample(base.StreamKindVideo, base.MediaSample{
			Payload:    videoPayload,
			Pts:        uint64(i) * 3000,
			Dts:        uint64(i) * 3000,
			IsKeyFrame: i == 0,
		})
		nazalog.Assert(nil, err)
	}

	audioPayload := []byte{0x21, 0x22, 0x23, 0x24, 0x05}
	for i := 0; i < 5; i++ {
		err = g.PushSample(base.StreamKindAudio, base.MediaSample{
			Payload: audioPayload,
			Pts:     uint64(i) * 2048,
			Dts:     uint64(i) * 2048,
		})
		nazalog.Assert(nil, err)
	}
	g.Close()

	f, err := os.Create(outFilename)
	nazalog.Assert(nil, err)
	defer f.Close()

	ctx := context.Background()
	muxer := ts.NewMuxer(ctx, f)
	err = muxer.AddElementaryStream(ts.PMTElementaryStream{
		ElementaryPID: videoPid,
		StreamType:    ts.StreamTypeH264Video,
	})
	nazalog.Assert(nil, err)
	err = muxer.AddElementaryStream(ts.PMTElementaryStream{
		ElementaryPID: audioPid,
		StreamType:    ts.StreamTypeAACAudio,
	})
	nazalog.Assert(nil, err)
	muxer.SetPCRPID(videoPid)

	_, err = muxer.WriteTables()
	nazalog.Assert(nil, err)

	for {
		pkt, ok := g.GetNextPesPacket()
		if !ok {
			break
		}

		pid := videoPid
		streamId := pkt.StreamId
		if pkt.StreamId == base.StreamIdAac {
			pid = audioPid
		}

		header := &ts.PESHeader{
			OptionalHeader: &ts.PESOptionalHeader{
				MarkerBits:      2,
				PTSDTSIndicator: ts.PTSDTSIndicatorBothPresent,
				PTS:             &ts.ClockReference{Base: int64(pkt.Pts)},
				DTS:             &ts.ClockReference{Base: int64(pkt.Dts)},
			},
			StreamID: streamId,
		}

		_, err = muxer.WriteData(&ts.MuxerData{
			PID: pid,
			PES: &ts.PESData{
				Header: header,
				Data:   pkt.Data,
			},
		})
		nazalog.Assert(nil, err)
	}

	nazalog.Infof("wrote %s", outFilename)
}
