// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import "github.com/novoreel/shaka-packager/pkg/base"

// Framer 把一段已经是最终格式（Annex-B字节流，或者带adts头的aac frame）的负载，
// 连同时间戳，包装成一个base.PesPacket
//
// 本身不关心mpeg-ts层面的分片打包（188字节TS包、PCR等），那部分交给下游的TS muxer
type Framer struct {
	streamId  byte
	timescale uint32
}

func NewFramer(streamId byte, timescale uint32) *Framer {
	return &Framer{streamId: streamId, timescale: timescale}
}

// Frame 构造一枚PES包
//
// @param data: 调用结束后，Framer自身不再持有该内存块的引用（但PesPacket会持有）
func (f *Framer) Frame(data []byte, pts, dts uint64, isKeyFrame bool) base.PesPacket {
	return base.PesPacket{
		StreamId:   f.streamId,
		Pts:        pts,
		Dts:        dts,
		Data:       data,
		IsKeyFrame: isKeyFrame,
	}
}
