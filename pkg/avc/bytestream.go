// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// NalByteStreamConverter 将AVCC格式（[4字节长度(可配置)][nalu]的重复排列）的视频样本
// 转换为Annex-B字节流（[00 00 00 01][nalu]的重复排列），每个关键帧样本前会插入sps/pps
//
// 内部状态在构造时通过AVCDecoderConfigurationRecord一次性确定，线程不安全，
// 调用方需自行保证同一个实例不被并发访问
type NalByteStreamConverter struct {
	naluLengthSize int
	spss           [][]byte
	ppss           [][]byte
}

// NewNalByteStreamConverter
//
// @param extraData: AVCDecoderConfigurationRecord，函数调用结束后，内部不持有该内存块的引用
//                   （sps/pps内容会被拷贝出来长期持有）
//
// @param naluLengthSize: 样本里每个nalu长度前缀的字节数。注意，这个值由上游demuxer单独告知，
//                        不从extraData自带的length_size_minus_one字段推导
//                        （extraData里的该字段只用来描述sps/pps自身，上游约定的样本格式可能与它不同）
func NewNalByteStreamConverter(extraData []byte, naluLengthSize int) (*NalByteStreamConverter, error) {
	if naluLengthSize != 1 && naluLengthSize != 2 && naluLengthSize != 4 {
		return nil, nazaerrors.Wrap(ErrAVC)
	}

	dcr, err := ParseDecoderConfigurationRecord(extraData)
	if err != nil {
		return nil, nazaerrors.Wrap(err)
	}

	c := &NalByteStreamConverter{
		naluLengthSize: naluLengthSize,
	}
	for _, sps := range dcr.Spss {
		c.spss = append(c.spss, append([]byte(nil), sps...))
	}
	for _, pps := range dcr.Ppss {
		c.ppss = append(c.ppss, append([]byte(nil), pps...))
	}
	return c, nil
}

// ConvertToByteStream 将一个AVCC样本转换为Annex-B字节流
//
// 如果isKeyFrame为true，转换结果里会在最前面插入sps、pps
//
// @param sample: 函数调用结束后，内部不持有该内存块
//
// @return out: 内存块为独立新申请；函数调用结束后，内部不持有该内存块
func (c *NalByteStreamConverter) ConvertToByteStream(sample []byte, isKeyFrame bool) ([]byte, error) {
	buf := base.NewBuffer(len(sample) + len(sample)/4 + 64)

	if isKeyFrame {
		for _, sps := range c.spss {
			c.writeNalu(buf, sps)
		}
		for _, pps := range c.ppss {
			c.writeNalu(buf, pps)
		}
	}

	for i := 0; i < len(sample); {
		if i+c.naluLengthSize > len(sample) {
			return nil, nazaerrors.Wrap(ErrAVC)
		}

		naluLen := readNaluLength(sample[i:], c.naluLengthSize)
		i += c.naluLengthSize

		if i+naluLen > len(sample) {
			return nil, nazaerrors.Wrap(ErrAVC)
		}

		c.writeNalu(buf, sample[i:i+naluLen])
		i += naluLen
	}

	return buf.Bytes(), nil
}

func (c *NalByteStreamConverter) writeNalu(buf *base.Buffer, nalu []byte) {
	_, _ = buf.Write(NaluStartCode)
	_, _ = buf.Write(nalu)
}

func readNaluLength(b []byte, size int) int {
	switch size {
	case 1:
		return int(b[0])
	case 2:
		return int(bele.BeUint16(b))
	default:
		return int(bele.BeUint32(b))
	}
}
