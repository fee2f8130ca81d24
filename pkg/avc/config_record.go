// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// DecoderConfigurationRecord对应<H.264-AVC-ISO_IEC_14496-15.pdf> <5.2.4 Decoder configuration information>
//
// 与lal原本面向rtmp/flv sequence header的TryParseSeqHeader不同，这里的输入是裸的
// AVCDecoderConfigurationRecord字节流，不带rtmp/flv那5字节的tag头

type DecoderConfigurationRecord struct {
	ConfigurationVersion uint8
	AvcProfileIndication uint8
	ProfileCompatibility uint8
	AvcLevelIndication   uint8
	LengthSizeMinusOne   uint8

	Spss [][]byte
	Ppss [][]byte
}

// ParseDecoderConfigurationRecord 解析AVCDecoderConfigurationRecord，取出所有sps和pps
//
// @param extraData: 函数调用结束后，内部不持有该内存块
func ParseDecoderConfigurationRecord(extraData []byte) (dcr DecoderConfigurationRecord, err error) {
	if len(extraData) < 7 {
		return dcr, nazaerrors.Wrap(ErrAVC)
	}

	br := nazabits.NewBitReader(extraData)

	if dcr.ConfigurationVersion, err = br.ReadBits8(8); err != nil {
		return dcr, nazaerrors.Wrap(err)
	}
	if dcr.ConfigurationVersion != 1 {
		return dcr, nazaerrors.Wrap(ErrAVC)
	}
	if dcr.AvcProfileIndication, err = br.ReadBits8(8); err != nil {
		return dcr, nazaerrors.Wrap(err)
	}
	if dcr.ProfileCompatibility, err = br.ReadBits8(8); err != nil {
		return dcr, nazaerrors.Wrap(err)
	}
	if dcr.AvcLevelIndication, err = br.ReadBits8(8); err != nil {
		return dcr, nazaerrors.Wrap(err)
	}
	if _, err = br.ReadBits8(6); err != nil { // reserved = '111111'b
		return dcr, nazaerrors.Wrap(err)
	}
	if dcr.LengthSizeMinusOne, err = br.ReadBits8(2); err != nil {
		return dcr, nazaerrors.Wrap(err)
	}

	if _, err = br.ReadBits8(3); err != nil { // reserved = '111'b
		return dcr, nazaerrors.Wrap(err)
	}
	numOfSps, err := br.ReadBits8(5)
	if err != nil {
		return dcr, nazaerrors.Wrap(err)
	}
	for i := uint8(0); i < numOfSps; i++ {
		b, err := br.ReadBytes(2)
		if err != nil {
			return dcr, nazaerrors.Wrap(err)
		}
		spsLen := bele.BeUint16(b)
		sps, err := br.ReadBytes(uint(spsLen))
		if err != nil {
			return dcr, nazaerrors.Wrap(err)
		}
		dcr.Spss = append(dcr.Spss, sps)
	}

	numOfPps, err := br.ReadBits8(8)
	if err != nil {
		return dcr, nazaerrors.Wrap(err)
	}
	for i := uint8(0); i < numOfPps; i++ {
		b, err := br.ReadBytes(2)
		if err != nil {
			return dcr, nazaerrors.Wrap(err)
		}
		ppsLen := bele.BeUint16(b)
		pps, err := br.ReadBytes(uint(ppsLen))
		if err != nil {
			return dcr, nazaerrors.Wrap(err)
		}
		dcr.Ppss = append(dcr.Ppss, pps)
	}

	if len(dcr.Spss) == 0 || len(dcr.Ppss) == 0 {
		return dcr, nazaerrors.Wrap(ErrAVC)
	}

	return dcr, nil
}

// NaluLengthSize AVCDecoderConfigurationRecord中约定的，样本里每个nalu前缀长度字段的字节数
func (dcr DecoderConfigurationRecord) NaluLengthSize() int {
	return int(dcr.LengthSizeMinusOne) + 1
}
