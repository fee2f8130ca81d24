// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package sampleaes 实现HLS SAMPLE-AES规范里，针对H264和AAC的按图样(pattern)加密
package sampleaes

import (
	"github.com/novoreel/shaka-packager/pkg/avc"
	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

const (
	aacLeaderSize  = 16
	h264LeaderSize = 32
	blockSize      = 16
	// h264PatternEncryptEveryN 加密图样为1:9（加密1个块，跳过9个）
	h264PatternEncryptEveryN = 10
)

// SampleEncryptor 使用SAMPLE-AES规则加密一个完整样本（可能含有多个nalu）
//
// 一个样本内所有参与加密的16字节块共用同一条CBC链，nalu边界不会重置IV
type SampleEncryptor struct {
	UniqueKey string
}

func NewSampleEncryptor() *SampleEncryptor {
	return &SampleEncryptor{UniqueKey: base.GenUkSampleEncryptor()}
}

// EncryptAacSample 加密一个已经带adts头的aac样本
//
// 图样：样本开头16字节（含adts头）为明文引导，之后按16字节对齐加密，不足16字节的尾部保持明文
//
// @param sample: 函数调用结束后，内部不持有该内存块
//
// @return out: 内存块为独立新申请；函数调用结束后，内部不持有该内存块
func (s *SampleEncryptor) EncryptAacSample(sample []byte, key base.EncryptionKey) ([]byte, error) {
	enc, err := NewAes128CbcEncryptor(key.Key)
	if err != nil {
		return nil, err
	}
	enc.Reset(key.Iv)

	out := append([]byte(nil), sample...)

	if len(out) < aacLeaderSize+blockSize {
		return out, nil
	}

	tail := out[aacLeaderSize:]
	cipherLen := (len(tail) / blockSize) * blockSize
	if cipherLen == 0 {
		return out, nil
	}
	if err := enc.EncryptBlocks(tail[:cipherLen]); err != nil {
		return nil, err
	}
	return out, nil
}

// EncryptH264Sample 加密一个Annex-B字节流样本（可能含有多个以00 00 00 01分隔的nalu）
//
// sps/pps/aud不参与加密图样，原样保留；其余nalu按H264图样加密后，需要对整个nalu
// 重新执行emulation prevention转义（加密产生的密文可能包含需要转义的字节序列，
// 而此前明文区域里本身存在的00 00 03这类序列也会被当作普通数据再次转义）
//
// @param sample: 函数调用结束后，内部不持有该内存块
//
// @return out: 内存块为独立新申请；函数调用结束后，内部不持有该内存块
func (s *SampleEncryptor) EncryptH264Sample(sample []byte, key base.EncryptionKey) ([]byte, error) {
	enc, err := NewAes128CbcEncryptor(key.Key)
	if err != nil {
		return nil, err
	}
	enc.Reset(key.Iv)

	nalus, err := splitAnnexB(sample)
	if err != nil {
		return nil, err
	}

	out := base.NewBuffer(len(sample) + len(sample)/4 + 64)
	for _, nalu := range nalus {
		_, _ = out.Write(avc.NaluStartCode)

		if !isEncryptableNaluType(nalu) {
			_, _ = out.Write(nalu)
			continue
		}

		encrypted, err := encryptH264Nalu(enc, nalu)
		if err != nil {
			return nil, err
		}

		// 过短的nalu原样未经加密返回，此时不能重新转义：它已经是正确转义过的
		// 原始数据，再跑一遍EscapeEmulationPrevention会把其中真实存在的00 00 0x
		// 序列误判成明文，插入多余的0x03
		if len(nalu) < h264LeaderSize+blockSize {
			_, _ = out.Write(encrypted)
			continue
		}
		_, _ = out.Write(avc.EscapeEmulationPrevention(encrypted))
	}

	return out.Bytes(), nil
}

// encryptH264Nalu 加密单个nalu的body（header+payload，不含start code），
// body过短（小于一个引导+一个加密块）时原样返回
func encryptH264Nalu(enc *Aes128CbcEncryptor, body []byte) ([]byte, error) {
	if len(body) < h264LeaderSize+blockSize {
		return append([]byte(nil), body...), nil
	}

	out := append([]byte(nil), body...)
	tail := out[h264LeaderSize:]

	blockIndex := 0
	for o := 0; o+blockSize <= len(tail); o += blockSize {
		isLastBlock := o+blockSize == len(tail)
		if blockIndex%h264PatternEncryptEveryN == 0 && !isLastBlock {
			if err := enc.EncryptBlocks(tail[o : o+blockSize]); err != nil {
				return nil, err
			}
		}
		blockIndex++
	}

	return out, nil
}

// isEncryptableNaluType sps/pps/aud不参与SAMPLE-AES加密图样
func isEncryptableNaluType(nalu []byte) bool {
	if len(nalu) == 0 {
		return false
	}
	t := avc.CalcNaluType(nalu)
	return t != avc.NaluUintTypeSPS && t != avc.NaluUintTypePPS && t != avc.NaluUintTypeAUD
}

// splitAnnexB 按00 00 00 01切分出每个nalu的body（不含start code）
func splitAnnexB(stream []byte) ([][]byte, error) {
	var nalus [][]byte
	starts := findStartCodes(stream)
	if len(starts) == 0 {
		return nil, nazaerrors.Wrap(base.ErrInvariantViolation)
	}
	for i, s := range starts {
		begin := s + len(avc.NaluStartCode)
		var end int
		if i+1 < len(starts) {
			end = starts[i+1]
		} else {
			end = len(stream)
		}
		nalus = append(nalus, stream[begin:end])
	}
	return nalus, nil
}

func findStartCodes(stream []byte) []int {
	var starts []int
	for i := 0; i+4 <= len(stream); i++ {
		if stream[i] == 0 && stream[i+1] == 0 && stream[i+2] == 0 && stream[i+3] == 1 {
			starts = append(starts, i)
		}
	}
	return starts
}
