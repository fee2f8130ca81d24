// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package aac

import "github.com/novoreel/shaka-packager/pkg/base"

// AdtsHeaderBuilder 为每个裸aac frame添加adts头，使其可以被直接写入mpeg-ts payload
//
// 内部状态（AudioSpecificConfig解析结果）在构造时一次性确定，线程不安全
type AdtsHeaderBuilder struct {
	ascCtx *AscContext
}

// NewAdtsHeaderBuilder
//
// @param extraData: AudioSpecificConfig，函数调用结束后，内部不持有该内存块
func NewAdtsHeaderBuilder(extraData []byte) (*AdtsHeaderBuilder, error) {
	ascCtx, err := NewAscContext(extraData)
	if err != nil {
		return nil, err
	}
	if _, err := ascCtx.GetSamplingFrequency(); err != nil {
		return nil, base.ErrUnsupportedCodec
	}
	return &AdtsHeaderBuilder{ascCtx: ascCtx}, nil
}

// AddAdtsHeader 在raw frame前面拼接一个7字节的adts头
//
// @param frame: 函数调用结束后，内部不持有该内存块
//
// @return out: 内存块为独立新申请；函数调用结束后，内部不持有该内存块
func (b *AdtsHeaderBuilder) AddAdtsHeader(frame []byte) ([]byte, error) {
	out := make([]byte, AdtsHeaderLength+len(frame))
	if err := b.ascCtx.PackToAdtsHeader(out, len(frame)); err != nil {
		return nil, err
	}
	copy(out[AdtsHeaderLength:], frame)
	return out, nil
}
