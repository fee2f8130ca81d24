// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

// EscapeEmulationPrevention 对nalu内容按照Annex B的规则插入emulation_prevention_three_byte，
// 即将任意的 00 00 0x (x<=3) 转换为 00 00 03 0x
//
// @param nalu: 函数调用结束后，内部不持有该内存块
//
// @return out: 内存块为独立新申请；函数调用结束后，内部不持有该内存块
func EscapeEmulationPrevention(nalu []byte) []byte {
	out := make([]byte, 0, len(nalu)+len(nalu)/2+1)
	zeroRun := 0
	for _, b := range nalu {
		if zeroRun >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeroRun = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return out
}
