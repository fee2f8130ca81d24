// Copyright 2019, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package avc

import (
	"errors"
)

var ErrAVC = errors.New("lal.avc: fxxk")

var NaluStartCode = []byte{0x0, 0x0, 0x0, 0x1}

const (
	NaluUintTypeSPS uint8 = 7
	NaluUintTypePPS uint8 = 8
	NaluUintTypeAUD uint8 = 9
)

func CalcNaluType(nalu []byte) uint8 {
	return nalu[0] & 0x1f
}
