// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package pes

import (
	"math/bits"

	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// rescale128 计算 floor(a*b/c)，中间结果用128位表示，避免a*b先行溢出64位导致的截断，
// 如果最终商本身超出uint64范围则返回ErrTimestampOverflow
func rescale128(a, b, c uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, nazaerrors.Wrap(base.ErrTimestampOverflow)
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}
