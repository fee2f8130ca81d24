// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "errors"

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	ErrShortBuffer  = errors.New("lal: buffer too short")
	ErrFileNotExist = errors.New("lal: file not exist")
)

// ----- pkg/pes -------------------------------------------------------------------------------------------------------

var (
	// ErrUnsupportedCodec Initialize时传入的StreamInfo携带了不受支持的编码格式（比如VP9、Opus）或文本流
	ErrUnsupportedCodec = errors.New("lal.pes: unsupported codec")

	// ErrInvariantViolation 调用方违反了生成器的状态机约束，比如在Initialize之前调用PushSample，
	// 或者在Closed之后继续调用
	ErrInvariantViolation = errors.New("lal.pes: invariant violation")

	// ErrTimestampOverflow pts/dts换算到90kHz后发生了uint64溢出
	ErrTimestampOverflow = errors.New("lal.pes: timestamp overflow after rescale")
)

// ---------------------------------------------------------------------------------------------------------------------
