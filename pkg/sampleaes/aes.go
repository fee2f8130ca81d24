// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package sampleaes

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/novoreel/shaka-packager/pkg/base"
	"github.com/q191201771/naza/pkg/nazaerrors"
)

// Aes128CbcEncryptor 对齐到16字节块的AES-128-CBC加密器，不做任何填充
//
// 一个实例对应一条逻辑上的CBC链：同一个样本内，无论跨越多少个nalu，
// 加密状态（上一个密文块）都会延续下去，直到调用方重新Reset
type Aes128CbcEncryptor struct {
	block cipher.Block
	iv    [16]byte
}

// NewAes128CbcEncryptor
//
// @param key: 长度必须为16字节
func NewAes128CbcEncryptor(key [16]byte) (*Aes128CbcEncryptor, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, nazaerrors.Wrap(err)
	}
	return &Aes128CbcEncryptor{block: block}, nil
}

// Reset 重新开始一条新的CBC链，每个样本加密前都应该调用一次
func (e *Aes128CbcEncryptor) Reset(iv [16]byte) {
	e.iv = iv
}

// EncryptBlocks 原地加密`data`，长度必须是16的整数倍
func (e *Aes128CbcEncryptor) EncryptBlocks(data []byte) error {
	if len(data)%16 != 0 {
		return nazaerrors.Wrap(base.ErrInvariantViolation)
	}
	if len(data) == 0 {
		return nil
	}
	mode := cipher.NewCBCEncrypter(e.block, e.iv[:])
	mode.CryptBlocks(data, data)
	copy(e.iv[:], data[len(data)-16:])
	return nil
}
