package services

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// Signer computes and verifies payment parameter signatures.
//
// 签名算法与支付平台约定一致：
//  1. 去掉 sign 参数和值为空的参数
//  2. 参数名按字节序（字典序）升序排序
//  3. 拼接为 k1=v1&k2=v2 形式
//  4. 追加 &key=<商户密钥>，取 MD5，十六进制大写
type Signer struct {
	secret string
}

// NewSigner creates a signer bound to the merchant secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign computes the signature over the given parameters. The sign
// parameter itself and parameters with empty values never participate.
func (s *Signer) Sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString("&key=")
	b.WriteString(s.secret)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify checks the provided sign value against the signature computed
// from params. An empty sign never verifies. The comparison is
// constant-time so the check leaks nothing about the expected value.
func (s *Signer) Verify(params map[string]string, sign string) bool {
	if sign == "" {
		return false
	}
	expected := s.Sign(params)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(sign)) == 1
}
