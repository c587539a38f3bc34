package muralpay

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
	"time"
)

// WebhookVerifier Mural webhook 验签器
// 签名算法：ECDSA P-256 + SHA-256，签名为 base64 编码的 ASN.1 DER。
// 被签消息为 "<ISO-8601 时间戳>.<原始请求体>"。
type WebhookVerifier struct {
	publicKey *ecdsa.PublicKey
}

// NewWebhookVerifier 从 PEM 公钥创建验签器
func NewWebhookVerifier(publicKeyPEM string) (*WebhookVerifier, error) {
	key, err := parseECDSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	return &WebhookVerifier{publicKey: key}, nil
}

// Verify 校验 webhook 签名。
// 任何畸形输入（时间戳、base64、DER）一律按验签失败处理，不向上抛错。
func (v *WebhookVerifier) Verify(body []byte, signature, timestamp string) bool {
	if v == nil || v.publicKey == nil {
		return false
	}
	signature = strings.TrimSpace(signature)
	timestamp = strings.TrimSpace(timestamp)
	if signature == "" || timestamp == "" {
		return false
	}

	ts, err := parseWebhookTimestamp(timestamp)
	if err != nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	message := canonicalWebhookMessage(ts, body)
	digest := sha256.Sum256([]byte(message))
	return ecdsa.VerifyASN1(v.publicKey, digest[:], sig)
}

// canonicalWebhookMessage 拼接被签消息（时间戳统一重排为毫秒精度 UTC ISO-8601）
func canonicalWebhookMessage(ts time.Time, body []byte) string {
	iso := ts.UTC().Format("2006-01-02T15:04:05.000") + "Z"
	return iso + "." + string(body)
}

func parseWebhookTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrSignatureInvalid, raw)
}

// parseECDSAPublicKey 解析 PEM 或裸 base64 DER 编码的 PKIX 公钥
func parseECDSAPublicKey(raw string) (*ecdsa.PublicKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: webhook_public_key is required", ErrConfigInvalid)
	}

	var der []byte
	if block, _ := pem.Decode([]byte(raw)); block != nil {
		der = block.Bytes
	} else {
		decoded, err := base64.StdEncoding.DecodeString(compactKey(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: webhook_public_key is not PEM or base64", ErrConfigInvalid)
		}
		der = decoded
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse webhook_public_key failed", ErrConfigInvalid)
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: webhook_public_key is not an ECDSA key", ErrConfigInvalid)
	}
	return key, nil
}

func compactKey(raw string) string {
	return strings.NewReplacer(" ", "", "\n", "", "\r", "", "\t", "").Replace(raw)
}
