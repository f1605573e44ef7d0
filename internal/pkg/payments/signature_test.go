package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signBody(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"payment.captured"}`)
	secret := "top-secret"

	validSig := signBody(t, payload, secret)

	if !VerifyWebhookSignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
}

func TestVerifyWebhookSignature_TamperedBody(t *testing.T) {
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"amount":9900}}}`)
	secret := "top-secret"
	sig := signBody(t, payload, secret)

	tampered := []byte(`{"event":"payment.captured","payload":{"payment":{"amount":1}}}`)
	if VerifyWebhookSignature(tampered, sig, secret) {
		t.Fatalf("expected tampered body to fail verification")
	}
}

func TestVerifyWebhookSignature_MalformedInput(t *testing.T) {
	payload := []byte(`{}`)
	if VerifyWebhookSignature(payload, "", "secret") {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, "zz-not-hex", "secret") {
		t.Fatalf("expected non-hex signature to fail")
	}
	if VerifyWebhookSignature(payload, signBody(t, payload, "secret"), "") {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestVerifyWebhookSignature_CaseInsensitiveHex(t *testing.T) {
	payload := []byte(`{"event":"payment.failed"}`)
	secret := "s3cr3t"
	sig := signBody(t, payload, secret)

	upper := make([]byte, len(sig))
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if c >= 'a' && c <= 'f' {
			c = c - 'a' + 'A'
		}
		upper[i] = c
	}
	if !VerifyWebhookSignature(payload, string(upper), secret) {
		t.Fatalf("expected uppercase hex signature to validate")
	}
}
