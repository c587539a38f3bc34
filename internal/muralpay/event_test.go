package muralpay

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const validEventJSON = `{
	"eventId": "evt_123",
	"deliveryId": "dlv_456",
	"attemptNumber": 1,
	"eventCategory": "MURAL_ACCOUNT_BALANCE_ACTIVITY",
	"occuredAt": "2026-01-02T03:04:05.678Z",
	"payload": {
		"type": "account_credited",
		"accountId": "acc_1",
		"organizationId": "org_1",
		"transactionId": "txn_1",
		"accountWalletAddress": "0xabc",
		"tokenAmount": {
			"blockchain": "POLYGON",
			"tokenAmount": 49.99,
			"tokenSymbol": "USDC"
		},
		"transactionDetails": {
			"blockchain": "POLYGON",
			"transactionDate": "2026-01-02T03:04:00.000Z",
			"transactionHash": "0xdeadbeef",
			"sourceWalletAddress": "0xsource",
			"destinationWalletAddress": "0xdest"
		}
	}
}`

func TestParseAccountCreditedEvent(t *testing.T) {
	event, err := ParseAccountCreditedEvent([]byte(validEventJSON))
	if err != nil {
		t.Fatalf("ParseAccountCreditedEvent: %v", err)
	}
	if event.EventID != "evt_123" {
		t.Errorf("EventID = %q, want evt_123", event.EventID)
	}
	if event.Payload.TransactionDetails.TransactionHash != "0xdeadbeef" {
		t.Errorf("TransactionHash = %q", event.Payload.TransactionDetails.TransactionHash)
	}
	// 金额必须精确保留，49.99 不允许出现浮点误差
	if !event.Payload.TokenAmount.TokenAmount.Equal(decimal.RequireFromString("49.99")) {
		t.Errorf("TokenAmount = %s, want 49.99", event.Payload.TokenAmount.TokenAmount)
	}
}

func TestParseAccountCreditedEventInvalid(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(string) string
		wantField string
	}{
		{"wrong category", func(s string) string {
			return strings.Replace(s, "MURAL_ACCOUNT_BALANCE_ACTIVITY", "OTHER", 1)
		}, "eventCategory"},
		{"wrong payload type", func(s string) string {
			return strings.Replace(s, "account_credited", "account_debited", 1)
		}, "payload.type"},
		{"missing tx hash", func(s string) string {
			return strings.Replace(s, `"0xdeadbeef"`, `""`, 1)
		}, "payload.transactionDetails.transactionHash"},
		{"zero amount", func(s string) string {
			return strings.Replace(s, "49.99", "0", 1)
		}, "payload.tokenAmount.tokenAmount"},
		{"negative amount", func(s string) string {
			return strings.Replace(s, "49.99", "-1", 1)
		}, "payload.tokenAmount.tokenAmount"},
		{"missing event id", func(s string) string {
			return strings.Replace(s, `"evt_123"`, `""`, 1)
		}, "eventId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAccountCreditedEvent([]byte(tc.mutate(validEventJSON)))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Fields = %v, want %q listed", verr.Fields, tc.wantField)
			}
		})
	}
}

func TestParseAccountCreditedEventMalformedBody(t *testing.T) {
	for _, body := range [][]byte{nil, []byte("not json"), []byte("{")} {
		if _, err := ParseAccountCreditedEvent(body); err == nil {
			t.Fatalf("expected error for body %q", body)
		}
	}
}
