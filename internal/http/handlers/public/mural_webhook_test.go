package public

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/provider"
	"github.com/stablefront/internal/repository"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
)

const webhookTestTxHash = "0x" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"

type webhookTestEnv struct {
	engine *gin.Engine
	key    *ecdsa.PrivateKey
	payout *webhookFakePayout
}

type webhookFakePayout struct {
	createCalls int
	createErr   error
}

func (f *webhookFakePayout) CreatePayoutRequest(ctx context.Context, input muralpay.CreatePayoutInput) (*muralpay.PayoutRequest, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &muralpay.PayoutRequest{ID: "pr_1", Status: constants.PayoutStatusAwaitingExecution}, nil
}

func (f *webhookFakePayout) ExecutePayoutRequest(ctx context.Context, payoutRequestID string) (*muralpay.PayoutRequest, error) {
	return &muralpay.PayoutRequest{ID: payoutRequestID, Status: constants.PayoutStatusExecuted}, nil
}

func (f *webhookFakePayout) GetPayoutRequest(ctx context.Context, payoutRequestID string) (*muralpay.PayoutRequest, error) {
	return &muralpay.PayoutRequest{ID: payoutRequestID, Status: constants.PayoutStatusExecuted}, nil
}

func setupWebhookTest(t *testing.T) *webhookTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:webhook_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := models.InitDB("sqlite", dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	verifier, err := muralpay.NewWebhookVerifier(pemKey)
	if err != nil {
		t.Fatalf("NewWebhookVerifier: %v", err)
	}

	orderRepo := repository.NewOrderRepository(models.DB)
	productRepo := repository.NewProductRepository(models.DB)
	payout := &webhookFakePayout{}
	container := &provider.Container{
		OrderRepo:        orderRepo,
		ProductRepo:      productRepo,
		PayoutClient:     payout,
		WebhookVerifier:  verifier,
		ReconcileService: service.NewReconcileService(orderRepo, productRepo, payout, nil),
	}

	engine := gin.New()
	handler := New(container)
	engine.POST("/api/v1/payments/webhook/mural", handler.MuralWebhook)

	return &webhookTestEnv{engine: engine, key: key, payout: payout}
}

func (env *webhookTestEnv) seedOrder(t *testing.T, totalAtomic int64) *models.Order {
	t.Helper()
	txHash := webhookTestTxHash
	order := &models.Order{
		OrderNo:          fmt.Sprintf("SF-WH-%d", time.Now().UnixNano()),
		CustomerEmail:    "buyer@example.com",
		Status:           constants.OrderStatusPending,
		TokenSymbol:      constants.TokenSymbolUSDC,
		TotalAmountUSDC:  totalAtomic,
		BlockchainTxHash: &txHash,
	}
	if err := models.DB.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func (env *webhookTestEnv) eventBody(amount string) []byte {
	return []byte(fmt.Sprintf(`{
		"eventId": "evt_1",
		"deliveryId": "dlv_1",
		"attemptNumber": 1,
		"eventCategory": "MURAL_ACCOUNT_BALANCE_ACTIVITY",
		"occuredAt": "2026-01-02T03:04:05.678Z",
		"payload": {
			"type": "account_credited",
			"accountId": "acc_1",
			"organizationId": "org_1",
			"transactionId": "txn_1",
			"accountWalletAddress": "0xabc",
			"tokenAmount": {"blockchain": "POLYGON", "tokenAmount": %s, "tokenSymbol": "USDC"},
			"transactionDetails": {
				"blockchain": "POLYGON",
				"transactionDate": "2026-01-02T03:04:00.000Z",
				"transactionHash": "%s",
				"sourceWalletAddress": "0xsource",
				"destinationWalletAddress": "0xdest"
			}
		}
	}`, amount, webhookTestTxHash))
}

func (env *webhookTestEnv) sign(t *testing.T, timestamp string, body []byte) string {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	message := ts.UTC().Format("2006-01-02T15:04:05.000") + "Z" + "." + string(body)
	digest := sha256.Sum256([]byte(message))
	sig, err := ecdsa.SignASN1(rand.Reader, env.key, digest[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig)
}

func (env *webhookTestEnv) deliver(t *testing.T, body []byte, signature, timestamp string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/mural", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(constants.MuralWebhookSignatureHeader, signature)
	}
	if timestamp != "" {
		req.Header.Set(constants.MuralWebhookTimestampHeader, timestamp)
	}
	recorder := httptest.NewRecorder()
	env.engine.ServeHTTP(recorder, req)
	return recorder
}

func TestMuralWebhookPaid(t *testing.T) {
	env := setupWebhookTest(t)
	order := env.seedOrder(t, 49_990_000)

	body := env.eventBody("49.99")
	timestamp := "2026-01-02T03:04:06.000Z"
	recorder := env.deliver(t, body, env.sign(t, timestamp, body), timestamp)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", recorder.Code, recorder.Body.String())
	}
	if env.payout.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", env.payout.createCalls)
	}

	var stored models.Order
	if err := models.DB.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status != constants.OrderStatusPaid {
		t.Errorf("Status = %s, want PAID", stored.Status)
	}
}

func TestMuralWebhookSignatureRejection(t *testing.T) {
	env := setupWebhookTest(t)
	env.seedOrder(t, 49_990_000)

	body := env.eventBody("49.99")
	timestamp := "2026-01-02T03:04:06.000Z"
	signature := env.sign(t, timestamp, body)

	cases := []struct {
		name      string
		body      []byte
		signature string
		timestamp string
	}{
		{"missing signature", body, "", timestamp},
		{"missing timestamp", body, signature, ""},
		{"tampered body", env.eventBody("0.01"), signature, timestamp},
		{"garbage signature", body, "bm90LWEtc2lnbmF0dXJl", timestamp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := env.deliver(t, tc.body, tc.signature, tc.timestamp)
			if recorder.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", recorder.Code)
			}
		})
	}
	if env.payout.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", env.payout.createCalls)
	}
}

func TestMuralWebhookInvalidEvent(t *testing.T) {
	env := setupWebhookTest(t)

	body := []byte(`{"eventId":"evt_1","eventCategory":"OTHER","payload":{"type":"account_credited"}}`)
	timestamp := "2026-01-02T03:04:06.000Z"
	recorder := env.deliver(t, body, env.sign(t, timestamp, body), timestamp)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body: %s)", recorder.Code, recorder.Body.String())
	}
}

func TestMuralWebhookBusinessOutcomes(t *testing.T) {
	t.Run("order not found", func(t *testing.T) {
		env := setupWebhookTest(t)
		body := env.eventBody("49.99")
		timestamp := "2026-01-02T03:04:06.000Z"
		recorder := env.deliver(t, body, env.sign(t, timestamp, body), timestamp)
		if recorder.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", recorder.Code)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		env := setupWebhookTest(t)
		order := env.seedOrder(t, 49_990_000)
		body := env.eventBody("40")
		timestamp := "2026-01-02T03:04:06.000Z"
		recorder := env.deliver(t, body, env.sign(t, timestamp, body), timestamp)
		if recorder.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", recorder.Code)
		}
		var stored models.Order
		if err := models.DB.First(&stored, order.ID).Error; err != nil {
			t.Fatalf("reload order: %v", err)
		}
		if stored.Status != constants.OrderStatusPaymentMismatch {
			t.Errorf("Status = %s, want PAYMENT_MISMATCH", stored.Status)
		}
	})

	t.Run("redelivery", func(t *testing.T) {
		env := setupWebhookTest(t)
		env.seedOrder(t, 49_990_000)
		body := env.eventBody("49.99")
		timestamp := "2026-01-02T03:04:06.000Z"
		signature := env.sign(t, timestamp, body)

		first := env.deliver(t, body, signature, timestamp)
		second := env.deliver(t, body, signature, timestamp)
		if first.Code != http.StatusOK || second.Code != http.StatusOK {
			t.Errorf("codes = %d/%d, want 200/200", first.Code, second.Code)
		}
		if env.payout.createCalls != 1 {
			t.Errorf("createCalls = %d, want exactly 1", env.payout.createCalls)
		}
	})
}

func TestMuralWebhookPayoutFailure(t *testing.T) {
	env := setupWebhookTest(t)
	env.payout.createErr = errors.New("mural unavailable")
	order := env.seedOrder(t, 49_990_000)

	body := env.eventBody("49.99")
	timestamp := "2026-01-02T03:04:06.000Z"
	recorder := env.deliver(t, body, env.sign(t, timestamp, body), timestamp)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 so the provider redelivers", recorder.Code)
	}

	var stored models.Order
	if err := models.DB.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status != constants.OrderStatusPending {
		t.Errorf("Status = %s, want PENDING after rollback", stored.Status)
	}
}
