package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/repository"
)

func seedPaidOrderWithPayout(t *testing.T, payoutStatus string) *models.Order {
	t.Helper()
	order := seedPendingOrder(t, 49_990_000, testTxHash)
	updates := map[string]interface{}{
		"status":            constants.OrderStatusPaid,
		"payout_request_id": "pr_1",
		"payout_status":     payoutStatus,
	}
	if err := models.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		t.Fatalf("seed payout fields: %v", err)
	}
	return order
}

func TestPayoutExecute(t *testing.T) {
	setupTestDB(t)
	payout := &fakePayoutClient{
		fiat: &muralpay.FiatAmount{
			FiatAmount:       requireDecimal("49.75"),
			FiatCurrencyCode: "USD",
		},
	}
	svc := NewPayoutService(repository.NewOrderRepository(models.DB), payout)

	order := seedPaidOrderWithPayout(t, constants.PayoutStatusAwaitingExecution)

	updated, err := svc.Execute(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if updated.PayoutStatus != constants.PayoutStatusExecuted {
		t.Errorf("PayoutStatus = %s, want EXECUTED", updated.PayoutStatus)
	}
	if updated.PayoutAmount != "49.75 USD" {
		t.Errorf("PayoutAmount = %q, want \"49.75 USD\"", updated.PayoutAmount)
	}

	var stored models.Order
	if err := models.DB.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.PayoutStatus != constants.PayoutStatusExecuted {
		t.Errorf("stored PayoutStatus = %s", stored.PayoutStatus)
	}
	if stored.PayoutID != "po_1" {
		t.Errorf("stored PayoutID = %s", stored.PayoutID)
	}
}

func TestPayoutExecuteIdempotentWhenTerminal(t *testing.T) {
	setupTestDB(t)
	payout := &fakePayoutClient{}
	svc := NewPayoutService(repository.NewOrderRepository(models.DB), payout)

	order := seedPaidOrderWithPayout(t, constants.PayoutStatusExecuted)

	updated, err := svc.Execute(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if updated.PayoutStatus != constants.PayoutStatusExecuted {
		t.Errorf("PayoutStatus = %s", updated.PayoutStatus)
	}
	if payout.executeCalls != 0 {
		t.Errorf("executeCalls = %d, want 0 (terminal payout must not re-execute)", payout.executeCalls)
	}
}

func TestPayoutExecuteAlreadyExecutedRemotely(t *testing.T) {
	setupTestDB(t)
	payout := &fakePayoutClient{
		executeErr: muralpay.ErrPayoutAlreadyExecuted,
		getResult:  &muralpay.PayoutRequest{ID: "pr_1", Status: constants.PayoutStatusCompleted},
	}
	svc := NewPayoutService(repository.NewOrderRepository(models.DB), payout)

	order := seedPaidOrderWithPayout(t, constants.PayoutStatusAwaitingExecution)

	updated, err := svc.Execute(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if updated.PayoutStatus != constants.PayoutStatusCompleted {
		t.Errorf("PayoutStatus = %s, want COMPLETED from remote state", updated.PayoutStatus)
	}
}

func TestPayoutExecuteNotReady(t *testing.T) {
	setupTestDB(t)
	svc := NewPayoutService(repository.NewOrderRepository(models.DB), &fakePayoutClient{})

	order := seedPendingOrder(t, 49_990_000, testTxHash)

	if _, err := svc.Execute(context.Background(), order.ID); !errors.Is(err, ErrPayoutNotReady) {
		t.Fatalf("err = %v, want ErrPayoutNotReady", err)
	}
	if _, err := svc.Execute(context.Background(), 9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestPayoutRefresh(t *testing.T) {
	setupTestDB(t)
	payout := &fakePayoutClient{
		getResult: &muralpay.PayoutRequest{ID: "pr_1", Status: constants.PayoutStatusCompleted},
	}
	svc := NewPayoutService(repository.NewOrderRepository(models.DB), payout)

	order := seedPaidOrderWithPayout(t, constants.PayoutStatusExecuted)

	updated, err := svc.Refresh(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if updated.PayoutStatus != constants.PayoutStatusCompleted {
		t.Errorf("PayoutStatus = %s, want COMPLETED", updated.PayoutStatus)
	}
}
