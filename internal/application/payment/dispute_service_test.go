package payment

import (
	"context"
	"testing"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDisputeService(
	disputeRepo *MockDisputeRepository,
	escrowRepo *MockEscrowRepository,
	txRepo *MockTransactionRepository,
	orderRepo *MockOrderRepository,
) *DisputeService {
	return NewDisputeService(disputeRepo, escrowRepo, txRepo, orderRepo, &sequenceRefGen{}, zap.NewNop())
}

func newEscrowedOrder(t *testing.T, buyerID uuid.UUID) *trade.Order {
	t.Helper()

	order := newConfirmedOrder(t, buyerID)
	require.NoError(t, order.MarkPaid(true, nil))
	order.ClearDomainEvents()
	return order
}

func TestDisputeService_Raise_FreezesEscrow(t *testing.T) {
	disputeRepo := new(MockDisputeRepository)
	escrowRepo := new(MockEscrowRepository)
	orderRepo := new(MockOrderRepository)
	service := newDisputeService(disputeRepo, escrowRepo, new(MockTransactionRepository), orderRepo)

	buyerID := uuid.New()
	order := newEscrowedOrder(t, buyerID)
	account, err := payment.NewEscrowAccount(order.ID, buyerID, order.SellerID, order.GetTotalMoney(), nil)
	require.NoError(t, err)
	require.NoError(t, account.Fund())
	account.ClearDomainEvents()

	escrowRepo.On("FindByOrder", mock.Anything, order.ID).Return(account, nil)
	escrowRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *payment.EscrowAccount) bool {
		return a.Status == payment.EscrowStatusDisputed
	})).Return(nil)
	disputeRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Dispute")).Return(nil)
	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.Raise(context.Background(), buyerID, order.ID, RaiseDisputeRequest{
		Reason:      "quality_issue",
		Description: "Half the bags arrived moldy",
	})

	require.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, trade.PaymentStatusDisputed, order.PaymentStatus)
	escrowRepo.AssertExpectations(t)
	disputeRepo.AssertExpectations(t)
}

func TestDisputeService_Raise_OnlyBuyerMayDispute(t *testing.T) {
	disputeRepo := new(MockDisputeRepository)
	escrowRepo := new(MockEscrowRepository)
	service := newDisputeService(disputeRepo, escrowRepo, new(MockTransactionRepository), new(MockOrderRepository))

	orderID := uuid.New()
	account := newFundedAccount(t, orderID, 450)

	escrowRepo.On("FindByOrder", mock.Anything, orderID).Return(account, nil)

	_, err := service.Raise(context.Background(), uuid.New(), orderID, RaiseDisputeRequest{
		Reason:      "not_delivered",
		Description: "Nothing arrived",
	})

	assert.ErrorIs(t, err, shared.ErrForbidden)
	disputeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDisputeService_Resolve_InFavorOfBuyerRefundsHeldFunds(t *testing.T) {
	disputeRepo := new(MockDisputeRepository)
	escrowRepo := new(MockEscrowRepository)
	txRepo := new(MockTransactionRepository)
	orderRepo := new(MockOrderRepository)
	service := newDisputeService(disputeRepo, escrowRepo, txRepo, orderRepo)

	buyerID := uuid.New()
	order := newEscrowedOrder(t, buyerID)
	require.NoError(t, order.MarkDisputed())
	order.ClearDomainEvents()

	account, err := payment.NewEscrowAccount(order.ID, buyerID, order.SellerID, order.GetTotalMoney(), nil)
	require.NoError(t, err)
	require.NoError(t, account.Fund())
	require.NoError(t, account.Dispute())
	account.ClearDomainEvents()

	dispute, err := payment.NewDispute(account.ID, order.ID, buyerID, payment.DisputeReasonNotDelivered, "Nothing arrived")
	require.NoError(t, err)
	dispute.ClearDomainEvents()

	moderatorID := uuid.New()

	disputeRepo.On("FindByID", mock.Anything, dispute.ID).Return(dispute, nil)
	disputeRepo.On("Save", mock.Anything, dispute).Return(nil)
	escrowRepo.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	escrowRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *payment.EscrowAccount) bool {
		return a.Status == payment.EscrowStatusRefunded
	})).Return(nil)
	txRepo.On("FindByOrder", mock.Anything, order.ID).
		Return([]payment.Transaction{newSettledPayment(t, order.ID, 450)}, nil)
	txRepo.On("Save", mock.Anything, mock.MatchedBy(func(tx *payment.Transaction) bool {
		return tx.Type == payment.TransactionTypeRefund &&
			tx.UserID == buyerID &&
			tx.Amount.Equal(decimal.NewFromInt(450))
	})).Return(nil)
	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("Save", mock.Anything, order).Return(nil)

	resp, err := service.Resolve(context.Background(), moderatorID, dispute.ID, ResolveDisputeRequest{
		InFavorOfBuyer: true,
		Resolution:     "Carrier confirmed the shipment was lost",
	})

	require.NoError(t, err)
	assert.Equal(t, "resolved_buyer", resp.Status)
	assert.True(t, resp.RefundAmount.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, trade.PaymentStatusRefunded, order.PaymentStatus)
	txRepo.AssertExpectations(t)
}

func TestDisputeService_Resolve_InFavorOfSellerUnfreezesEscrow(t *testing.T) {
	disputeRepo := new(MockDisputeRepository)
	escrowRepo := new(MockEscrowRepository)
	txRepo := new(MockTransactionRepository)
	service := newDisputeService(disputeRepo, escrowRepo, txRepo, new(MockOrderRepository))

	orderID := uuid.New()
	account := newFundedAccount(t, orderID, 450)
	require.NoError(t, account.Dispute())
	account.ClearDomainEvents()

	dispute, err := payment.NewDispute(account.ID, orderID, account.BuyerID, payment.DisputeReasonQualityIssue, "Bags look underweight")
	require.NoError(t, err)
	dispute.ClearDomainEvents()

	disputeRepo.On("FindByID", mock.Anything, dispute.ID).Return(dispute, nil)
	disputeRepo.On("Save", mock.Anything, dispute).Return(nil)
	escrowRepo.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	escrowRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *payment.EscrowAccount) bool {
		return a.Status == payment.EscrowStatusFunded
	})).Return(nil)

	resp, err := service.Resolve(context.Background(), uuid.New(), dispute.ID, ResolveDisputeRequest{
		InFavorOfBuyer: false,
		Resolution:     "Weight certificates match the order",
	})

	require.NoError(t, err)
	assert.Equal(t, "resolved_seller", resp.Status)
	txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
