package payments

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aminebenkeroum/tiks-straumur/internal/modules/vivenu"
)

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) GetPaymentRequest(ctx context.Context, paymentID string) (vivenu.PaymentRequest, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(vivenu.PaymentRequest), args.Error(1)
}

func (m *RegistryMock) CompletePaymentRequest(ctx context.Context, paymentID string) (vivenu.PaymentRequest, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(vivenu.PaymentRequest), args.Error(1)
}

func (m *RegistryMock) GetTransaction(ctx context.Context, transactionID string) (vivenu.Transaction, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(vivenu.Transaction), args.Error(1)
}

func (m *RegistryMock) GetCheckoutPayments(ctx context.Context, checkoutID string) (vivenu.CheckoutPayments, error) {
	args := m.Called(ctx, checkoutID)
	return args.Get(0).(vivenu.CheckoutPayments), args.Error(1)
}

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Name() string { return "mock" }

func (m *ProviderMock) InitializeCheckout(ctx context.Context, req InitializeRequest) (InitializeResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(InitializeResponse), args.Error(1)
}

func (m *ProviderMock) GetCheckout(ctx context.Context, reference string) (Checkout, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(Checkout), args.Error(1)
}

func (m *ProviderMock) CreateRefund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(RefundResult), args.Error(1)
}
