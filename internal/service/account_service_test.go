package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/banking-core/internal/backend"
	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/domain"
)

type mockAccountBackend struct {
	mock.Mock
}

func (m *mockAccountBackend) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]domain.Account)
	return accounts, args.Error(1)
}

func (m *mockAccountBackend) Session() backend.Session {
	return backend.Session{Token: "token", OwnerID: "owner-1"}
}

type mockFallback struct {
	mock.Mock
}

func (m *mockFallback) Accounts(ownerID string) ([]domain.Account, error) {
	args := m.Called(ownerID)
	accounts, _ := args.Get(0).([]domain.Account)
	return accounts, args.Error(1)
}

func newAccountTestService(t *testing.T, withFallback bool) (*AccountService, *mockAccountBackend, *mockFallback, *test.Hook) {
	t.Helper()
	backendMock := new(mockAccountBackend)
	fallbackMock := new(mockFallback)
	logger, hook := test.NewNullLogger()

	var fallback backend.FallbackProvider
	if withFallback {
		fallback = fallbackMock
	}
	return NewAccountService(backendMock, fallback, config.DefaultPolicy(), logger), backendMock, fallbackMock, hook
}

func testAccounts() []domain.Account {
	return []domain.Account{
		{
			ID:            "acc-1",
			OwnerID:       "owner-1",
			AccountNumber: "1111111111",
			Type:          domain.AccountTypeChecking,
			Balance:       decimal.NewFromInt(5000000),
			Currency:      "IDR",
			Active:        true,
		},
		{
			ID:            "acc-2",
			OwnerID:       "owner-1",
			AccountNumber: "3333333333",
			Type:          domain.AccountTypeMortgage,
			Balance:       decimal.NewFromInt(-500000000),
			InterestRate:  omit.From(decimal.RequireFromString("8.2")),
			Currency:      "IDR",
			Active:        true,
		},
	}
}

func transportErr() error {
	return &backend.TransportError{Op: "list-accounts", Err: errors.New("dial tcp: connection refused")}
}

// -- ListAccounts tests --

func TestListAccounts_Online(t *testing.T) {
	svc, backendMock, fallbackMock, _ := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).Return(testAccounts(), nil)

	list, err := svc.ListAccounts(context.Background())

	require.NoError(t, err)
	assert.False(t, list.Offline)
	assert.Len(t, list.Accounts, 2)
	fallbackMock.AssertNotCalled(t, "Accounts", mock.Anything)
}

func TestListAccounts_FallbackOnTransport(t *testing.T) {
	svc, backendMock, fallbackMock, hook := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).Return(nil, transportErr())
	fallbackMock.On("Accounts", "owner-1").Return(testAccounts()[:1], nil)

	list, err := svc.ListAccounts(context.Background())

	require.NoError(t, err)
	assert.True(t, list.Offline)
	assert.Len(t, list.Accounts, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	fallbackMock.AssertExpectations(t)
}

func TestListAccounts_NoFallbackConfigured(t *testing.T) {
	svc, backendMock, _, _ := newAccountTestService(t, false)
	backendMock.On("ListAccounts", mock.Anything).Return(nil, transportErr())

	list, err := svc.ListAccounts(context.Background())

	assert.ErrorIs(t, err, backend.ErrTransport)
	assert.Nil(t, list)
}

func TestListAccounts_RejectionDoesNotFallBack(t *testing.T) {
	svc, backendMock, fallbackMock, _ := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).
		Return(nil, &backend.RejectedError{Op: "list-accounts", Status: 401, Reason: "token expired"})

	_, err := svc.ListAccounts(context.Background())

	reason, ok := backend.RejectionReason(err)
	assert.True(t, ok)
	assert.Equal(t, "token expired", reason)
	fallbackMock.AssertNotCalled(t, "Accounts", mock.Anything)
}

func TestListAccounts_FallbackFails(t *testing.T) {
	svc, backendMock, fallbackMock, _ := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).Return(nil, transportErr())
	fallbackMock.On("Accounts", "owner-1").Return(nil, errors.New("file missing"))

	_, err := svc.ListAccounts(context.Background())

	assert.ErrorIs(t, err, backend.ErrTransport)
	assert.Contains(t, err.Error(), "file missing")
}

// -- FindAccount tests --

func TestFindAccount_ByIDOrNumber(t *testing.T) {
	svc, backendMock, _, _ := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).Return(testAccounts(), nil)

	byID, err := svc.FindAccount(context.Background(), "acc-2")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountTypeMortgage, byID.Type)

	byNumber, err := svc.FindAccount(context.Background(), "1111111111")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", byNumber.ID)
}

func TestFindAccount_NotFound(t *testing.T) {
	svc, backendMock, _, _ := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).Return(testAccounts(), nil)

	_, err := svc.FindAccount(context.Background(), "acc-9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindAccount_NeverUsesFallback(t *testing.T) {
	svc, backendMock, fallbackMock, _ := newAccountTestService(t, true)
	backendMock.On("ListAccounts", mock.Anything).Return(nil, transportErr())

	_, err := svc.FindAccount(context.Background(), "acc-1")

	assert.ErrorIs(t, err, backend.ErrTransport)
	fallbackMock.AssertNotCalled(t, "Accounts", mock.Anything)
}

// -- Derived figures tests --

func TestMortgagePayment_UsesPolicyTerm(t *testing.T) {
	svc, _, _, _ := newAccountTestService(t, false)

	payment, ok := svc.MortgagePayment(testAccounts()[1])

	assert.True(t, ok)
	assert.True(t, payment.Equal(decimal.NewFromInt(4244524)), payment.String())
}

func TestMortgagePayment_NotMortgage(t *testing.T) {
	svc, _, _, _ := newAccountTestService(t, false)

	_, ok := svc.MortgagePayment(testAccounts()[0])
	assert.False(t, ok)
}

func TestProjection_Saving(t *testing.T) {
	svc, _, _, _ := newAccountTestService(t, false)
	saving := domain.Account{
		ID:           "acc-3",
		Type:         domain.AccountTypeSaving,
		Balance:      decimal.NewFromInt(150000000),
		InterestRate: omit.From(decimal.RequireFromString("6.5")),
	}

	entries, err := svc.Projection(saving, 12)

	require.NoError(t, err)
	require.Len(t, entries, 12)
	assert.True(t, entries[0].MonthlyInterest.Equal(decimal.NewFromInt(812550)))
}
