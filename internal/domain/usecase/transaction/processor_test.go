package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
	coremocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/persistence"
)

type ledgerFixture struct {
	store     *memStore
	processor usecase.TransactionUseCase
	userID    uuid.UUID
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	mockTime := coremocks.NewMockTimeProvider(t).Frozen(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	logger := coremocks.NewMockLogger(t).AllowAll()
	store := newMemStore()
	ctx := context.Background()

	user, err := entity.NewUser("ledger@example.com", "hash", mockTime)
	require.NoError(t, err)
	require.NoError(t, store.GetUserRepository(ctx).Create(ctx, user))

	balance, err := entity.NewBalance(user.ID, entity.InitialGrant, mockTime)
	require.NoError(t, err)
	require.NoError(t, store.GetBalanceRepository(ctx).Create(ctx, balance))
	require.NoError(t, store.GetTransactionRepository(ctx).Create(ctx, entity.NewGrantTransaction(user.ID, entity.InitialGrant, mockTime)))

	rate, err := entity.NewExchangeRate(entity.DefaultExchangeRate, mockTime)
	require.NoError(t, err)
	require.NoError(t, store.GetExchangeRateRepository(ctx).Create(ctx, rate))

	processor := NewTransactionProcessor(
		store,
		store.GetUserRepository(ctx),
		store.GetTransactionRepository(ctx),
		nil,
		mockTime,
		logger,
	)
	return &ledgerFixture{store: store, processor: processor, userID: user.ID}
}

func (f *ledgerFixture) balance(t *testing.T) string {
	t.Helper()
	b, err := f.store.GetBalanceRepository(context.Background()).GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	return b.Amount.String()
}

// ledgerSum recomputes the balance from DONE transactions
func (f *ledgerFixture) ledgerSum(t *testing.T) decimal.Decimal {
	t.Helper()
	txns, err := f.store.GetTransactionRepository(context.Background()).ListByUser(context.Background(), f.userID, 10000)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, txn := range txns {
		if txn.Status != entity.TransactionDone {
			continue
		}
		if txn.IsCredit() {
			sum = sum.Add(txn.Tokens)
		} else {
			sum = sum.Sub(txn.Tokens)
		}
	}
	return sum
}

func TestSettle_CreditThenOversizedDebit(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	assert.Equal(t, "100", f.balance(t))

	credit, err := f.processor.CreateAndSettle(ctx, f.userID, decimal.NewFromInt(300), "CREDIT")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionDone, credit.Status)
	assert.Equal(t, "360", credit.Tokens.String())
	assert.Equal(t, "1.2", credit.Rate.String())
	assert.Equal(t, "460", f.balance(t))

	debit, err := f.processor.CreateAndSettle(ctx, f.userID, decimal.NewFromInt(500), "DEBIT")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionFailed, debit.Status)
	assert.Contains(t, debit.ErrorMessage, "insufficient balance")
	assert.Equal(t, "460", f.balance(t))
}

func TestSettle_TwoCreditsInSequence(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		txn, err := f.processor.CreateAndSettle(ctx, f.userID, decimal.NewFromInt(100), "CREDIT")
		require.NoError(t, err)
		assert.Equal(t, entity.TransactionDone, txn.Status)
	}
	assert.Equal(t, "340", f.balance(t))
}

func (f *ledgerFixture) setRate(t *testing.T, raw string) {
	t.Helper()
	ctx := context.Background()
	repo := f.store.GetExchangeRateRepository(ctx)
	rate, err := repo.Get(ctx)
	require.NoError(t, err)
	rate.Rate = decimal.RequireFromString(raw)
	require.NoError(t, repo.Update(ctx, rate))
}

func TestSettle_CreditIsRoundedToStoredPrecision(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	f.setRate(t, "1.2345")

	// 10.555 x 1.2345 = 13.0301475
	txn, err := f.processor.CreateAndSettle(ctx, f.userID, decimal.RequireFromString("10.555"), "CREDIT")
	require.NoError(t, err)
	require.Equal(t, entity.TransactionDone, txn.Status)

	assert.Equal(t, "13.0301", txn.Tokens.String())
	assert.Equal(t, "113.0301", txn.ResultBalance.String())
	assert.Equal(t, "113.0301", f.balance(t))
	assert.GreaterOrEqual(t, txn.ResultBalance.Exponent(), int32(-entity.MaxDecimalPlaces))
	assert.True(t, f.ledgerSum(t).Equal(txn.ResultBalance))
}

func TestSettle_CreditWorthZeroTokensFails(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	f.setRate(t, "0.0001")

	txn, err := f.processor.CreateAndSettle(ctx, f.userID, decimal.RequireFromString("0.0001"), "CREDIT")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionFailed, txn.Status)
	assert.Contains(t, txn.ErrorMessage, "zero tokens")
	assert.Equal(t, "100", f.balance(t))
}

func TestSettle_IsIdempotent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	txn, err := f.processor.Create(ctx, f.userID, decimal.NewFromInt(40), "DEBIT")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionProcessing, txn.Status)
	assert.Equal(t, "100", f.balance(t), "create must not touch the balance")

	first, err := f.processor.Settle(ctx, txn.ID)
	require.NoError(t, err)
	second, err := f.processor.Settle(ctx, txn.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.TransactionDone, first.Status)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.ResultBalance.String(), second.ResultBalance.String())
	assert.Equal(t, "60", f.balance(t))
}

func TestSettle_ConcurrentDuplicateSettlesApplyOnce(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	txn, err := f.processor.Create(ctx, f.userID, decimal.NewFromInt(10), "CREDIT")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.processor.Settle(ctx, txn.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, "112", f.balance(t))
}

func TestSettle_DebitExactlyTheBalance(t *testing.T) {
	f := newLedgerFixture(t)

	txn, err := f.processor.CreateAndSettle(context.Background(), f.userID, decimal.NewFromInt(100), "DEBIT")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionDone, txn.Status)
	assert.Equal(t, "0", f.balance(t))
}

func TestSettle_UnsupportedTypeFails(t *testing.T) {
	f := newLedgerFixture(t)

	txn, err := f.processor.CreateAndSettle(context.Background(), f.userID, decimal.NewFromInt(5), "REFUND")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionFailed, txn.Status)
	assert.Contains(t, txn.ErrorMessage, errs.ErrInvalidTransactionType.Error())
	assert.Equal(t, "100", f.balance(t))
}

func TestSettle_MissingBalanceMarksFailed(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	txn, err := f.processor.Create(ctx, f.userID, decimal.NewFromInt(5), "CREDIT")
	require.NoError(t, err)
	delete(f.store.balances, f.userID)

	settled, err := f.processor.Settle(ctx, txn.ID)
	assert.ErrorIs(t, err, errs.ErrBalanceNotFound)
	require.NotNil(t, settled)
	assert.Equal(t, entity.TransactionFailed, settled.Status)

	stored, err := f.store.GetTransactionRepository(ctx).GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionFailed, stored.Status, "FAILED status must be committed")
}

func TestSettle_RollsBackOnStoreFailure(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	txn, err := f.processor.Create(ctx, f.userID, decimal.NewFromInt(50), "CREDIT")
	require.NoError(t, err)
	f.store.failBalanceUpdate = errs.ErrDatabaseConnection

	_, err = f.processor.Settle(ctx, txn.ID)
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)

	stored, err := f.store.GetTransactionRepository(ctx).GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionProcessing, stored.Status)
	assert.Equal(t, "100", f.balance(t))

	f.store.failBalanceUpdate = nil
	settled, err := f.processor.Settle(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionDone, settled.Status)
	assert.Equal(t, "160", f.balance(t))
}

func TestSettle_UnknownTransaction(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.processor.Settle(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}

func TestLedgerInvariantUnderConcurrentSettlements(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	amounts := []struct {
		txType string
		amount int64
	}{
		{"CREDIT", 50}, {"DEBIT", 70}, {"DEBIT", 30}, {"CREDIT", 10}, {"DEBIT", 200},
		{"DEBIT", 45}, {"CREDIT", 25}, {"DEBIT", 90}, {"DEBIT", 15}, {"CREDIT", 5},
	}

	var wg sync.WaitGroup
	for _, a := range amounts {
		wg.Add(1)
		go func(txType string, amount int64) {
			defer wg.Done()
			_, err := f.processor.CreateAndSettle(ctx, f.userID, decimal.NewFromInt(amount), txType)
			assert.NoError(t, err)
		}(a.txType, a.amount)
	}
	wg.Wait()

	balance, err := decimal.NewFromString(f.balance(t))
	require.NoError(t, err)
	assert.False(t, balance.IsNegative())
	assert.True(t, f.ledgerSum(t).Equal(balance), "balance %s must equal ledger sum %s", balance, f.ledgerSum(t))
}

func TestCreate_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.processor.Create(ctx, uuid.New(), decimal.NewFromInt(1), "CREDIT")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)

	_, err = f.processor.Create(ctx, f.userID, decimal.Zero, "CREDIT")
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = f.processor.Create(ctx, f.userID, decimal.NewFromInt(-1), "DEBIT")
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
}

func TestGetAndList(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	txn, err := f.processor.Create(ctx, f.userID, decimal.NewFromInt(1), "CREDIT")
	require.NoError(t, err)

	got, err := f.processor.Get(ctx, f.userID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	_, err = f.processor.Get(ctx, uuid.New(), txn.ID)
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)

	list, err := f.processor.List(ctx, f.userID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "grant plus the new transaction")
}

func TestSettle_WithUserLocker(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*persistencemocks.MockUnitOfWork, *persistencemocks.MockTransactionRepository, *persistencemocks.MockUserLockRepository, usecase.TransactionUseCase, *entity.Transaction) {
		mockTime := coremocks.NewMockTimeProvider(t).Frozen(fixed)
		logger := coremocks.NewMockLogger(t).AllowAll()
		uow := persistencemocks.NewMockUnitOfWork(t)
		txnRepo := persistencemocks.NewMockTransactionRepository(t)
		lockRepo := persistencemocks.NewMockUserLockRepository(t)

		txn, err := entity.NewTransaction(uuid.New(), decimal.NewFromInt(3), "DEBIT", mockTime)
		require.NoError(t, err)

		locker := NewUserLocker(lockRepo, LockConfig{TTL: 5e9}, mockTime, logger)
		p := NewTransactionProcessor(uow, persistencemocks.NewMockUserRepository(t), txnRepo, locker, mockTime, logger)
		return uow, txnRepo, lockRepo, p, txn
	}

	t.Run("Lock is taken and released around the settlement", func(t *testing.T) {
		uow, txnRepo, lockRepo, p, txn := setup(t)
		balanceRepo := persistencemocks.NewMockBalanceRepository(t)

		txnRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)
		lockRepo.On("AcquireLock", mock.Anything, txn.UserID, mock.Anything).Return(nil).Once()
		lockRepo.On("ReleaseLock", mock.Anything, txn.UserID).Return(nil).Once()
		uow.On("Do", mock.Anything, mock.Anything).Return(nil)
		uow.On("GetTransactionRepository", mock.Anything).Return(txnRepo)
		uow.On("GetBalanceRepository", mock.Anything).Return(balanceRepo)
		txnRepo.On("GetByIDForUpdate", mock.Anything, txn.ID).Return(txn, nil)
		balanceRepo.On("GetByUserIDForUpdate", mock.Anything, txn.UserID).Return(&entity.Balance{UserID: txn.UserID, Amount: decimal.NewFromInt(10)}, nil)
		balanceRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		txnRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		settled, err := p.Settle(context.Background(), txn.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.TransactionDone, settled.Status)
		assert.Equal(t, "7", settled.ResultBalance.String())
	})

	t.Run("Busy lock after timeout", func(t *testing.T) {
		_, txnRepo, lockRepo, p, txn := setup(t)

		txnRepo.On("GetByID", mock.Anything, txn.ID).Return(txn, nil)
		lockRepo.On("AcquireLock", mock.Anything, txn.UserID, mock.Anything).Return(errs.ErrUserLocked)

		_, err := p.Settle(context.Background(), txn.ID)
		assert.True(t, errors.Is(err, errs.ErrUserLocked))
	})
}
