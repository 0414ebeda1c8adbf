package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/persistence"
)

type accountFixture struct {
	uow      *persistencemocks.MockUnitOfWork
	users    *persistencemocks.MockUserRepository
	balances *persistencemocks.MockBalanceRepository
	txns     *persistencemocks.MockTransactionRepository
	hasher   *coremocks.MockPasswordHasher
	useCase  *AccountUseCase
}

func newAccountFixture(t *testing.T) *accountFixture {
	f := &accountFixture{
		uow:      persistencemocks.NewMockUnitOfWork(t),
		users:    persistencemocks.NewMockUserRepository(t),
		balances: persistencemocks.NewMockBalanceRepository(t),
		txns:     persistencemocks.NewMockTransactionRepository(t),
		hasher:   coremocks.NewMockPasswordHasher(t),
	}
	tp := coremocks.NewMockTimeProvider(t).Frozen(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := coremocks.NewMockLogger(t).AllowAll()

	f.useCase = NewAccountUseCase(f.uow, f.users, f.balances, f.hasher, tp, logger).(*AccountUseCase)
	return f
}

func (f *accountFixture) expectUnit() {
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil).Once()
	f.uow.On("GetUserRepository", mock.Anything).Return(f.users).Maybe()
	f.uow.On("GetBalanceRepository", mock.Anything).Return(f.balances).Maybe()
	f.uow.On("GetTransactionRepository", mock.Anything).Return(f.txns).Maybe()
}

func TestRegister_CreatesUserBalanceAndGrant(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "alice@example.com").Return(nil, errs.ErrUserNotFound)
	f.hasher.On("Hash", "s3cret-pass").Return("hashed", nil)
	f.expectUnit()

	var createdUser *entity.User
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) { createdUser = args.Get(1).(*entity.User) }).
		Return(nil)
	f.balances.On("Create", mock.Anything, mock.AnythingOfType("*entity.Balance")).Return(nil)

	var grant *entity.Transaction
	f.txns.On("Create", mock.Anything, mock.AnythingOfType("*entity.Transaction")).
		Run(func(args mock.Arguments) { grant = args.Get(1).(*entity.Transaction) }).
		Return(nil)

	user, balance, err := f.useCase.Register(ctx, "  Alice@Example.com ", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed", user.PasswordHash)
	assert.Same(t, createdUser, user)
	assert.True(t, balance.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, user.ID, balance.UserID)

	require.NotNil(t, grant)
	assert.Equal(t, user.ID, grant.UserID)
	assert.Equal(t, entity.TransactionDone, grant.Status)
	assert.True(t, grant.ResultBalance.Equal(balance.Amount))
}

func TestRegister_Validation(t *testing.T) {
	f := newAccountFixture(t)

	_, _, err := f.useCase.Register(context.Background(), "not-an-email", "s3cret-pass")
	assert.ErrorIs(t, err, errs.ErrInvalidEmail)

	_, _, err = f.useCase.Register(context.Background(), "bob@example.com", "short")
	assert.ErrorIs(t, err, errs.ErrWeakPassword)
}

func TestRegister_EmailTaken(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "bob@example.com").Return(&entity.User{ID: uuid.New()}, nil)

	_, _, err := f.useCase.Register(ctx, "bob@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, errs.ErrEmailTaken)
}

func TestRegister_UnitFailurePropagates(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "carol@example.com").Return(nil, errs.ErrUserNotFound)
	f.hasher.On("Hash", "s3cret-pass").Return("hashed", nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(errs.ErrDatabaseConnection)

	user, balance, err := f.useCase.Register(ctx, "carol@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	assert.Nil(t, user)
	assert.Nil(t, balance)
}

func TestRegister_HashFailure(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "dave@example.com").Return(nil, errs.ErrUserNotFound)
	f.hasher.On("Hash", "s3cret-pass").Return("", errors.New("boom"))

	_, _, err := f.useCase.Register(ctx, "dave@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, errs.ErrInternalServer)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		f := newAccountFixture(t)
		f.balances.On("GetByUserID", ctx, userID).
			Return(&entity.Balance{UserID: userID, Amount: decimal.NewFromInt(460)}, nil)

		balance, err := f.useCase.GetBalance(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "460", balance.Amount.String())
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newAccountFixture(t)
		f.balances.On("GetByUserID", ctx, userID).Return(nil, errs.ErrBalanceNotFound)
		f.users.On("Exists", ctx, userID).Return(false, nil)

		_, err := f.useCase.GetBalance(ctx, userID)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("UserWithoutBalance", func(t *testing.T) {
		f := newAccountFixture(t)
		f.balances.On("GetByUserID", ctx, userID).Return(nil, errs.ErrBalanceNotFound)
		f.users.On("Exists", ctx, userID).Return(true, nil)

		_, err := f.useCase.GetBalance(ctx, userID)
		assert.ErrorIs(t, err, errs.ErrBalanceNotFound)
	})

	t.Run("NilID", func(t *testing.T) {
		f := newAccountFixture(t)
		_, err := f.useCase.GetBalance(ctx, uuid.Nil)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestExists(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	f.users.On("Exists", ctx, userID).Return(true, nil)

	exists, err := f.useCase.Exists(ctx, userID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = f.useCase.Exists(ctx, uuid.Nil)
	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
}
