package transaction

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
)

// memStore is an in-memory ledger. Do holds a single mutex for the whole unit,
// which is stricter than row locks but gives the same per-user serialization.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users        map[uuid.UUID]*entity.User
	balances     map[uuid.UUID]entity.Balance
	transactions map[uuid.UUID]entity.Transaction
	rate         *entity.ExchangeRate

	failBalanceUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[uuid.UUID]*entity.User{},
		balances:     map[uuid.UUID]entity.Balance{},
		transactions: map[uuid.UUID]entity.Transaction{},
	}
}

func (s *memStore) snapshot() (map[uuid.UUID]entity.Balance, map[uuid.UUID]entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make(map[uuid.UUID]entity.Balance, len(s.balances))
	for k, v := range s.balances {
		b[k] = v
	}
	t := make(map[uuid.UUID]entity.Transaction, len(s.transactions))
	for k, v := range s.transactions {
		t[k] = v
	}
	return b, t
}

func (s *memStore) restore(b map[uuid.UUID]entity.Balance, t map[uuid.UUID]entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = b
	s.transactions = t
}

// Begin, Commit and Rollback are only reached through Do in these tests
func (s *memStore) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (s *memStore) Commit(context.Context) error                        { return nil }
func (s *memStore) Rollback(context.Context) error                      { return nil }

func (s *memStore) Do(ctx context.Context, fn func(context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	balances, transactions := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(balances, transactions)
		return err
	}
	return nil
}

func (s *memStore) GetUserRepository(context.Context) persistence.UserRepository { return memUsers{s} }
func (s *memStore) GetBalanceRepository(context.Context) persistence.BalanceRepository {
	return memBalances{s}
}
func (s *memStore) GetTransactionRepository(context.Context) persistence.TransactionRepository {
	return memTransactions{s}
}
func (s *memStore) GetExchangeRateRepository(context.Context) persistence.ExchangeRateRepository {
	return memRates{s}
}
func (s *memStore) GetGenerationRepository(context.Context) persistence.GenerationRepository {
	panic("generation repository is not used by the ledger")
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, errs.ErrUserNotFound
}

func (r memUsers) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, errs.ErrUserNotFound
}

func (r memUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.users[id]
	return ok, nil
}

type memBalances struct{ s *memStore }

func (r memBalances) Create(_ context.Context, b *entity.Balance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.balances[b.UserID] = *b
	return nil
}

func (r memBalances) GetByUserID(_ context.Context, userID uuid.UUID) (*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[userID]
	if !ok {
		return nil, errs.ErrBalanceNotFound
	}
	return &b, nil
}

func (r memBalances) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	return r.GetByUserID(ctx, userID)
}

func (r memBalances) Update(_ context.Context, b *entity.Balance) error {
	if r.s.failBalanceUpdate != nil {
		return r.s.failBalanceUpdate
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.Amount.IsNegative() {
		return errs.ErrConstraintViolation
	}
	r.s.balances[b.UserID] = *b
	return nil
}

type memTransactions struct{ s *memStore }

func (r memTransactions) Create(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) GetByID(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	return &t, nil
}

func (r memTransactions) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r memTransactions) Update(_ context.Context, t *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.transactions[t.ID]
	if !ok {
		return errs.ErrTransactionNotFound
	}
	if stored.IsTerminal() {
		return errs.ErrInvalidStatusTransition
	}
	r.s.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memRates struct{ s *memStore }

func (r memRates) Create(_ context.Context, rate *entity.ExchangeRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.rate != nil {
		return errs.ErrDuplicateSingleton
	}
	copied := *rate
	r.s.rate = &copied
	return nil
}

func (r memRates) Get(context.Context) (*entity.ExchangeRate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.rate == nil {
		return nil, errs.ErrExchangeRateNotFound
	}
	copied := *r.s.rate
	return &copied, nil
}

func (r memRates) GetForShare(ctx context.Context) (*entity.ExchangeRate, error) { return r.Get(ctx) }

func (r memRates) GetForUpdate(ctx context.Context) (*entity.ExchangeRate, error) { return r.Get(ctx) }

func (r memRates) Update(_ context.Context, rate *entity.ExchangeRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *rate
	r.s.rate = &copied
	return nil
}
