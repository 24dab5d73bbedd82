package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Repositories
// obtained from the Store passed to fn inside Transaction all write through
// the same transaction.
type Store interface {
	Users() UserRepository
	Sellers() SellerRepository
	Products() ProductRepository
	Events() EventRepository
	Coupons() CouponRepository
	Orders() OrderRepository
	Withdraws() WithdrawRepository
	Conversations() ConversationRepository
	Messages() MessageRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is the gorm-backed Store.
type GORMStore struct {
	db *gorm.DB
}

func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Users() UserRepository                 { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Sellers() SellerRepository             { return NewGORMSellerRepository(s.db) }
func (s *GORMStore) Products() ProductRepository           { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Events() EventRepository               { return NewGORMEventRepository(s.db) }
func (s *GORMStore) Coupons() CouponRepository             { return NewGORMCouponRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository               { return NewGORMOrderRepository(s.db) }
func (s *GORMStore) Withdraws() WithdrawRepository         { return NewGORMWithdrawRepository(s.db) }
func (s *GORMStore) Conversations() ConversationRepository { return NewGORMConversationRepository(s.db) }
func (s *GORMStore) Messages() MessageRepository           { return NewGORMMessageRepository(s.db) }

// Transaction runs fn inside a database transaction. A non-nil error from fn
// rolls everything back.
func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
