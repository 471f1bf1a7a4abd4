package service

import (
	"context"
	"errors"

	"github.com/minhvt/photobooth-backend/internal/model"
)

// ErrInvalidAmount is returned for zero or negative point movements.
var ErrInvalidAmount = errors.New("amount must be positive")

// PointsStore is the persistence surface of the ledger.
// *repository.UserRepo implements it.
type PointsStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	AddPoints(ctx context.Context, id string, amount int64) error
	DebitPoints(ctx context.Context, id string, amount int64) error
}

// PointsLedger moves points on user balances.  Debits are conditional
// on sufficient funds at the storage layer; the ledger itself never
// reads-then-writes a balance.
type PointsLedger struct {
	users PointsStore
}

func NewPointsLedger(users PointsStore) *PointsLedger {
	return &PointsLedger{users: users}
}

// Debit removes amount from the user's balance.  Fails with
// repository.ErrInsufficientPoints when the balance does not cover it.
func (l *PointsLedger) Debit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return l.users.DebitPoints(ctx, userID, amount)
}

// Credit adds amount to the user's balance.
func (l *PointsLedger) Credit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return l.users.AddPoints(ctx, userID, amount)
}

// Balance returns the user's current points balance.
func (l *PointsLedger) Balance(ctx context.Context, userID string) (int64, error) {
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Points, nil
}
