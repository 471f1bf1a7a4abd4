package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
)

type fakePoints struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (f *fakePoints) GetByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakePoints) AddPoints(_ context.Context, id string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Points += amount
	f.users[id] = u
	return nil
}

func (f *fakePoints) DebitPoints(_ context.Context, id string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if u.Points < amount {
		return repository.ErrInsufficientPoints
	}
	u.Points -= amount
	f.users[id] = u
	return nil
}

func newLedger(points int64) (*PointsLedger, *fakePoints) {
	st := &fakePoints{users: map[string]model.User{
		"user-1": {ID: "user-1", Points: points},
	}}
	return NewPointsLedger(st), st
}

func TestDebitAndCredit(t *testing.T) {
	l, st := newLedger(15000)

	if err := l.Debit(context.Background(), "user-1", 10000); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := st.users["user-1"].Points; got != 5000 {
		t.Errorf("points after debit = %d, want 5000", got)
	}

	if err := l.Credit(context.Background(), "user-1", 10000); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got := st.users["user-1"].Points; got != 15000 {
		t.Errorf("points after credit = %d, want 15000", got)
	}

	b, err := l.Balance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b != 15000 {
		t.Errorf("balance = %d, want 15000", b)
	}
}

func TestDebitInsufficient(t *testing.T) {
	l, st := newLedger(5000)

	err := l.Debit(context.Background(), "user-1", 10000)
	if !errors.Is(err, repository.ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}
	if got := st.users["user-1"].Points; got != 5000 {
		t.Errorf("failed debit changed balance: %d", got)
	}
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	l, _ := newLedger(5000)

	for _, amount := range []int64{0, -1} {
		if err := l.Debit(context.Background(), "user-1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Debit(%d) err = %v, want ErrInvalidAmount", amount, err)
		}
		if err := l.Credit(context.Background(), "user-1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Credit(%d) err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestBalanceUnknownUser(t *testing.T) {
	l, _ := newLedger(0)

	if _, err := l.Balance(context.Background(), "ghost"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
