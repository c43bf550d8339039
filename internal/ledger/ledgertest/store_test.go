package ledgertest

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/money"
)

func TestWithinOwnerTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	g := s.AddGoal("u1", "Trip", "100", "0", nil)

	boom := errors.New("boom")
	err := s.WithinOwnerTx(ctx, "u1", func(tx ledger.Store) error {
		goal, err := tx.FindGoalByID(ctx, "u1", g.ID)
		if err != nil {
			return err
		}
		goal.CurrentAmount = money.MustParse("40")
		if _, err := tx.SaveGoal(ctx, goal); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := s.Goal(g.ID)
	if !got.CurrentAmount.IsZero() {
		t.Errorf("expected rollback, current = %s", got.CurrentAmount)
	}
}

func TestWithinOwnerTx_CommitsWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddOwner("u1")

	err := s.WithinOwnerTx(ctx, "u1", func(tx ledger.Store) error {
		_, err := tx.SaveExpense(ctx, &ledger.Expense{
			OwnerID: "u1", Amount: money.MustParse("12.5"), Date: time.Now(),
		})
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Committed("u1"); !got.Equal(money.MustParse("12.5")) {
		t.Errorf("committed = %s, want 12.50", got)
	}
}

func TestWithinOwnerTx_UnknownOwner(t *testing.T) {
	s := New()
	err := s.WithinOwnerTx(context.Background(), "ghost", func(ledger.Store) error { return nil })
	if !errors.Is(err, ledger.ErrUnknownOwner) {
		t.Fatalf("expected ErrUnknownOwner, got %v", err)
	}
}

func TestFinders_ScopeByOwnerAndRange(t *testing.T) {
	ctx := context.Background()
	s := New()
	march := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	s.AddIncome("u1", "10", march, nil)
	s.AddIncome("u1", "20", april, nil)
	s.AddIncome("u2", "30", march, nil)

	rng := &ledger.DateRange{From: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), To: april}
	got, err := s.FindIncomesByOwner(ctx, "u1", rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Amount.Equal(money.MustParse("10")) {
		t.Errorf("expected only the March income of u1, got %+v", got)
	}

	if _, err := s.FindGoalByID(ctx, "u2", "goal-1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddToGoal_KeepsEditsMadeOutsideTheTx(t *testing.T) {
	ctx := context.Background()
	s := New()
	g := s.AddGoal("u1", "Trip", "100", "10", nil)

	err := s.WithinOwnerTx(ctx, "u1", func(tx ledger.Store) error {
		renamed := g
		renamed.Title = "Holiday"
		if _, err := s.SaveGoal(ctx, &renamed); err != nil {
			return err
		}
		_, err := tx.AddToGoal(ctx, "u1", g.ID, money.MustParse("5"))
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.Goal(g.ID)
	if got.Title != "Holiday" {
		t.Errorf("title = %q, want Holiday", got.Title)
	}
	if !got.CurrentAmount.Equal(money.MustParse("15")) {
		t.Errorf("current = %s, want 15", got.CurrentAmount)
	}

	if _, err := s.AddToGoal(ctx, "u2", g.ID, money.MustParse("1")); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign goal, got %v", err)
	}
}
