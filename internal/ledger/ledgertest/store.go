// Package ledgertest provides an in-memory ledger.Store for engine tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/money"
)

// epoch anchors CreatedAt so insertion order is reflected in timestamps.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type dataset struct {
	categories []ledger.Category
	incomes    []ledger.Income
	expenses   []ledger.Expense
	goals      []ledger.Goal
}

func (d *dataset) clone() *dataset {
	return &dataset{
		categories: append([]ledger.Category(nil), d.categories...),
		incomes:    append([]ledger.Income(nil), d.incomes...),
		expenses:   append([]ledger.Expense(nil), d.expenses...),
		goals:      append([]ledger.Goal(nil), d.goals...),
	}
}

func (d *dataset) putGoal(goal ledger.Goal) {
	for i := range d.goals {
		if d.goals[i].ID == goal.ID {
			d.goals[i] = goal
			return
		}
	}
	d.goals = append(d.goals, goal)
}

func (d *dataset) addToGoal(goalID string, amount decimal.Decimal) {
	for i := range d.goals {
		if d.goals[i].ID == goalID {
			d.goals[i].CurrentAmount = d.goals[i].CurrentAmount.Add(amount)
			return
		}
	}
}

func (d *dataset) putExpense(expense ledger.Expense) {
	for i := range d.expenses {
		if d.expenses[i].ID == expense.ID {
			d.expenses[i] = expense
			return
		}
	}
	d.expenses = append(d.expenses, expense)
}

// Store is a goroutine-safe in-memory ledger.Store.
//
// WithinOwnerTx works on a snapshot and replays its writes on success, so a
// failed fn leaves the store untouched. It does not lock the owner: two
// overlapping transactions can both commit, which is what lets tests observe
// whether a caller serializes writers on its own.
type Store struct {
	mu     sync.Mutex
	data   *dataset
	seq    *atomic.Int64
	owners map[string]bool

	// committed receives the writes made inside a transaction, nil outside one.
	committed *[]func(*dataset)

	// SaveErr, when set, fails every write.
	SaveErr error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data:   &dataset{},
		seq:    new(atomic.Int64),
		owners: make(map[string]bool),
	}
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) nextID(prefix string) (string, time.Time) {
	n := s.seq.Add(1)
	return fmt.Sprintf("%s-%d", prefix, n), epoch.Add(time.Duration(n) * time.Second)
}

func (s *Store) register(ownerID string) {
	s.owners[ownerID] = true
}

// AddCategory seeds a category.
func (s *Store) AddCategory(ownerID, name string) ledger.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(ownerID)
	id, _ := s.nextID("cat")
	c := ledger.Category{ID: id, Name: name, OwnerID: ownerID}
	s.data.categories = append(s.data.categories, c)
	return c
}

// AddIncome seeds an income. A nil category leaves it uncategorized.
func (s *Store) AddIncome(ownerID, amount string, date time.Time, category *ledger.Category) ledger.Income {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(ownerID)
	id, created := s.nextID("inc")
	in := ledger.Income{ID: id, Amount: money.MustParse(amount), Date: date, OwnerID: ownerID, CreatedAt: created}
	if category != nil {
		in.CategoryID = &category.ID
		in.CategoryName = category.Name
	}
	s.data.incomes = append(s.data.incomes, in)
	return in
}

// AddExpense seeds an expense without passing through any guard.
func (s *Store) AddExpense(ownerID, amount string, date time.Time, category *ledger.Category) ledger.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(ownerID)
	id, created := s.nextID("exp")
	ex := ledger.Expense{
		ID: id, Amount: money.MustParse(amount), Date: date, OwnerID: ownerID,
		PaymentMethod: ledger.PaymentMethodCash, CreatedAt: created,
	}
	if category != nil {
		ex.CategoryID = &category.ID
		ex.CategoryName = category.Name
	}
	s.data.expenses = append(s.data.expenses, ex)
	return ex
}

// AddGoal seeds a goal with the given target and current amounts.
func (s *Store) AddGoal(ownerID, title, target, current string, deadline *time.Time) ledger.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(ownerID)
	id, created := s.nextID("goal")
	g := ledger.Goal{
		ID: id, Title: title, OwnerID: ownerID, Deadline: deadline, CreatedAt: created,
		TargetAmount: money.MustParse(target), CurrentAmount: money.MustParse(current),
	}
	s.data.goals = append(s.data.goals, g)
	return g
}

// AddOwner registers an owner with no records.
func (s *Store) AddOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register(ownerID)
}

// FindIncomesByOwner implements ledger.Store.
func (s *Store) FindIncomesByOwner(_ context.Context, ownerID string, dateRange *ledger.DateRange) ([]ledger.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Income
	for _, in := range s.data.incomes {
		if in.OwnerID == ownerID && (dateRange == nil || dateRange.Contains(in.Date)) {
			out = append(out, in)
		}
	}
	return out, nil
}

// FindExpensesByOwner implements ledger.Store.
func (s *Store) FindExpensesByOwner(_ context.Context, ownerID string, dateRange *ledger.DateRange) ([]ledger.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Expense
	for _, ex := range s.data.expenses {
		if ex.OwnerID == ownerID && (dateRange == nil || dateRange.Contains(ex.Date)) {
			out = append(out, ex)
		}
	}
	return out, nil
}

// FindGoalsByOwner implements ledger.Store.
func (s *Store) FindGoalsByOwner(_ context.Context, ownerID string) ([]ledger.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Goal
	for _, g := range s.data.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

// FindGoalByID implements ledger.Store.
func (s *Store) FindGoalByID(_ context.Context, ownerID, goalID string) (*ledger.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.data.goals {
		if g.ID == goalID && g.OwnerID == ownerID {
			goal := g
			return &goal, nil
		}
	}
	return nil, ledger.ErrNotFound
}

// FindCategoryByID implements ledger.Store.
func (s *Store) FindCategoryByID(_ context.Context, ownerID, categoryID string) (*ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data.categories {
		if c.ID == categoryID && c.OwnerID == ownerID {
			category := c
			return &category, nil
		}
	}
	return nil, ledger.ErrNotFound
}

// SaveGoal implements ledger.Store.
func (s *Store) SaveGoal(_ context.Context, goal *ledger.Goal) (*ledger.Goal, error) {
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *goal
	if saved.ID == "" {
		saved.ID, saved.CreatedAt = s.nextID("goal")
	}
	s.data.putGoal(saved)
	if s.committed != nil {
		*s.committed = append(*s.committed, func(d *dataset) { d.putGoal(saved) })
	}
	return &saved, nil
}

// AddToGoal implements ledger.Store. Committed increments are replayed as
// increments, not as snapshots of the goal.
func (s *Store) AddToGoal(_ context.Context, ownerID, goalID string, amount decimal.Decimal) (*ledger.Goal, error) {
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.goals {
		if s.data.goals[i].ID != goalID || s.data.goals[i].OwnerID != ownerID {
			continue
		}
		s.data.addToGoal(goalID, amount)
		if s.committed != nil {
			*s.committed = append(*s.committed, func(d *dataset) { d.addToGoal(goalID, amount) })
		}
		saved := s.data.goals[i]
		return &saved, nil
	}
	return nil, ledger.ErrNotFound
}

// SaveExpense implements ledger.Store.
func (s *Store) SaveExpense(_ context.Context, expense *ledger.Expense) (*ledger.Expense, error) {
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *expense
	if saved.ID == "" {
		saved.ID, saved.CreatedAt = s.nextID("exp")
	}
	s.data.putExpense(saved)
	if s.committed != nil {
		*s.committed = append(*s.committed, func(d *dataset) { d.putExpense(saved) })
	}
	return &saved, nil
}

// WithinOwnerTx implements ledger.Store.
func (s *Store) WithinOwnerTx(ctx context.Context, ownerID string, fn func(tx ledger.Store) error) error {
	s.mu.Lock()
	if !s.owners[ownerID] {
		s.mu.Unlock()
		return ledger.ErrUnknownOwner
	}
	var writes []func(*dataset)
	tx := &Store{
		data:      s.data.clone(),
		seq:       s.seq,
		owners:    s.owners,
		committed: &writes,
		SaveErr:   s.SaveErr,
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apply := range writes {
		apply(s.data)
	}
	if s.committed != nil {
		*s.committed = append(*s.committed, writes...)
	}
	return nil
}

// Goal returns the current state of a goal, for assertions.
func (s *Store) Goal(goalID string) (ledger.Goal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.data.goals {
		if g.ID == goalID {
			return g, true
		}
	}
	return ledger.Goal{}, false
}

// Committed returns Σ expense.amount + Σ goal.currentAmount for an owner.
func (s *Store) Committed(ownerID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := money.Zero
	for _, ex := range s.data.expenses {
		if ex.OwnerID == ownerID {
			total = total.Add(ex.Amount)
		}
	}
	for _, g := range s.data.goals {
		if g.OwnerID == ownerID {
			total = total.Add(g.CurrentAmount)
		}
	}
	return total
}
