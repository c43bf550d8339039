package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/ledger"
	"ledgerengine/internal/metrics"
	"ledgerengine/internal/money"
)

const (
	// DefaultMonthsBack is the window of the monthly series and breakdown.
	DefaultMonthsBack = 12
	// DashboardTopCategories is the ranking size shown on the dashboard.
	DashboardTopCategories = 5
	recentLimit            = 5
	monthLayout            = "2006-01"
)

// rollupService computes read-only views. It takes no locks: a view is a
// snapshot of whatever the store returns at read time.
type rollupService struct {
	store ledger.Store
	loc   *time.Location
	now   func() time.Time
}

// NewRollupService creates a new RollupServicer. Months are cut in loc.
func NewRollupService(store ledger.Store, loc *time.Location) RollupServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &rollupService{store: store, loc: loc, now: time.Now}
}

// ledgerSnapshot is the raw material of a view, fetched in parallel.
type ledgerSnapshot struct {
	incomes  []ledger.Income
	expenses []ledger.Expense
	goals    []ledger.Goal
}

type fetchPlan struct {
	incomes, expenses, goals bool
	dateRange                *ledger.DateRange
}

func (s *rollupService) fetch(ctx context.Context, ownerID string, plan fetchPlan) (*ledgerSnapshot, error) {
	snap := &ledgerSnapshot{}
	g, gctx := errgroup.WithContext(ctx)
	if plan.incomes {
		g.Go(func() (err error) {
			snap.incomes, err = s.store.FindIncomesByOwner(gctx, ownerID, plan.dateRange)
			return err
		})
	}
	if plan.expenses {
		g.Go(func() (err error) {
			snap.expenses, err = s.store.FindExpensesByOwner(gctx, ownerID, plan.dateRange)
			return err
		})
	}
	if plan.goals {
		g.Go(func() (err error) {
			snap.goals, err = s.store.FindGoalsByOwner(gctx, ownerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snap, nil
}

// ComputeOverview returns all-time totals, per-category spend and the latest records.
func (s *rollupService) ComputeOverview(ctx context.Context, ownerID string) (*Overview, error) {
	defer metrics.ObserveRollup("overview", time.Now())

	snap, err := s.fetch(ctx, ownerID, fetchPlan{incomes: true, expenses: true})
	if err != nil {
		return nil, err
	}
	return buildOverview(snap.incomes, snap.expenses), nil
}

// ComputeMonthlySeries returns exactly monthsBack months ending with the current one.
func (s *rollupService) ComputeMonthlySeries(ctx context.Context, ownerID string, monthsBack int) ([]MonthlyTotal, error) {
	defer metrics.ObserveRollup("monthly", time.Now())

	months, window := monthWindow(s.now(), s.loc, monthsBack)
	snap, err := s.fetch(ctx, ownerID, fetchPlan{incomes: true, expenses: true, dateRange: &window})
	if err != nil {
		return nil, err
	}
	return monthlySeries(months, s.loc, snap.incomes, snap.expenses), nil
}

// ComputeCategoryBreakdown returns the non-empty (month, category) spend pairs of the window.
func (s *rollupService) ComputeCategoryBreakdown(ctx context.Context, ownerID string, monthsBack int) ([]CategoryMonthTotal, error) {
	defer metrics.ObserveRollup("categories", time.Now())

	months, window := monthWindow(s.now(), s.loc, monthsBack)
	snap, err := s.fetch(ctx, ownerID, fetchPlan{expenses: true, dateRange: &window})
	if err != nil {
		return nil, err
	}
	return categoryBreakdown(months, s.loc, snap.expenses), nil
}

// ComputeTopCategories ranks categories by all-time spend. limit <= 0 returns all.
func (s *rollupService) ComputeTopCategories(ctx context.Context, ownerID string, limit int) ([]CategoryRanking, error) {
	defer metrics.ObserveRollup("top_categories", time.Now())

	snap, err := s.fetch(ctx, ownerID, fetchPlan{expenses: true})
	if err != nil {
		return nil, err
	}
	return rankCategories(snap.expenses, limit), nil
}

// Dashboard combines the overview, the top five categories and the dashboard alerts.
func (s *rollupService) Dashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	defer metrics.ObserveRollup("dashboard", time.Now())

	snap, err := s.fetch(ctx, ownerID, fetchPlan{incomes: true, expenses: true, goals: true})
	if err != nil {
		return nil, err
	}
	overview := buildOverview(snap.incomes, snap.expenses)
	return &Dashboard{
		Overview:      overview,
		TopCategories: rankCategories(snap.expenses, DashboardTopCategories),
		Alerts:        DeriveAlerts(DashboardView, overview, snap.goals, s.now()),
	}, nil
}

// Analytics combines the series, the breakdown, the full ranking and the analytics alerts.
func (s *rollupService) Analytics(ctx context.Context, ownerID string, monthsBack int) (*Analytics, error) {
	defer metrics.ObserveRollup("analytics", time.Now())

	now := s.now()
	months, window := monthWindow(now, s.loc, monthsBack)
	snap, err := s.fetch(ctx, ownerID, fetchPlan{incomes: true, expenses: true, goals: true})
	if err != nil {
		return nil, err
	}

	windowIncomes := make([]ledger.Income, 0, len(snap.incomes))
	for _, in := range snap.incomes {
		if window.Contains(in.Date) {
			windowIncomes = append(windowIncomes, in)
		}
	}
	windowExpenses := make([]ledger.Expense, 0, len(snap.expenses))
	for _, ex := range snap.expenses {
		if window.Contains(ex.Date) {
			windowExpenses = append(windowExpenses, ex)
		}
	}

	overview := buildOverview(snap.incomes, snap.expenses)
	return &Analytics{
		MonthlySeries:     monthlySeries(months, s.loc, windowIncomes, windowExpenses),
		CategoryBreakdown: categoryBreakdown(months, s.loc, windowExpenses),
		TopCategories:     rankCategories(snap.expenses, 0),
		Alerts:            DeriveAlerts(AnalyticsView, overview, snap.goals, now),
	}, nil
}

func buildOverview(incomes []ledger.Income, expenses []ledger.Expense) *Overview {
	totalIncome := money.Zero
	for _, in := range incomes {
		totalIncome = totalIncome.Add(in.Amount)
	}

	totalExpenses := money.Zero
	byCategory := make(map[string]CategoryTotal)
	for _, ex := range expenses {
		totalExpenses = totalExpenses.Add(ex.Amount)
		label := ex.CategoryLabel()
		entry := byCategory[label]
		entry.CategoryName = label
		entry.Total = entry.Total.Add(ex.Amount)
		byCategory[label] = entry
	}
	categories := make([]CategoryTotal, 0, len(byCategory))
	for _, entry := range byCategory {
		categories = append(categories, entry)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].CategoryName < categories[j].CategoryName
	})

	recentIncomes := append([]ledger.Income(nil), incomes...)
	sort.SliceStable(recentIncomes, func(i, j int) bool {
		return recentIncomes[i].Date.After(recentIncomes[j].Date)
	})
	recentExpenses := append([]ledger.Expense(nil), expenses...)
	sort.SliceStable(recentExpenses, func(i, j int) bool {
		return recentExpenses[i].Date.After(recentExpenses[j].Date)
	})

	return &Overview{
		TotalIncome:        totalIncome,
		TotalExpenses:      totalExpenses,
		AvailableBalance:   totalIncome.Sub(totalExpenses),
		ExpensesByCategory: categories,
		RecentIncomes:      truncate(recentIncomes, recentLimit),
		RecentExpenses:     truncate(recentExpenses, recentLimit),
	}
}

func truncate[T any](items []T, limit int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// monthWindow returns the first instants of the last monthsBack months
// (oldest first, ending with the month containing now) and the half-open
// range they span.
func monthWindow(now time.Time, loc *time.Location, monthsBack int) ([]time.Time, ledger.DateRange) {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}
	local := now.In(loc)
	current := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	months := make([]time.Time, monthsBack)
	for i := range months {
		months[i] = current.AddDate(0, i-monthsBack+1, 0)
	}
	return months, ledger.DateRange{From: months[0], To: current.AddDate(0, 1, 0)}
}

func monthlySeries(months []time.Time, loc *time.Location, incomes []ledger.Income, expenses []ledger.Expense) []MonthlyTotal {
	series := make([]MonthlyTotal, len(months))
	index := make(map[string]int, len(months))
	for i, m := range months {
		key := m.Format(monthLayout)
		series[i] = MonthlyTotal{Month: key, TotalIncome: money.Zero, TotalExpense: money.Zero, NetBalance: money.Zero}
		index[key] = i
	}
	for _, in := range incomes {
		if i, ok := index[in.Date.In(loc).Format(monthLayout)]; ok {
			series[i].TotalIncome = series[i].TotalIncome.Add(in.Amount)
		}
	}
	for _, ex := range expenses {
		if i, ok := index[ex.Date.In(loc).Format(monthLayout)]; ok {
			series[i].TotalExpense = series[i].TotalExpense.Add(ex.Amount)
		}
	}
	for i := range series {
		series[i].NetBalance = series[i].TotalIncome.Sub(series[i].TotalExpense)
	}
	return series
}

func categoryBreakdown(months []time.Time, loc *time.Location, expenses []ledger.Expense) []CategoryMonthTotal {
	totals := make(map[string]map[string]CategoryMonthTotal, len(months))
	for _, ex := range expenses {
		month := ex.Date.In(loc).Format(monthLayout)
		label := ex.CategoryLabel()
		if totals[month] == nil {
			totals[month] = make(map[string]CategoryMonthTotal)
		}
		entry := totals[month][label]
		entry.Month = month
		entry.CategoryName = label
		entry.TotalSpent = entry.TotalSpent.Add(ex.Amount)
		totals[month][label] = entry
	}

	out := []CategoryMonthTotal{}
	for _, m := range months {
		byCategory := totals[m.Format(monthLayout)]
		names := make([]string, 0, len(byCategory))
		for name, entry := range byCategory {
			if entry.TotalSpent.IsPositive() {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, byCategory[name])
		}
	}
	return out
}

func rankCategories(expenses []ledger.Expense, limit int) []CategoryRanking {
	byCategory := make(map[string]*CategoryRanking)
	for _, ex := range expenses {
		label := ex.CategoryLabel()
		entry, ok := byCategory[label]
		if !ok {
			entry = &CategoryRanking{CategoryName: label, TotalSpent: money.Zero}
			byCategory[label] = entry
		}
		entry.TotalSpent = entry.TotalSpent.Add(ex.Amount)
		entry.TransactionCount++
	}

	ranking := make([]CategoryRanking, 0, len(byCategory))
	for _, entry := range byCategory {
		ranking = append(ranking, *entry)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if c := ranking[i].TotalSpent.Cmp(ranking[j].TotalSpent); c != 0 {
			return c > 0
		}
		return ranking[i].CategoryName < ranking[j].CategoryName
	})
	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
