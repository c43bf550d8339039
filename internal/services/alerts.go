package services

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"ledgerengine/internal/ledger"
	"ledgerengine/internal/money"
)

// AlertView selects which threshold set DeriveAlerts applies.
type AlertView string

const (
	DashboardView AlertView = "dashboard"
	AnalyticsView AlertView = "analytics"
)

// The dashboard and the analytics screen intentionally warn at different points.
const (
	DashboardExpenseRatioThreshold = 0.80
	AnalyticsExpenseRatioThreshold = 0.90

	DashboardGoalWindow = 7 * 24 * time.Hour
	AnalyticsGoalWindow = 30 * 24 * time.Hour
)

// GoalAlert describes an open goal whose deadline falls inside the alert window.
type GoalAlert struct {
	GoalID          string
	Title           string
	Deadline        time.Time
	RemainingAmount decimal.Decimal
	DaysLeft        int
}

// Alerts is the advisory output of DeriveAlerts. Nil warnings mean "no warning".
type Alerts struct {
	HighExpenseWarning  *string
	GoalDeadlineWarning *string
	// GoalAlerts is only filled for the analytics view.
	GoalAlerts []GoalAlert
}

func viewThresholds(view AlertView) (ratio decimal.Decimal, window time.Duration) {
	if view == AnalyticsView {
		return decimal.NewFromFloat(AnalyticsExpenseRatioThreshold), AnalyticsGoalWindow
	}
	return decimal.NewFromFloat(DashboardExpenseRatioThreshold), DashboardGoalWindow
}

// DeriveAlerts computes the advisory warnings of a view. It never fails and
// never blocks a write.
func DeriveAlerts(view AlertView, overview *Overview, goals []ledger.Goal, now time.Time) Alerts {
	threshold, window := viewThresholds(view)
	alerts := Alerts{}

	if overview != nil {
		alerts.HighExpenseWarning = highExpenseWarning(overview.TotalExpenses, overview.TotalIncome, threshold)
	}

	upcoming := upcomingGoals(goals, now, window)
	if len(upcoming) > 0 {
		msg := goalDeadlineMessage(upcoming[0])
		alerts.GoalDeadlineWarning = &msg
	}
	if view == AnalyticsView {
		alerts.GoalAlerts = upcoming
		if alerts.GoalAlerts == nil {
			alerts.GoalAlerts = []GoalAlert{}
		}
	}
	return alerts
}

// highExpenseWarning returns a message when expenses >= income * threshold.
func highExpenseWarning(expenses, income, threshold decimal.Decimal) *string {
	// Without income the ratio is undefined: no warning, no division.
	if income.IsZero() {
		return nil
	}
	if expenses.LessThan(income.Mul(threshold)) {
		return nil
	}
	percent := expenses.Mul(decimal.NewFromInt(100)).Div(income).Round(0)
	msg := fmt.Sprintf("Your expenses have reached %s%% of your income", percent.String())
	return &msg
}

// upcomingGoals lists, in input order, the open goals due within window of now.
func upcomingGoals(goals []ledger.Goal, now time.Time, window time.Duration) []GoalAlert {
	var out []GoalAlert
	for _, goal := range goals {
		if alert, ok := goalDeadlineAlert(goal, now, window); ok {
			out = append(out, alert)
		}
	}
	return out
}

// goalDeadlineAlert reports an unfunded goal whose deadline falls within window.
// Funded goals never alert.
func goalDeadlineAlert(goal ledger.Goal, now time.Time, window time.Duration) (GoalAlert, bool) {
	if goal.Deadline == nil || goal.Status() == ledger.GoalStatusFunded {
		return GoalAlert{}, false
	}
	left := goal.Deadline.Sub(now)
	if left < 0 || left > window {
		return GoalAlert{}, false
	}
	return GoalAlert{
		GoalID:          goal.ID,
		Title:           goal.Title,
		Deadline:        *goal.Deadline,
		RemainingAmount: goal.Remaining(),
		DaysLeft:        int(math.Ceil(left.Hours() / 24)),
	}, true
}

func goalDeadlineMessage(alert GoalAlert) string {
	return fmt.Sprintf("Goal %q is due in %d day(s) with %s still to save",
		alert.Title, alert.DaysLeft, money.Format(alert.RemainingAmount))
}
