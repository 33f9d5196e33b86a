// Package wizard implements the cost-calculator state machine: a linear
// multi-step flow (category, template, modules, support) with single-step
// back-navigation. The Session value is the single source of truth; it is
// persisted after every mutating transition and reloaded on every action, so
// a process restart resumes the flow exactly where the user left it.
package wizard

import "context"

// Step identifies the wizard step a session is on.
type Step int

const (
	// StepCategory is the category selection screen.
	StepCategory Step = iota + 1
	// StepTemplate is the template selection screen inside a category.
	StepTemplate
	// StepModules is the module toggle screen.
	StepModules
	// StepSupport is the support package selection screen.
	StepSupport
	// StepCompleted marks a finished calculation; the session is deleted
	// right after, so persisted rows never carry this step.
	StepCompleted
)

// Session is the persisted wizard state for one user. Modules keeps insertion
// order for stable rendering but is compared with set semantics.
type Session struct {
	UserID   int64
	Step     Step
	Category string
	Template string
	Modules  []string
	Support  string
}

// HasModule reports whether the module id is selected.
func (s Session) HasModule(id string) bool {
	for _, m := range s.Modules {
		if m == id {
			return true
		}
	}
	return false
}

// toggleModule adds the id if absent or removes it if present, returning
// whether the module ended up selected. Toggling twice restores the set.
func (s *Session) toggleModule(id string) bool {
	for i, m := range s.Modules {
		if m == id {
			s.Modules = append(s.Modules[:i], s.Modules[i+1:]...)
			return false
		}
	}
	s.Modules = append(s.Modules, id)
	return true
}

func (s *Session) clone() Session {
	out := *s
	out.Modules = append([]string(nil), s.Modules...)
	return out
}

// SessionStore persists wizard sessions, one row per user. Get reports
// absence via the bool, never as an error.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, userID int64) error
}

// CouponStore holds the optional per-user discount code. The code is read at
// price-total time and never cleared.
type CouponStore interface {
	Code(ctx context.Context, userID int64) (string, bool, error)
	Award(ctx context.Context, userID int64, code string) error
}

// QuoteRecord captures a completed calculation for follow-up.
type QuoteRecord struct {
	UserID   int64
	Template string
	Modules  []string
	Support  string
	Total    int
	Discount int
	Coupon   string
}

// QuoteStore records completed calculations.
type QuoteStore interface {
	Record(ctx context.Context, rec QuoteRecord) error
}
