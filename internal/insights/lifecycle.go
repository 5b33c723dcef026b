package insights

import (
	"errors"
	"fmt"
	"time"

	"github.com/veritasworks/veritas-core/internal/models"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// ErrInvalidTransition is returned when a lifecycle change is not permitted
// from the insight's current status.
var ErrInvalidTransition = errors.New("invalid insight status transition")

// expiryGrace is how long past the expected impact time an unresolved
// insight survives before the sweep expires it.
const expiryGrace = 7 * 24 * time.Hour

// Lifecycle applies status transitions to insights in memory. Persistence
// is the caller's concern; every method mutates the passed insight only
// after the transition is validated.
type Lifecycle struct {
	log logger.Logger
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(log logger.Logger) *Lifecycle {
	return &Lifecycle{log: log}
}

func (l *Lifecycle) transition(insight *models.Insight, to models.InsightStatus) error {
	if !insight.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s for insight %s",
			ErrInvalidTransition, insight.Status, to, insight.ID)
	}
	insight.Status = to
	insight.UpdatedAt = time.Now()
	return nil
}

// Acknowledge moves an active insight to acknowledged.
func (l *Lifecycle) Acknowledge(insight *models.Insight, by string) error {
	if err := l.transition(insight, models.StatusAcknowledged); err != nil {
		return err
	}
	now := time.Now()
	insight.AcknowledgedAt = &now
	insight.AcknowledgedBy = by
	return nil
}

// Resolve closes an active or acknowledged insight with the operator's
// notes and observed impact.
func (l *Lifecycle) Resolve(insight *models.Insight, notes, actualImpact string) error {
	if err := l.transition(insight, models.StatusResolved); err != nil {
		return err
	}
	now := time.Now()
	insight.ResolvedAt = &now
	insight.ResolutionNotes = notes
	insight.ActualImpact = actualImpact
	return nil
}

// Cancel retracts a non-terminal insight, typically when the triggering
// detection is withdrawn.
func (l *Lifecycle) Cancel(insight *models.Insight) error {
	return l.transition(insight, models.StatusCancelled)
}

// SweepExpired expires non-terminal insights whose expected impact time
// passed more than the grace period ago. It returns the insights it
// expired.
func (l *Lifecycle) SweepExpired(insights []*models.Insight, now time.Time) []*models.Insight {
	var expired []*models.Insight
	for _, in := range insights {
		if in.Status.IsTerminal() || in.ExpectedImpactTime == nil {
			continue
		}
		if now.After(in.ExpectedImpactTime.Add(expiryGrace)) {
			if err := l.transition(in, models.StatusExpired); err != nil {
				continue
			}
			expired = append(expired, in)
			l.log.Info("insight expired", "insight_id", in.ID, "code", in.Code)
		}
	}
	return expired
}
