package insights

import (
	"fmt"

	"github.com/veritasworks/veritas-core/internal/models"
)

// GenerateNarrative renders the human-facing summary for an insight. The
// emoji and urgency tag depend only on type and severity so narratives stay
// stable across re-detections.
func GenerateNarrative(insight *models.Insight) *models.Narrative {
	return &models.Narrative{
		InsightID:  insight.ID,
		Emoji:      narrativeEmoji(insight.Type, insight.Severity),
		Headline:   fmt.Sprintf("%s (%s)", insight.Title, insight.Severity),
		Summary:    narrativeSummary(insight),
		UrgencyTag: urgencyTag(insight.Severity),
	}
}

func narrativeEmoji(t models.InsightType, s models.InsightSeverity) string {
	if t == models.InsightOpportunity {
		if s == models.SeverityCritical || s == models.SeverityHigh {
			return "🚀"
		}
		return "💡"
	}
	switch s {
	case models.SeverityCritical:
		return "🚨"
	case models.SeverityHigh:
		return "⚠️"
	default:
		return "📉"
	}
}

func urgencyTag(s models.InsightSeverity) string {
	switch s {
	case models.SeverityCritical:
		return "NOW"
	case models.SeverityHigh:
		return "TODAY"
	case models.SeverityMedium:
		return "THIS WEEK"
	default:
		return "THIS MONTH"
	}
}

func narrativeSummary(insight *models.Insight) string {
	verb := "needs attention"
	if insight.Type == models.InsightOpportunity {
		verb = "is worth acting on"
	}
	return fmt.Sprintf("%s %s: %s Score %.0f/100 at %.0f%% confidence.",
		insight.Title, verb, insight.Description, insight.FinalScore, insight.Confidence*100)
}
