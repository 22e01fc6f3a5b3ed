package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/sells-group/leadscout/internal/model"
)

// ContactInfo carries the reachability inputs for scoring.
type ContactInfo struct {
	Phone   string
	Email   string
	Website string
}

// Engine computes lead scores. It is deterministic and side-effect free:
// the same inputs always produce the same Score.
type Engine struct {
	tables Tables
}

// NewEngine creates a scoring engine over the given lookup tables.
func NewEngine(tables Tables) *Engine {
	return &Engine{tables: tables}
}

// Score derives the three dimensions from an audit snapshot, contact info,
// and business category.
//
// Need measures technical deficiency and starts at 0. The analytics bonus is
// only counted when the audit actually inspected the site; an unreachable or
// missing website says nothing about pixels.
//
// Value measures business potential and starts at 50. The fixed weights make
// values above 100 impossible with this rule set.
//
// Reachability measures contact-info quality and starts at 0.
func (e *Engine) Score(audit model.AuditResult, contact ContactInfo, category string) model.Score {
	s := model.Score{ScoredAt: time.Now().UTC()}

	if !audit.HTTPS {
		s.Need += 25
		s.Reasons = append(s.Reasons, "no HTTPS")
	}
	if !audit.MobileViewport {
		s.Need += 25
		s.Reasons = append(s.Reasons, "not mobile-optimized")
	}
	if !audit.Booking {
		s.Need += 30
		s.Reasons = append(s.Reasons, "no online booking")
	}
	if !audit.StructuredData {
		s.Need += 10
		s.Reasons = append(s.Reasons, "no structured data")
	}
	if audit.Inspected() && len(audit.Analytics) == 0 {
		s.Need += 10
		s.Reasons = append(s.Reasons, "no analytics pixels detected")
	}

	s.Value = 50
	if e.isHighValueCategory(category) {
		s.Value += 30
		s.Reasons = append(s.Reasons, "high-value industry: "+category)
	}
	if e.isRecognizedCMS(audit.CMSHint) {
		s.Value += 20
		s.Reasons = append(s.Reasons, "recognized CMS: "+audit.CMSHint)
	}

	if contact.Phone != "" {
		s.Reachability += 40
		s.Reasons = append(s.Reasons, "phone available")
	}
	if contact.Email != "" {
		s.Reachability += 30
		s.Reasons = append(s.Reasons, "email available")
	}
	if contact.Website != "" {
		s.Reachability += 30
		s.Reasons = append(s.Reasons, "website available")
	}

	s.Total = int(math.Round(float64(s.Need+s.Value+s.Reachability) / 3))
	return s
}

func (e *Engine) isHighValueCategory(category string) bool {
	c := strings.ToLower(category)
	if c == "" {
		return false
	}
	for _, term := range e.tables.HighValueCategories {
		if strings.Contains(c, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func (e *Engine) isRecognizedCMS(hint string) bool {
	h := strings.ToLower(hint)
	if h == "" {
		return false
	}
	for _, cms := range e.tables.RecognizedCMS {
		if h == strings.ToLower(cms) {
			return true
		}
	}
	return false
}
