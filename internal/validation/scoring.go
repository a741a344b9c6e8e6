package validation

import (
	"fmt"
	"strings"
	"time"

	"visa-checker-backend/internal/models"
)

// Engine builds ValidationReports. The zero value uses time.Now.
type Engine struct {
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Score checks every rule against the file set in a single pass. Rules keep
// their catalog order in Verified and Issues; optional unmet rules appear in
// neither list.
func (e *Engine) Score(files []models.UploadedFileDescriptor, rules []models.RequirementRule) *models.ValidationReport {
	report := &models.ValidationReport{
		Verified:          []models.VerifiedItem{},
		Issues:            []models.Issue{},
		RequirementsKnown: len(rules) > 0,
	}

	totalRequired, verifiedRequired := 0, 0
	for _, rule := range rules {
		if rule.Required {
			totalRequired++
		}

		if anyMatch(files, rule) {
			report.Verified = append(report.Verified, models.VerifiedItem{
				RequirementID: rule.ID,
				Message:       rule.Name + " detected and validated",
			})
			if rule.Required {
				verifiedRequired++
			}
			continue
		}

		if rule.Required {
			report.Issues = append(report.Issues, models.Issue{
				RequirementID:  rule.ID,
				Title:          "Missing " + rule.Name,
				Description:    rule.Description,
				Recommendation: recommendation(rule),
			})
		}
	}

	report.Score = Percent(verifiedRequired, totalRequired)
	report.CompletedAt = e.now().UTC()
	return report
}

func (e *Engine) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Percent returns round-half-up(100*part/total) in integer arithmetic, and
// 100 when total is zero.
func Percent(part, total int) int {
	if total <= 0 {
		return 100
	}
	if part < 0 {
		part = 0
	}
	if part > total {
		part = total
	}
	return (200*part + total) / (2 * total)
}

func anyMatch(files []models.UploadedFileDescriptor, rule models.RequirementRule) bool {
	for _, f := range files {
		if Matches(f, rule) {
			return true
		}
	}
	return false
}

func recommendation(rule models.RequirementRule) string {
	if len(rule.AcceptedFormats) == 0 {
		return fmt.Sprintf("Upload your %s in any format", rule.Name)
	}
	formats := make([]string, len(rule.AcceptedFormats))
	for i, f := range rule.AcceptedFormats {
		formats[i] = strings.ToUpper(f)
	}
	return fmt.Sprintf("Upload your %s as one of: %s", rule.Name, strings.Join(formats, ", "))
}
