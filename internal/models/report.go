// internal/models/report.go
package models

import "time"

type VerifiedItem struct {
	RequirementID string `json:"requirementId" bson:"requirementId"`
	Message       string `json:"message" bson:"message"`
}

type Issue struct {
	RequirementID  string `json:"requirementId" bson:"requirementId"`
	Title          string `json:"title" bson:"title"`
	Description    string `json:"description" bson:"description"`
	Recommendation string `json:"recommendation" bson:"recommendation"`
}

// ValidationReport is immutable once computed; re-running validation replaces it.
type ValidationReport struct {
	SessionID         string         `json:"sessionId,omitempty" bson:"sessionId"`
	Verified          []VerifiedItem `json:"verified" bson:"verified"`
	Issues            []Issue        `json:"issues" bson:"issues"`
	Score             int            `json:"score" bson:"score"`
	RequirementsKnown bool           `json:"requirementsKnown" bson:"requirementsKnown"`
	CompletedAt       time.Time      `json:"completedAt" bson:"completedAt"`
}

// ReportSummary is what an unpaid session gets to see.
type ReportSummary struct {
	SessionID     string    `json:"sessionId"`
	Score         int       `json:"score"`
	VerifiedCount int       `json:"verifiedCount"`
	IssueCount    int       `json:"issueCount"`
	CompletedAt   time.Time `json:"completedAt"`
	Locked        bool      `json:"locked"`
}

func (r *ValidationReport) Summary() ReportSummary {
	return ReportSummary{
		SessionID:     r.SessionID,
		Score:         r.Score,
		VerifiedCount: len(r.Verified),
		IssueCount:    len(r.Issues),
		CompletedAt:   r.CompletedAt,
		Locked:        true,
	}
}
