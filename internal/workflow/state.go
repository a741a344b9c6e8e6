// internal/workflow/state.go
package workflow

import (
	"visa-checker-backend/internal/models"
)

type Step int

const (
	StepDestination Step = iota + 1
	StepRequirements
	StepUpload
	StepPersonalInfo
	StepReview
	StepPayment
	StepResults
)

const (
	FirstStep = StepDestination
	LastStep  = StepResults
)

var stepNames = map[Step]string{
	StepDestination:  "destination",
	StepRequirements: "requirements",
	StepUpload:       "upload",
	StepPersonalInfo: "personal_info",
	StepReview:       "review",
	StepPayment:      "payment",
	StepResults:      "results",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Clamp pins s into [FirstStep, LastStep].
func Clamp(s Step) Step {
	if s < FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s
}

// Data is the user input gathered across the steps.
type Data struct {
	Selection        models.Selection                `json:"selection"`
	PersonalInfo     models.PersonalInfo             `json:"personalInfo"`
	UploadedFiles    []models.UploadedFileDescriptor `json:"uploadedFiles"`
	CheckedDocuments map[string]bool                 `json:"checkedDocuments"`
}

type State struct {
	CurrentStep   Step                     `json:"currentStep"`
	Data          Data                     `json:"validationData"`
	Results       *models.ValidationReport `json:"validationResults"`
	SessionID     string                   `json:"sessionId"`
	PaymentStatus models.PaymentStatus     `json:"paymentStatus"`
}

func Initial() State {
	return State{
		CurrentStep: FirstStep,
		Data: Data{
			UploadedFiles:    []models.UploadedFileDescriptor{},
			CheckedDocuments: map[string]bool{},
		},
		PaymentStatus: models.PaymentPending,
	}
}

// Clone returns a copy sharing no mutable memory with s.
func (s State) Clone() State {
	out := s

	if s.Data.UploadedFiles != nil {
		out.Data.UploadedFiles = make([]models.UploadedFileDescriptor, len(s.Data.UploadedFiles))
		copy(out.Data.UploadedFiles, s.Data.UploadedFiles)
	}
	if s.Data.CheckedDocuments != nil {
		out.Data.CheckedDocuments = make(map[string]bool, len(s.Data.CheckedDocuments))
		for k, v := range s.Data.CheckedDocuments {
			out.Data.CheckedDocuments[k] = v
		}
	}
	if s.Results != nil {
		r := *s.Results
		if s.Results.Verified != nil {
			r.Verified = make([]models.VerifiedItem, len(s.Results.Verified))
			copy(r.Verified, s.Results.Verified)
		}
		if s.Results.Issues != nil {
			r.Issues = make([]models.Issue, len(s.Results.Issues))
			copy(r.Issues, s.Results.Issues)
		}
		out.Results = &r
	}
	return out
}
