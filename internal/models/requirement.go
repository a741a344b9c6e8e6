// internal/models/requirement.go
package models

// RequirementRule is one checklist item for a (country, visaType) pair.
// AcceptedFormats holds lowercase extensions or MIME subtypes; an empty set
// accepts any format.
type RequirementRule struct {
	ID              string   `json:"id" yaml:"id" bson:"id"`
	Name            string   `json:"name" yaml:"name" bson:"name"`
	Description     string   `json:"description" yaml:"description" bson:"description"`
	Required        bool     `json:"required" yaml:"required" bson:"required"`
	AcceptedFormats []string `json:"acceptedFormats" yaml:"acceptedFormats" bson:"acceptedFormats"`
}

// Destination is a selectable (country, visa category, visa type) entry.
type Destination struct {
	Country      string `json:"country"`
	CountryName  string `json:"countryName"`
	VisaCategory string `json:"visaCategory"`
	VisaType     string `json:"visaType"`
	Label        string `json:"label"`
	Requirements int    `json:"requirements"`
}

type RequirementsResponse struct {
	Country      string            `json:"country"`
	VisaType     string            `json:"visaType"`
	Requirements []RequirementRule `json:"requirements"`
}
