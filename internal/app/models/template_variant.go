package models

import (
	"intake-service/internal/pkg/constvars"
	"time"
)

type VisitType string

const (
	VisitTypeFirstVisit  VisitType = constvars.VisitTypeFirstVisit
	VisitTypeRepeatVisit VisitType = constvars.VisitTypeRepeatVisit
)

func (v VisitType) IsValid() bool {
	return v == VisitTypeFirstVisit || v == VisitTypeRepeatVisit
}

// ItemSettings are per top-level item knobs of one variant that the editor
// carries through without interpreting.
type ItemSettings struct {
	FollowupMaxQuestions *int   `json:"followup_max_questions,omitempty" bson:"followup_max_questions,omitempty"`
	FreeTextPrompt       string `json:"free_text_prompt,omitempty" bson:"free_text_prompt,omitempty"`
}

// TemplateVariant is the persisted item list of one template for one visit type.
// Membership in Items is what makes an item applicable to that visit type.
type TemplateVariant struct {
	TemplateID string                  `json:"template_id" bson:"template_id"`
	VisitType  VisitType               `json:"visit_type" bson:"visit_type"`
	Items      []Item                  `json:"items" bson:"items"`
	Settings   map[string]ItemSettings `json:"settings,omitempty" bson:"settings,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at" bson:"updated_at"`
}
