package models

import "time"

type TemplateSavedEvent struct {
	EventType        string    `json:"event_type"`
	TemplateID       string    `json:"template_id"`
	EditorSessionID  string    `json:"editor_session_id"`
	FirstVisitCount  int       `json:"first_visit_count"`
	RepeatVisitCount int       `json:"repeat_visit_count"`
	SavedAt          time.Time `json:"saved_at"`
}
