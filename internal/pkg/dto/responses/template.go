package responses

import (
	"intake-service/internal/app/models"
	"time"
)

type EditorSession struct {
	SessionID       string        `json:"session_id"`
	TemplateID      string        `json:"template_id"`
	Items           []models.Item `json:"items"`
	Dirty           bool          `json:"dirty"`
	Saving          bool          `json:"saving"`
	HiddenItemCount int           `json:"hidden_item_count"`
	LastSaveError   string        `json:"last_save_error,omitempty"`
	LastSavedAt     *time.Time    `json:"last_saved_at,omitempty"`
	CreatedItemID   string        `json:"created_item_id,omitempty"`
}

type ItemImage struct {
	ItemID     string    `json:"item_id"`
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
