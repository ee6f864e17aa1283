package requests

type OpenEditorSession struct {
	TemplateID string `validate:"required"`
}

type EditorOperation struct {
	Op            string           `json:"op" validate:"required,oneof=add_item add_followup delete_item move_item move_followup add_option rename_option delete_option move_option change_kind set_applicability update_item attach_image"`
	ItemID        string           `json:"item_id,omitempty"`
	OptionKey     string           `json:"option_key,omitempty" validate:"required_if=Op add_followup,required_if=Op move_followup"`
	Option        string           `json:"option,omitempty" validate:"required_if=Op add_option,required_if=Op rename_option,required_if=Op delete_option"`
	NewOption     string           `json:"new_option,omitempty" validate:"required_if=Op rename_option"`
	Kind          string           `json:"kind,omitempty" validate:"required_if=Op add_item,required_if=Op add_followup,required_if=Op change_kind,omitempty,oneof=text yes_no multi_choice date numeric_range image_annotation personal_info"`
	Label         string           `json:"label,omitempty"`
	From          *int             `json:"from,omitempty" validate:"required_if=Op move_item,required_if=Op move_followup,required_if=Op move_option,omitempty,gte=0"`
	To            *int             `json:"to,omitempty" validate:"required_if=Op move_item,required_if=Op move_followup,required_if=Op move_option,omitempty,gte=0"`
	Applicability *Applicability   `json:"applicability,omitempty" validate:"required_if=Op set_applicability"`
	Fields        *ItemFieldsPatch `json:"fields,omitempty" validate:"required_if=Op update_item"`
	ImageHandle   string           `json:"image_handle,omitempty" validate:"required_if=Op attach_image"`
	SessionID     string           `json:"-"`
}

type Applicability struct {
	FirstVisit  bool `json:"first_visit"`
	RepeatVisit bool `json:"repeat_visit"`
}

type ItemFieldsPatch struct {
	Label             *string            `json:"label,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Required          *bool              `json:"required,omitempty"`
	AllowFreeText     *bool              `json:"allow_free_text,omitempty"`
	Range             *NumericRange      `json:"range,omitempty"`
	GenderRestriction *GenderRestriction `json:"gender_restriction,omitempty"`
	AgeRestriction    *AgeRestriction    `json:"age_restriction,omitempty"`
}

type NumericRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max" validate:"gtfield=Min"`
	Step float64 `json:"step" validate:"gt=0"`
}

type GenderRestriction struct {
	Enabled bool   `json:"enabled"`
	Gender  string `json:"gender" validate:"required_if=Enabled true,omitempty,oneof=male female"`
}

type AgeRestriction struct {
	Enabled bool `json:"enabled"`
	MinAge  *int `json:"min_age,omitempty" validate:"omitempty,gte=0"`
	MaxAge  *int `json:"max_age,omitempty" validate:"omitempty,gte=0"`
}

type UploadItemImage struct {
	SessionID      string `validate:"required,uuid4"`
	ItemID         string `validate:"required"`
	Image          []byte `validate:"required"`
	ImageName      string
	ImageExtension string `validate:"required"`
	ContentType    string `validate:"required"`
}
