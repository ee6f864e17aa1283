package constvars

const (
	URLParamTemplateID = "template_id"
	URLParamSessionID  = "session_id"
	URLParamItemID     = "item_id"
	URLParamVisitType  = "visit_type"
)

const (
	FormFieldImage = "image"
)
