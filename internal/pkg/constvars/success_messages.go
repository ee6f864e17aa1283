package constvars

const (
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"
)

const (
	OpenEditorSessionSuccessMessage  = "editor session opened successfully"
	GetEditorSessionSuccessMessage   = "get editor session successfully"
	ApplyEditorOperationSuccess      = "operation applied successfully"
	SaveTemplateSuccessMessage       = "template saved successfully"
	CloseEditorSessionSuccessMessage = "editor session closed successfully"
	UploadItemImageSuccessMessage    = "image attached successfully"
	GetTemplateVariantSuccessMessage = "get template variant successfully"
)
