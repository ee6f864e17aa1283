package constvars

type ContextKey string

const (
	ResourceTemplates      = "templates"
	ResourceEditorSessions = "editor-sessions"
)

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_SESSION_DATA_KEY         ContextKey = "session_data"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "INTAKE_SVC_"
	SERVICE_NAME      = "intake-service"
)

const (
	MongoCollectionTemplateVariants = "template_variants"
)

const (
	RedisKeyTemplateSaveLockFormat = "template_save_lock:%s"
	RedisKeyAdminSessionFormat     = "admin_session:%s"
)

const (
	EventTypeTemplateSaved = "template.saved"
)

const (
	MinioObjectPrefixAnnotationImage = "annotation"
)

// Sniffed content type to stored file extension
var ImageAllowedAnnotationFormats = map[string]string{
	MIMEImagePNG:  ".png",
	MIMEImageJPEG: ".jpg",
	MIMEImageWEBP: ".webp",
}

const (
	VisitTypeFirstVisit  = "first_visit"
	VisitTypeRepeatVisit = "repeat_visit"
)

const (
	EditorOpAddItem          = "add_item"
	EditorOpAddFollowup      = "add_followup"
	EditorOpDeleteItem       = "delete_item"
	EditorOpMoveItem         = "move_item"
	EditorOpMoveFollowup     = "move_followup"
	EditorOpAddOption        = "add_option"
	EditorOpRenameOption     = "rename_option"
	EditorOpDeleteOption     = "delete_option"
	EditorOpMoveOption       = "move_option"
	EditorOpChangeKind       = "change_kind"
	EditorOpSetApplicability = "set_applicability"
	EditorOpUpdateItem       = "update_item"
	EditorOpAttachImage      = "attach_image"
)
