package constvars

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientInvalidImageFormat            = "invalid image format, only png, jpeg and webp are allowed"
	ErrClientImageTooLarge                 = "image is too large"
	ErrClientRequestBodyTooLarge           = "request body is too large"
	ErrClientEditorSessionNotFound         = "editor session not found, please reopen the template"
	ErrClientEditorSessionClosed           = "editor session already closed"
	ErrClientItemNotFound                  = "question item not found"
	ErrClientBranchNotFound                = "follow-up branch not found"
	ErrClientOptionNotFound                = "answer option not found"
	ErrClientOptionAlreadyExists           = "answer option already exists"
	ErrClientOptionEmpty                   = "answer option must not be empty"
	ErrClientOptionsNotEditable            = "this question kind has no editable options"
	ErrClientFollowupKeyInvalid            = "follow-up must be attached to an existing answer option"
	ErrClientHiddenKindNotEditable         = "this question kind cannot be edited here"
	ErrClientUnknownOperation              = "unknown editor operation"
	ErrClientItemKindInvalid               = "unknown question kind"
	ErrClientItemFieldNotApplicable        = "this field does not apply to the question kind"
	ErrClientTemplateValidation            = "question '%s' requires an attached image"
	ErrClientTemplatePartiallySaved        = "template was only partially saved, please save again"
	ErrClientTemplateSaveInProgress        = "template is being saved by another session, please try again"
	ErrClientTooManyRequests               = "too many requests, you are blocked temporarily"
)

// Error messages for developers
const (
	ErrDevInvalidInput                = "invalid input"
	ErrDevCannotParseJSON             = "cannot parse JSON"
	ErrDevCannotMarshalJSON           = "cannot marshal JSON"
	ErrDevCannotParseMultipartForm    = "cannot parse multipart form"
	ErrDevValidationFailed            = "validation failed"
	ErrDevImageValidationFailed       = "image validation failed"
	ErrDevServerDeadlineExceeded      = "server deadline exceeded"
	ErrDevURLParamIDValidationFailed  = "parameter %s validation failed"
	ErrDevMissingRequestID            = "request id missing from context"
	ErrDevAuthSigningMethod           = "unexpected signing method"
	ErrDevAuthGenerateToken           = "failed to generate token"
	ErrDevAuthTokenInvalidOrExpired   = "token invalid or expired"
	ErrDevAuthTokenMissing            = "token missing"
	ErrDevAuthInvalidSession          = "invalid session"
	ErrDevEditorSessionNotFound       = "editor session %s not found"
	ErrDevEditorSessionClosed         = "editor session %s already closed"
	ErrDevItemNotFound                = "item %s not found in tree"
	ErrDevBranchNotFound              = "branch %s/%s not found in tree"
	ErrDevOptionNotFound              = "option %q not found on item %s"
	ErrDevOptionAlreadyExists         = "option %q already exists on item %s"
	ErrDevOptionEmpty                 = "option text is empty"
	ErrDevOptionsNotEditable          = "item %s of kind %s has no editable options"
	ErrDevFollowupKeyInvalid          = "option key %q is not valid for item %s"
	ErrDevHiddenKindNotEditable       = "kind %s is hidden from the editor"
	ErrDevUnknownOperation            = "unknown editor operation %q"
	ErrDevItemKindInvalid             = "item kind %q is not known"
	ErrDevItemFieldNotApplicable      = "field %s does not apply to item %s of kind %s"
	ErrDevTemplateValidation          = "image-annotation item %s has no attached image"
	ErrDevTemplatePartiallySaved      = "first visit variant written, repeat visit variant failed"
	ErrDevTemplateSaveLockNotAcquired = "save lock for template %s not acquired"

	// Mongo DB messages
	ErrDevDBFailedToFindDocument   = "failed to find document"
	ErrDevDBFailedToUpsertDocument = "failed to upsert document"

	// Minio messages
	ErrDevMinioFailedToCreateObject          = "failed to create object into minio storage with bucket name '%s'"
	ErrDevMinioFailedToGetObjectPresignedURL = "failed to get object URL from minio storage with bucket name '%s'"

	// Redis messages
	ErrDevRedisSetData    = "failed to SET data into redis"
	ErrDevRedisGetData    = "failed to GET data from redis"
	ErrDevRedisGetNoData  = "failed to GET data from redis, there is no data associated with key %s"
	ErrDevRedisDeleteData = "failed to DELETE data from redis"
	ErrDevRedisUnlock     = "failed to release redis lock"

	// RabbitMQ messages
	ErrDevRabbitMQPublishMessage = "failed to publish message to rabbitmq queue '%s'"
)
