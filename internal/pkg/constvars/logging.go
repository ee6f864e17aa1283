package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingDataKey               = "data"
	LoggingSessionDataKey        = "session_data"
	LoggingResponseKey           = "response"
	LoggingRequestKey            = "request"
	LoggingResponseCountKey      = "response_count"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingQueryKey              = "query"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingErrorTypeKey          = "error_type"

	LoggingTemplateIDKey       = "template_id"
	LoggingEditorSessionIDKey  = "editor_session_id"
	LoggingItemIDKey           = "item_id"
	LoggingVisitTypeKey        = "visit_type"
	LoggingOperationKey        = "operation"
	LoggingFirstVisitCountKey  = "first_visit_count"
	LoggingRepeatVisitCountKey = "repeat_visit_count"
	LoggingHiddenCountKey      = "hidden_count"
	LoggingBucketNameKey       = "bucket_name"
	LoggingObjectNameKey       = "object_name"
	LoggingQueueNameKey        = "queue_name"
)
