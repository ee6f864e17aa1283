package constvars

// Validation messages for users, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required":    "is required",
	"required_if": "is required for this operation",
	"min":         "must be at least %s",
	"max":         "maximum at %s",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"gtfield":     "must be greater than %s",
	"oneof":       "must be one of %s",
	"uuid4":       "must be a valid identifier",
	"visit_type":  "must be either first_visit or repeat_visit",
}

// Validation tags whose message embeds the tag parameter
var TagsWithParams = map[string]bool{
	"min":     true,
	"max":     true,
	"gt":      true,
	"gte":     true,
	"gtfield": true,
	"oneof":   true,
}
