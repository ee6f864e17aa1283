package config

type InternalConfig struct {
	App      App
	JWT      AppJWT
	Minio    AppMinio
	RabbitMQ AppRabbitMQ
	Editor   AppEditor
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	Timezone                   string
	EndpointPrefix             string
	MaxRequests                int
	ShutdownTimeoutInSeconds   int
	MaxTimeRequestsPerSeconds  int
	RequestBodyLimitInMegabyte int
	RequestTimeoutInSeconds    int
}

type AppJWT struct {
	Secret string
}

type AppMinio struct {
	BucketName                          string
	ImageMaxUploadSizeInMB              int
	PreSignedUrlObjectExpiryTimeInHours int
	ImageUploadMaxRequestsPerMinute     int
	ImageUploadTimeoutInSeconds         int
}

type AppRabbitMQ struct {
	TemplateEventsQueue string
}

// AppEditor tunes editor sessions and the template save path.
type AppEditor struct {
	SaveDebounceInMilliseconds int
	SaveTimeoutInSeconds       int
	SaveLockExpiryInSeconds    int
}
