package config

const (
	// NotifierTypeDirect sends notification email inline from the request goroutine
	NotifierTypeDirect = "direct"
	// NotifierTypeRedis publishes notification events to a redis stream consumed by notify-worker
	NotifierTypeRedis = "redis"
)

// NotifierConfig represents the configuration for lead notifications
type NotifierConfig struct {
	Type   string `yaml:"type"`   // direct or redis
	Stream string `yaml:"stream"` // redis stream key
	Group  string `yaml:"group"`  // consumer group used by notify-worker
}
