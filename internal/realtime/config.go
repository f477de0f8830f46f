package realtime

import "courier"

type Config struct {
	NatsURL       string
	SubjectPrefix string
	JWTSecret     string
	RealtimePort  string
	DevMode       bool
}

// LoadConfig reads the relay settings from the process environment
func LoadConfig() Config {
	return Config{
		NatsURL:       courier.GetEnv("NATS_URL", "nats://localhost:4222"),
		SubjectPrefix: courier.GetEnv("NATS_SUBJECT_PREFIX", DefaultSubjectPrefix),
		JWTSecret:     courier.GetEnv("JWT_SECRET", ""),
		RealtimePort:  courier.GetEnv("REALTIME_PORT", ":8081"),
		DevMode:       courier.GetEnv("RUN_MODE", "") == "dev",
	}
}
