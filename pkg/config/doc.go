// Package config loads application configuration from environment variables
// into annotated structs, with optional .env file support.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11. Each
// configuration type is parsed once per process and cached, so packages can
// call Load for their own Config struct without coordinating startup order.
//
// # Usage
//
//	type Config struct {
//		ConnString string `env:"DATABASE_URL,required"`
//		LockWait   time.Duration `env:"REGISTRATION_LOCK_WAIT" envDefault:"3s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Use ResetCache in tests that mutate the process environment.
package config
