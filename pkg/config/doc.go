// Package config loads typed configuration structs from the environment.
//
// It combines github.com/joho/godotenv for optional .env files with
// github.com/caarlos0/env for tag-driven parsing:
//
//	type PostgresConfig struct {
//	    DSN string `env:"DATABASE_URL,required"`
//	}
//
//	var cfg PostgresConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// The default .env file is read at most once per process; a missing file is
// not an error.
package config
