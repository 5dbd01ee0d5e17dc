package config

// LoadTestConfig returns an in-memory configuration that needs no external services.
func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "localhost",
			Port:      8081,
			RateLimit: 1000,
		},
		Store: StoreConfig{
			Provider:   "memory",
			BatchLimit: 500,
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Storage: StorageConfig{
			Provider: "none",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mail: MailConfig{
			FromName:        "Ndara Afrique",
			FromEmail:       "noreply@test.local",
			MaxPerHour:      10,
			AlertDigestCron: "0 7 * * *",
		},
		Payments: PaymentsConfig{
			SuccessStatuses: []string{"success", "successful"},
		},
	}
}
