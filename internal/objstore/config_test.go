package objstore

import "testing"

func validConfig() Config {
	return Config{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Region:    "us-east-1",
		Bucket:    "surfgen",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	cases := []func(*Config){
		func(c *Config) { c.Endpoint = "" },
		func(c *Config) { c.Endpoint = "http://localhost:9000" },
		func(c *Config) { c.AccessKey = "" },
		func(c *Config) { c.SecretKey = "" },
		func(c *Config) { c.Region = "" },
		func(c *Config) { c.Bucket = "" },
	}
	for i, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: Validate() accepted invalid config %+v", i, cfg)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SURFGEN_MINIO_ENDPOINT", "minio.internal:9000")
	t.Setenv("SURFGEN_MINIO_ACCESS_KEY", "ak")
	t.Setenv("SURFGEN_MINIO_SECRET_KEY", "sk")
	t.Setenv("SURFGEN_MINIO_BUCKET", "records")
	t.Setenv("SURFGEN_MINIO_PREFIX", "prod")
	t.Setenv("SURFGEN_MINIO_USE_SSL", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.Endpoint != "minio.internal:9000" || cfg.Bucket != "records" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.UseSSL || cfg.Prefix != "prod" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
