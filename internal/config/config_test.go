package config

import "testing"

func TestAccountBaseURLDefaultsToEmpty(t *testing.T) {
	cfg := Default()

	// An empty base URL selects the built-in mock account API at startup;
	// a real backend must be configured explicitly.
	if cfg.Account.BaseURL != "" {
		t.Errorf("account base_url defaults to %q, want empty", cfg.Account.BaseURL)
	}
	if cfg.Account.MaxRetries != 2 {
		t.Errorf("account max_retries = %d, want 2", cfg.Account.MaxRetries)
	}
}

func TestAccountBaseURLFromEnv(t *testing.T) {
	t.Setenv("VOICEBANK_ACCOUNT_BASE_URL", "http://accounts.internal:9000")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Account.BaseURL != "http://accounts.internal:9000" {
		t.Errorf("account base_url = %q", cfg.Account.BaseURL)
	}
}
