package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"cannmenus": map[string]any{
			"baseUrl": "",
			"apiKey":  "",
		},
		"payments": map[string]any{
			"stripe": map[string]any{
				"webhookSecret": "",
			},
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"toolCache": map[string]any{
			"defaultTtl": "5m",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "CANNMENUS_BASEURL", want: "cannmenus.baseUrl"},
		{envKey: "CANNMENUS_APIKEY", want: "cannmenus.apiKey"},
		{envKey: "PAYMENTS_STRIPE_WEBHOOKSECRET", want: "payments.stripe.webhookSecret"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "TOOLCACHE_DEFAULTTTL", want: "toolCache.defaultTtl"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
