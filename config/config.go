package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Jobs is the internal server hosting cron endpoints and /metrics.
	Jobs struct {
		Port   int    `json:"port" yaml:"port"`
		Secret string `json:"secret" yaml:"secret"`
	} `json:"jobs" yaml:"jobs"`

	Firebase FirebaseConfig `json:"firebase" yaml:"firebase"`

	SecretKey struct {
		Access  string `json:"access" yaml:"access"`
		Refresh string `json:"refresh" yaml:"refresh"`
	} `json:"secretKey" yaml:"secretKey"`

	GoogleOAuth *GoogleOAuthConfig `json:"googleOAuth" yaml:"googleOAuth"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// CannMenus configures the third-party catalog proxy.
	CannMenus *CannMenusConfig `json:"cannmenus" yaml:"cannmenus"`

	// ToolCache configures the in-process memoization cache.
	ToolCache *ToolCacheConfig `json:"toolCache" yaml:"toolCache"`

	// Billing configures tier fallbacks and overage flags.
	Billing *BillingConfig `json:"billing" yaml:"billing"`

	// Checkout configures cart pricing and order lifecycle windows.
	Checkout *CheckoutConfig `json:"checkout" yaml:"checkout"`

	// Payments configures the payment gateways and webhook secrets.
	Payments *PaymentsConfig `json:"payments" yaml:"payments"`

	// Email configures the transactional email provider.
	Email *EmailConfig `json:"email" yaml:"email"`

	// PubSub configures event publishing.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Blob configures packaging image storage.
	Blob *BlobConfig `json:"blob" yaml:"blob"`

	// Agent configures the LLM client used by playbooks, packaging
	// analysis and churn prediction.
	Agent *AgentConfig `json:"agent" yaml:"agent"`

	// Redis configures the webhook idempotency store.
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	// QRCode configures order pickup QR generation.
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// FirebaseConfig locates the Firestore project backing all collections.
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

type GoogleOAuthConfig struct {
	ClientID string `json:"clientId" yaml:"clientId"`
}

// AuthConfig defines authentication-related configuration.
type AuthConfig struct {
	BcryptCost int           `json:"bcryptCost" yaml:"bcryptCost"`
	AccessTTL  time.Duration `json:"accessTtl" yaml:"accessTtl"`
	RefreshTTL time.Duration `json:"refreshTtl" yaml:"refreshTtl"`
}

// CannMenusConfig defines the upstream catalog API and retry/cache policy.
type CannMenusConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string        `json:"apiKey" yaml:"apiKey"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Retries is the maximum number of attempts made on 429 or 5xx
	// responses before the error surfaces.
	Retries int `json:"retries" yaml:"retries"`

	// BackoffBase is the initial retry delay, doubled per attempt.
	BackoffBase time.Duration `json:"backoffBase" yaml:"backoffBase"`

	// MenuTTL and SearchTTL bound the Firestore-backed response cache.
	MenuTTL   time.Duration `json:"menuTtl" yaml:"menuTtl"`
	SearchTTL time.Duration `json:"searchTtl" yaml:"searchTtl"`
}

// ToolCacheConfig defines defaults for the in-memory tool cache.
type ToolCacheConfig struct {
	DefaultTTL time.Duration `json:"defaultTtl" yaml:"defaultTtl"`
}

// BillingConfig defines usage metering behavior.
type BillingConfig struct {
	// AtRiskThreshold is the percent-of-limit at which a metric is
	// flagged, e.g. 80.
	AtRiskThreshold float64 `json:"atRiskThreshold" yaml:"atRiskThreshold"`
}

// CheckoutConfig defines cart pricing and order lifecycle windows.
type CheckoutConfig struct {
	// PendingMaxAge is how long an unpaid order may sit before the
	// nightly job cancels it.
	PendingMaxAge time.Duration `json:"pendingMaxAge" yaml:"pendingMaxAge"`

	// PickupWindow is how long a paid order waits before the nightly
	// job marks it fulfilled.
	PickupWindow time.Duration `json:"pickupWindow" yaml:"pickupWindow"`
}

// PaymentsConfig defines gateway credentials and webhook secrets.
type PaymentsConfig struct {
	Provider string `json:"provider" yaml:"provider"` // stripe | aeropay | smokeypay

	Stripe *StripeConfig `json:"stripe" yaml:"stripe"`

	Aeropay *HMACGatewayConfig `json:"aeropay" yaml:"aeropay"`

	SmokeyPay *HMACGatewayConfig `json:"smokeypay" yaml:"smokeypay"`
}

type StripeConfig struct {
	APIKey        string `json:"apiKey" yaml:"apiKey"`
	WebhookSecret string `json:"webhookSecret" yaml:"webhookSecret"`
}

// HMACGatewayConfig covers the REST gateways that sign webhooks with
// an HMAC-SHA256 header (Aeropay, SmokeyPay).
type HMACGatewayConfig struct {
	BaseURL       string `json:"baseUrl" yaml:"baseUrl"`
	APIKey        string `json:"apiKey" yaml:"apiKey"`
	WebhookSecret string `json:"webhookSecret" yaml:"webhookSecret"`
}

// EmailConfig defines the transactional email provider.
type EmailConfig struct {
	Provider  string `json:"provider" yaml:"provider"` // mailjet | sendgrid | noop
	FromEmail string `json:"fromEmail" yaml:"fromEmail"`
	FromName  string `json:"fromName" yaml:"fromName"`

	// Operator receives platform digests such as churn reports.
	Operator string `json:"operator" yaml:"operator"`

	Mailjet *MailjetConfig `json:"mailjet" yaml:"mailjet"`

	SendGrid *SendGridConfig `json:"sendgrid" yaml:"sendgrid"`
}

type MailjetConfig struct {
	APIKey    string `json:"apiKey" yaml:"apiKey"`
	SecretKey string `json:"secretKey" yaml:"secretKey"`
}

type SendGridConfig struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub.
	Provider string `json:"provider" yaml:"provider"`

	ProjectID string `json:"projectId" yaml:"projectId"`

	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider).
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// BlobConfig defines where packaging images are stored.
type BlobConfig struct {
	// URL in gocloud.dev form, e.g. "gs://canopy-packaging" or
	// "file:///var/lib/canopy/packaging".
	URL string `json:"url" yaml:"url"`
}

// AgentConfig defines the LLM endpoint used by agent features.
type AgentConfig struct {
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	Model   string `json:"model" yaml:"model"`
}

// RedisConfig defines the optional idempotency store.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// QRCodeConfig defines pickup QR generation parameters.
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: CANNMENUS_BASEURL -> cannmenus.baseUrl (not cannmenus.baseurl)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Billing == nil {
		cfg.Billing = &BillingConfig{}
	}
	if cfg.Billing.AtRiskThreshold <= 0 {
		cfg.Billing.AtRiskThreshold = 80
	}

	if cfg.CannMenus != nil {
		if cfg.CannMenus.Retries <= 0 {
			cfg.CannMenus.Retries = 3
		}
		if cfg.CannMenus.BackoffBase <= 0 {
			cfg.CannMenus.BackoffBase = 500 * time.Millisecond
		}
		if cfg.CannMenus.Timeout <= 0 {
			cfg.CannMenus.Timeout = 10 * time.Second
		}
		if cfg.CannMenus.MenuTTL <= 0 {
			cfg.CannMenus.MenuTTL = 15 * time.Minute
		}
		if cfg.CannMenus.SearchTTL <= 0 {
			cfg.CannMenus.SearchTTL = 5 * time.Minute
		}
	}

	if cfg.ToolCache == nil {
		cfg.ToolCache = &ToolCacheConfig{}
	}
	if cfg.ToolCache.DefaultTTL <= 0 {
		cfg.ToolCache.DefaultTTL = 5 * time.Minute
	}

	if cfg.Checkout == nil {
		cfg.Checkout = &CheckoutConfig{}
	}
	if cfg.Checkout.PendingMaxAge <= 0 {
		cfg.Checkout.PendingMaxAge = 24 * time.Hour
	}
	if cfg.Checkout.PickupWindow <= 0 {
		cfg.Checkout.PickupWindow = 72 * time.Hour
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
