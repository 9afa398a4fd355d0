package config

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultEnvFile       = ".env"
	defaultPort          = "8080"
	defaultReadTimeout   = 15 * time.Second
	defaultWriteTimeout  = 30 * time.Second
	defaultIdleTimeout   = 120 * time.Second
	defaultSessionCookie = "session"
	defaultSessionTTL    = 12 * time.Hour
	defaultPollInterval  = 3 * time.Second
	defaultStoreBackend  = "firebase"
	defaultEnvironment   = "local"

	secretRefPrefix = "secret://"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Firebase FirebaseConfig
	Access   AccessConfig
	Session  SessionConfig
	Store    StoreConfig
	Media    MediaConfig
	Security SecurityConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	DatabaseURL     string
	WebAPIKey       string
}

// AccessConfig carries the two authorised-principal allow-lists.
// The lists replace the compiled-in constants of earlier revisions so policy
// can change without a rebuild.
type AccessConfig struct {
	Clients    []string
	Developers []string
}

// SessionConfig controls the admin session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
}

// StoreConfig selects and tunes the backing document store.
type StoreConfig struct {
	Backend      string
	PollInterval time.Duration
}

// MediaConfig lists optional media storage parameters.
type MediaConfig struct {
	Bucket string
}

// SecurityConfig groups deployment-environment settings.
type SecurityConfig struct {
	Environment string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Bootstrap carries the settings main needs before Load can run. The secret
// fetcher that Load resolves secret:// references through is itself configured
// from the environment, so these keys are read separately.
type Bootstrap struct {
	SecretsProject      string
	SecretsFallbackFile string
}

// LoadBootstrap reads secret-fetcher settings from the same sources Load
// consults. The Secret Manager project falls back to the Firebase project when
// MENU_SECRETS_PROJECT is unset.
func LoadBootstrap(opts ...Option) (Bootstrap, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	lookup, err := buildLookup(options)
	if err != nil {
		return Bootstrap{}, err
	}

	project := stringWithDefault(lookup, "MENU_SECRETS_PROJECT", "")
	if project == "" {
		project = stringWithDefault(lookup, "MENU_FIREBASE_PROJECT_ID", "")
	}
	return Bootstrap{
		SecretsProject:      project,
		SecretsFallbackFile: stringWithDefault(lookup, "MENU_SECRETS_FALLBACK_FILE", ""),
	}, nil
}

func buildLookup(options loaderOptions) (func(string) (string, bool), error) {
	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}, nil
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	lookup, err := buildLookup(options)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "MENU_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "MENU_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "MENU_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "MENU_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "MENU_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "MENU_FIREBASE_CREDENTIALS_FILE", ""),
			DatabaseURL:     stringWithDefault(lookup, "MENU_FIREBASE_DATABASE_URL", ""),
			WebAPIKey:       stringWithDefault(lookup, "MENU_FIREBASE_WEB_API_KEY", ""),
		},
		Access: AccessConfig{
			Clients:    csvWithDefault(lookup, "MENU_ACCESS_CLIENTS"),
			Developers: csvWithDefault(lookup, "MENU_ACCESS_DEVELOPERS"),
		},
		Session: SessionConfig{
			CookieName: stringWithDefault(lookup, "MENU_SESSION_COOKIE", defaultSessionCookie),
			TTL:        durationWithDefault(lookup, "MENU_SESSION_TTL", defaultSessionTTL),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(stringWithDefault(lookup, "MENU_STORE_BACKEND", defaultStoreBackend)),
			PollInterval: durationWithDefault(lookup, "MENU_STORE_POLL_INTERVAL", defaultPollInterval),
		},
		Media: MediaConfig{
			Bucket: stringWithDefault(lookup, "MENU_MEDIA_BUCKET", ""),
		},
		Security: SecurityConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "MENU_ENVIRONMENT", defaultEnvironment)),
		},
	}

	if err := resolveSecrets(ctx, &cfg, options.secret); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolveSecrets(ctx context.Context, cfg *Config, resolver SecretResolver) error {
	targets := []*string{&cfg.Firebase.WebAPIKey}
	for _, target := range targets {
		value := strings.TrimSpace(*target)
		if !strings.HasPrefix(value, secretRefPrefix) {
			continue
		}
		if resolver == nil {
			return &SecretError{Ref: value, Err: fmt.Errorf("secret resolver not configured")}
		}
		resolved, err := resolver.ResolveSecret(ctx, value)
		if err != nil {
			return &SecretError{Ref: value, Err: err}
		}
		*target = resolved
	}
	return nil
}

func validate(cfg Config) error {
	var missing []string
	switch cfg.Store.Backend {
	case "firebase":
		if strings.TrimSpace(cfg.Firebase.ProjectID) == "" {
			missing = append(missing, "Firebase.ProjectID")
		}
		if strings.TrimSpace(cfg.Firebase.DatabaseURL) == "" {
			missing = append(missing, "Firebase.DatabaseURL")
		}
	case "memory":
	default:
		missing = append(missing, "Store.Backend")
	}
	if cfg.Store.PollInterval <= 0 {
		missing = append(missing, "Store.PollInterval")
	}
	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func csvWithDefault(lookup lookupFunc, key string) []string {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: open env file %s: %w", path, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}
