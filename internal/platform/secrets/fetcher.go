package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const defaultVersion = "latest"

// ErrSecretNotFound is returned when neither Secret Manager nor the fallback file know the reference.
var ErrSecretNotFound = errors.New("secrets: secret not found")

// Accessor abstracts the Secret Manager client for testing.
type Accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// Fetcher resolves secret:// references against Secret Manager with a local fallback file.
type Fetcher struct {
	client    Accessor
	closer    func() error
	projectID string
	fallback  map[string]string
	logger    *zap.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// Option customises Fetcher construction.
type Option func(*fetcherOptions)

type fetcherOptions struct {
	projectID    string
	fallbackPath string
	logger       *zap.Logger
	clientOpts   []option.ClientOption
	accessor     Accessor
}

// WithProject sets the Secret Manager project used for bare secret names.
func WithProject(projectID string) Option {
	return func(o *fetcherOptions) {
		o.projectID = strings.TrimSpace(projectID)
	}
}

// WithFallbackFile sets the path of a local name=value file consulted when
// Secret Manager is unreachable or the secret is absent.
func WithFallbackFile(path string) Option {
	return func(o *fetcherOptions) {
		o.fallbackPath = strings.TrimSpace(path)
	}
}

// WithLogger attaches a logger for resolution diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *fetcherOptions) {
		o.logger = logger
	}
}

// WithClientOptions appends Google API client options.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *fetcherOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// WithAccessor injects a pre-built accessor, bypassing client construction (tests).
func WithAccessor(accessor Accessor) Option {
	return func(o *fetcherOptions) {
		o.accessor = accessor
	}
}

// NewFetcher constructs a Fetcher. When no accessor is injected a real
// Secret Manager client is created; failure to create one is tolerated if a
// fallback file is available.
func NewFetcher(ctx context.Context, opts ...Option) (*Fetcher, error) {
	options := fetcherOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	fetcher := &Fetcher{
		client:    options.accessor,
		projectID: options.projectID,
		logger:    options.logger,
		cache:     make(map[string]string),
	}

	if fetcher.client == nil {
		client, err := secretmanager.NewClient(ctx, options.clientOpts...)
		if err != nil {
			if options.fallbackPath == "" {
				return nil, fmt.Errorf("secrets: create client: %w", err)
			}
			options.logger.Warn("secret manager client unavailable; using fallback file only", zap.Error(err))
		} else {
			fetcher.client = client
			fetcher.closer = client.Close
		}
	}

	if options.fallbackPath != "" {
		fallback, err := loadFallbackFile(options.fallbackPath)
		if err != nil {
			return nil, err
		}
		fetcher.fallback = fallback
	}

	return fetcher, nil
}

// Close releases the underlying client, if any.
func (f *Fetcher) Close() error {
	if f == nil || f.closer == nil {
		return nil
	}
	return f.closer()
}

// Resolve returns the payload for a secret://name?version=N reference.
func (f *Fetcher) Resolve(ctx context.Context, ref string) (string, error) {
	if f == nil {
		return "", errors.New("secrets: fetcher is nil")
	}

	name, version, err := parseReference(ref)
	if err != nil {
		return "", err
	}

	cacheKey := name + "@" + version
	f.mu.RLock()
	if value, ok := f.cache[cacheKey]; ok {
		f.mu.RUnlock()
		return value, nil
	}
	f.mu.RUnlock()

	if f.client != nil {
		resourceName := f.resourceName(name, version)
		resp, err := f.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resourceName})
		if err == nil && resp.GetPayload() != nil {
			value := string(resp.GetPayload().GetData())
			f.mu.Lock()
			f.cache[cacheKey] = value
			f.mu.Unlock()
			return value, nil
		}
		if err != nil {
			f.logger.Warn("secret manager access failed", zap.String("secret", name), zap.Error(err))
		}
	}

	if value, ok := f.fallback[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

func (f *Fetcher) resourceName(name, version string) string {
	if strings.HasPrefix(name, "projects/") {
		if strings.Contains(name, "/versions/") {
			return name
		}
		return fmt.Sprintf("%s/versions/%s", name, version)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", f.projectID, name, version)
}

func parseReference(ref string) (name, version string, err error) {
	trimmed := strings.TrimSpace(ref)
	if !strings.HasPrefix(trimmed, "secret://") {
		return "", "", fmt.Errorf("secrets: unsupported reference %q", ref)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("secrets: parse reference %q: %w", ref, err)
	}

	name = strings.Trim(parsed.Host+parsed.Path, "/")
	if name == "" {
		return "", "", fmt.Errorf("secrets: empty secret name in %q", ref)
	}

	version = strings.TrimSpace(parsed.Query().Get("version"))
	if version == "" {
		version = defaultVersion
	}
	return name, version, nil
}

func loadFallbackFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("secrets: open fallback file %s: %w", path, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("secrets: read fallback file %s: %w", path, err)
	}
	return values, nil
}
