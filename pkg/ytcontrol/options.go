package ytcontrol

import (
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// Config holds the service configuration.
type Config = config.Config

// ModuleConfig holds the persisted module settings.
type ModuleConfig = config.ModuleConfig

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// Authorizer obtains a credential for the YouTube API.
type Authorizer = ports.Authorizer

// APIClientFactory constructs YouTube API clients.
type APIClientFactory = ports.APIClientFactory

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// Option configures optional behavior of the Service.
type Option func(*options)

type options struct {
	logger         Logger
	eventHandler   EventHandler
	plugins        []Plugin
	configPath     string
	authorizer     Authorizer
	apiFactory     APIClientFactory
	apiOptions     []option.ClientOption
	oauthEndpoint  *oauth2.Endpoint
	onConsentURL   func(string)
	disableMetrics bool
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for service events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the service runs.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithConfigPath sets the TOML file the module settings (including the
// stored token) are persisted to.
func WithConfigPath(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithAuthorizer replaces the OAuth2 consent flow.
func WithAuthorizer(a Authorizer) Option {
	return func(o *options) {
		o.authorizer = a
	}
}

// WithAPIClientFactory replaces the YouTube Data API client.
func WithAPIClientFactory(f APIClientFactory) Option {
	return func(o *options) {
		o.apiFactory = f
	}
}

// WithAPIOptions passes extra options to the YouTube Data API client.
func WithAPIOptions(opts ...option.ClientOption) Option {
	return func(o *options) {
		o.apiOptions = append(o.apiOptions, opts...)
	}
}

// WithOAuthEndpoint overrides the Google OAuth2 endpoint.
func WithOAuthEndpoint(e oauth2.Endpoint) Option {
	return func(o *options) {
		o.oauthEndpoint = &e
	}
}

// WithConsentURLHandler registers a hook receiving the URL the user must
// open to grant access.
func WithConsentURLHandler(fn func(string)) Option {
	return func(o *options) {
		o.onConsentURL = fn
	}
}

// WithoutMetrics disables the /metrics endpoint.
func WithoutMetrics() Option {
	return func(o *options) {
		o.disableMetrics = true
	}
}
