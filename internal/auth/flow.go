// Package auth obtains OAuth2 credentials for the YouTube Data API.
//
// A stored token is reused (and refreshed when expired). Otherwise the flow
// serves the redirect URL on a loopback listener and waits for the user to
// grant consent in a browser.
package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

const shutdownGrace = 2 * time.Second

// Flow implements ports.Authorizer.
type Flow struct {
	current  func() config.ModuleConfig
	logger   ports.Logger
	endpoint oauth2.Endpoint
	onURL    func(string)
	scopes   []string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Option configures a Flow.
type Option func(*Flow)

// WithEndpoint overrides the Google OAuth2 endpoint.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(f *Flow) {
		f.endpoint = e
	}
}

// WithConsentURLHandler registers a hook receiving the consent URL the
// user has to open. The URL is always logged as well.
func WithConsentURLHandler(fn func(string)) Option {
	return func(f *Flow) {
		f.onURL = fn
	}
}

// NewFlow creates a Flow reading the module configuration through current
// at the start of every attempt.
func NewFlow(current func() config.ModuleConfig, logger ports.Logger, opts ...Option) *Flow {
	f := &Flow{
		current:  current,
		logger:   logger,
		endpoint: google.Endpoint,
		scopes:   []string{youtube.YoutubeScope},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OAuthConfig returns the OAuth2 client configuration for the current settings.
func (f *Flow) OAuthConfig() *oauth2.Config {
	return f.oauthConfig(f.current())
}

func (f *Flow) oauthConfig(cfg config.ModuleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     f.endpoint,
		Scopes:       f.scopes,
	}
}

// Authorize returns a usable credential.
// When isReconfig is set, the consent screen is not forced again.
func (f *Flow) Authorize(ctx context.Context, isReconfig bool) (domain.Credential, error) {
	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.cancel = cancel
	f.mu.Unlock()
	defer cancel()

	cfg := f.current()
	oc := f.oauthConfig(cfg)

	if cred, err := f.reuse(ctx, oc, cfg.AuthToken); err == nil {
		return cred, nil
	} else if !errors.Is(err, domain.ErrNoCredential) {
		f.logger.Warn("stored token rejected, requesting consent", ports.Err(err))
	}

	tok, err := f.consent(ctx, oc, !isReconfig)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("%w: %v", domain.ErrAuthorization, err)
	}
	return domain.Credential{Token: tok}, nil
}

// Cancel aborts the outstanding attempt, if any.
func (f *Flow) Cancel() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// reuse validates the stored token, refreshing it when expired.
func (f *Flow) reuse(ctx context.Context, oc *oauth2.Config, raw string) (domain.Credential, error) {
	cred, err := domain.ParseCredential(raw)
	if err != nil {
		return domain.Credential{}, err
	}
	tok, err := oc.TokenSource(ctx, cred.Token).Token()
	if err != nil {
		return domain.Credential{}, err
	}
	f.logger.Debug("reusing stored token", ports.Bool("refreshed", tok.AccessToken != cred.Token.AccessToken))
	return domain.Credential{Token: tok}, nil
}

type consentResult struct {
	tok *oauth2.Token
	err error
}

// consent serves the redirect URL and waits for the authorization code.
func (f *Flow) consent(ctx context.Context, oc *oauth2.Config, force bool) (*oauth2.Token, error) {
	redirect, err := url.Parse(oc.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}
	// An ephemeral port ("...:0") is resolved before building the consent URL.
	redirect.Host = ln.Addr().String()
	oc.RedirectURL = redirect.String()

	state := uuid.NewString()
	results := make(chan consentResult, 1)

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(path, func(c *gin.Context) {
		var res consentResult
		switch {
		case c.Query("state") != state:
			c.String(http.StatusBadRequest, "invalid state")
			return
		case c.Query("error") != "":
			res.err = fmt.Errorf("consent denied: %s", c.Query("error"))
		case c.Query("code") == "":
			res.err = errors.New("missing authorization code")
		default:
			res.tok, res.err = oc.Exchange(c.Request.Context(), c.Query("code"))
		}

		if res.err != nil {
			c.String(http.StatusForbidden, "Authorization failed: %s", html.EscapeString(res.err.Error()))
		} else {
			c.String(http.StatusOK, "Authorization complete, you can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- consentResult{err: err}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if force {
		opts = append(opts, oauth2.ApprovalForce)
	}
	consentURL := oc.AuthCodeURL(state, opts...)
	f.logger.Info("Open this URL to authorize YouTube access", ports.String("url", consentURL))
	if f.onURL != nil {
		f.onURL(consentURL)
	}

	select {
	case res := <-results:
		return res.tok, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
