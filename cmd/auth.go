package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/prepx/internal/server"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the OAuth2 authorization code flow through a local callback server.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	session, err := r.oauthSession()
	if err != nil {
		return err
	}

	state := server.NewState()
	handler := server.NewOAuthHandler(session, state, callbackPath(r.config.OAuth.RedirectURI))
	authURL := session.AuthCodeURL(state)
	logger := shared.WithLogger(r.logger, "component", "oauth")

	r.writePlain("Open this URL to log in:\n\n  %s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			logger.Warn("failed to open browser", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	logger.Info("waiting for callback", "addr", r.config.CallbackAddr())
	if _, err := server.WaitForCallback(ctx, r.config.CallbackAddr(), handler, server.Recover(logger), server.Logging(logger)); err != nil {
		return err
	}

	r.authorize(ctx)
	user, err := r.svc.Me(ctx)
	if err != nil {
		logger.Debug("failed to fetch profile", "error", err)
		return r.writePlain("✓ Logged in\n")
	}
	return r.writePlain("✓ Logged in as %s <%s>\n", user.Name, user.Email)
}

// AuthStatus reports whether a usable login is stored and who it belongs to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.oauthSession()
	if err != nil {
		return err
	}

	if !session.Authenticated() {
		r.writePlain("✗ Not logged in\n")
		return r.writePlain("Run 'prepx auth login' to authenticate\n")
	}

	r.authorize(ctx)
	user, err := r.svc.Me(ctx)
	if err != nil {
		return fmt.Errorf("stored login was rejected: %w", err)
	}

	r.writePlain("✓ Logged in\n")
	r.writePlain("User: %s <%s>\n", user.Name, user.Email)
	return r.writePlain("Backend: %s\n", r.api.BaseURL())
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	session, err := r.oauthSession()
	if err != nil {
		return err
	}
	if err := session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// callbackPath extracts the path the OAuth provider redirects to.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return "/callback"
	}
	return u.Path
}
