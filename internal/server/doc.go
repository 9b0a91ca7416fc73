// Package server runs the short-lived localhost HTTP server used for OAuth login.
//
// Requests pass through [Middleware] assembled with [Chain]; [Logging] and [Recover]
// are the two the CLI installs.
//
// # OAuth Callback Handler
//
// [OAuthHandler] completes the authorization code flow started by `prepx auth login`.
// It validates the state parameter, hands the code to an [Exchanger] (normally services.Session,
// which also persists the token) and publishes exactly one [OAuthResult]. Later callbacks are rejected.
//
// [WaitForCallback] serves the handler on the configured callback address until a result
// arrives or the context ends, then shuts the server down.
package server
