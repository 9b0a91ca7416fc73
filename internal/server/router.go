package server

import (
	"net/http"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that middleware[0] runs first.
func Chain(h http.Handler, middleware ...Middleware) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// callbackMux serves h on its routes for GET only. Anything else is a 404 or 405 from the mux.
func callbackMux(h *OAuthHandler, middleware ...Middleware) http.Handler {
	mux := http.NewServeMux()
	wrapped := Chain(h, middleware...)
	for _, route := range h.Routes() {
		mux.Handle(http.MethodGet+" "+route, wrapped)
	}
	return mux
}
