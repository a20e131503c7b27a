// Package api is the typed HTTP client for the chat gateway.
//
// # Overview
//
// Every gateway endpoint the client needs is a method on *Client: account
// (register, login, me), channels (list, detail, create, join, leave,
// members), threads (create, list) and the two bot endpoints.
//
// # Authentication
//
// Authenticated calls read the bearer token from a TokenSource before each
// request. A missing token fails fast with ErrUnauthorized; a 401 or 403
// from the gateway invalidates the token source and also yields
// ErrUnauthorized, at every call site.
//
// # Errors
//
// Non-2xx responses carry a JSON body with a "detail" field, either a plain
// string or a list of validation errors with a "msg" field. Both are decoded
// into *Error, joining several messages with ", ".
//
// # Usage
//
//	c, err := api.New(cfg.Gateway.URL, tokens, logger)
//	if err != nil {
//	    return err
//	}
//	me, err := c.Me(ctx)
package api
