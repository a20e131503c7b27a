// Package session stores the gateway access token between runs and decides
// locally when it can no longer be used.
package session
