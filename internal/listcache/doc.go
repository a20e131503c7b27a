// Package listcache keeps recently fetched lists (a user's channels, a
// channel's threads) for a short TTL so navigating back and forth does not
// refetch them. Mutations invalidate the affected key.
package listcache
