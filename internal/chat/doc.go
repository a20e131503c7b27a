// Package chat implements the conversation view controller.
//
// A Controller reconciles three sources of conversations into a single
// active one: the channel → thread hierarchy fetched from the gateway, the
// fixed bot registry, and the current selection. It owns the per
// conversation message logs, forwards messages to bots, and re-fetches
// authoritative lists after every mutation (create, join, leave).
//
// Selection rules:
//
//   - Switching the top-level view (channels or bots) clears every selection.
//   - Selecting a channel clears the thread and bot and loads the channel's
//     threads. A load that finishes after the user moved on is discarded.
//   - Selecting a thread clears the bot; selecting a bot clears the channel
//     and thread and seeds the bot's welcome message the first time.
//   - Back returns from a channel's threads to the channel list and keeps
//     already loaded data.
//
// Changes are published on a Broadcaster so a front end can redraw without
// polling.
package chat
