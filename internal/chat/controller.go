// ABOUTME: Conversation view controller: selection state machine, send flow and list refresh
// ABOUTME: Network calls run without the lock held; stale thread lists are discarded by generation

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/tertulia/internal/api"
	"github.com/2389/tertulia/internal/listcache"
)

// Gateway is the subset of the gateway API the controller drives.
type Gateway interface {
	Me(ctx context.Context) (*api.User, error)
	UpdateMe(ctx context.Context, in api.UpdateUserInput) (*api.User, error)
	ListChannelsForUser(ctx context.Context, userID api.ID) ([]api.Channel, error)
	GetChannel(ctx context.Context, channelID api.ID) (*api.ChannelDetail, error)
	CreateChannel(ctx context.Context, in api.CreateChannelInput) (*api.ChannelDetail, error)
	JoinChannel(ctx context.Context, in api.JoinChannelInput) error
	LeaveChannel(ctx context.Context, channelID, userID api.ID) error
	ListChannelMembers(ctx context.Context, channelID api.ID) ([]api.ChannelMember, error)
	CreateThread(ctx context.Context, in api.CreateThreadInput) (*api.Thread, error)
	ListThreads(ctx context.Context, channelID api.ID) ([]api.Thread, error)
	AskBot(ctx context.Context, endpoint api.BotEndpoint, text string) (string, error)
}

// Options tunes a Controller. Zero values are usable.
type Options struct {
	// CacheTTL keeps fetched lists for reuse. Zero disables caching.
	CacheTTL time.Duration
	// CacheSize bounds the number of cached lists. Zero means unbounded.
	CacheSize int
	Logger    *slog.Logger
	// Now overrides the clock used for message timestamps.
	Now func() time.Time
}

// Controller is the conversation view controller. It is safe for concurrent use.
type Controller struct {
	gw          Gateway
	broadcaster *Broadcaster
	channelList *listcache.Cache[[]api.Channel]
	threadList  *listcache.Cache[[]api.Thread]
	now         func() time.Time
	logger      *slog.Logger

	mu   sync.Mutex
	user *api.User
	view View

	channels        []api.Channel
	channelsLoading bool
	channelGen      uint64

	threads        map[api.ID][]api.Thread
	threadsLoading bool
	threadGen      uint64

	selectedChannel api.ID
	selectedThread  api.ID
	selectedBot     string

	log *messageLog
}

// NewController creates a controller over gw. Call Start to load the user.
func NewController(gw Gateway, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		gw:          gw,
		broadcaster: NewBroadcaster(logger),
		channelList: listcache.New[[]api.Channel](opts.CacheTTL, opts.CacheSize),
		threadList:  listcache.New[[]api.Thread](opts.CacheTTL, opts.CacheSize),
		now:         now,
		logger:      logger.With("component", "chat"),
		view:        ViewChannels,
		threads:     make(map[api.ID][]api.Thread),
		log:         newMessageLog(),
	}
}

// Close releases the caches and closes every subscription.
func (c *Controller) Close() {
	c.channelList.Close()
	c.threadList.Close()
	c.broadcaster.Close()
}

// Start loads the authenticated user and the channel list. Only a failure
// to load the user is fatal; a failed channel fetch leaves the list empty
// so bots stay reachable.
func (c *Controller) Start(ctx context.Context) error {
	user, err := c.gw.Me(ctx)
	if err != nil {
		return fmt.Errorf("loading current user: %w", err)
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	c.logger.Info("session started", "user_id", user.ID, "username", user.Username)
	if err := c.SelectView(ctx, ViewChannels); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		c.logger.Warn("started without channel list", "error", err)
	}
	return nil
}

// User returns a copy of the authenticated user, or nil before Start.
func (c *Controller) User() *api.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// UpdateProfile changes the user's full name and replaces the stored user.
func (c *Controller) UpdateProfile(ctx context.Context, fullName string) (*api.User, error) {
	if c.User() == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := c.gw.UpdateMe(ctx, api.UpdateUserInput{FullName: fullName})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	u := *user
	return &u, nil
}

// Subscribe returns events for conv until ctx is cancelled.
func (c *Controller) Subscribe(ctx context.Context, conv ConversationID) <-chan Event {
	ch, _ := c.broadcaster.Subscribe(ctx, conv.String())
	return ch
}

// SubscribeLists returns list and selection change events until ctx is cancelled.
func (c *Controller) SubscribeLists(ctx context.Context) <-chan Event {
	ch, _ := c.broadcaster.Subscribe(ctx, ListsKey)
	return ch
}

// SelectView switches the top-level list and clears every selection.
// The channels view loads the user's channels, from cache when fresh.
func (c *Controller) SelectView(ctx context.Context, view View) error {
	c.mu.Lock()
	c.view = view
	c.selectedChannel = ""
	c.selectedThread = ""
	c.selectedBot = ""
	c.dropThreadFetchLocked()
	c.mu.Unlock()

	c.publishLists()
	if view != ViewChannels {
		return nil
	}
	return c.loadChannels(ctx, false)
}

// SelectChannel selects a channel and loads its threads. The selection
// stands even if the load fails; the thread list is then empty.
func (c *Controller) SelectChannel(ctx context.Context, channelID api.ID) error {
	c.mu.Lock()
	c.view = ViewChannels
	c.selectedChannel = channelID
	c.selectedThread = ""
	c.selectedBot = ""
	gen, done := c.beginThreadsLocked(channelID, false)
	c.mu.Unlock()

	c.publishLists()
	if done {
		return nil
	}
	return c.fetchThreads(ctx, channelID, gen)
}

// SelectThread makes a thread of the selected channel the active conversation.
func (c *Controller) SelectThread(threadID api.ID) error {
	c.mu.Lock()
	if c.selectedChannel == "" {
		c.mu.Unlock()
		return ErrNoChannel
	}
	if _, ok := c.findThreadLocked(c.selectedChannel, threadID); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownThread, threadID)
	}
	c.selectedThread = threadID
	c.selectedBot = ""
	c.mu.Unlock()

	c.publishLists()
	return nil
}

// SelectBot makes a bot the active conversation. The first selection of a
// bot seeds its welcome message.
func (c *Controller) SelectBot(botID string) error {
	bot, ok := LookupBot(botID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBot, botID)
	}

	c.mu.Lock()
	c.view = ViewBots
	c.selectedBot = bot.ID
	c.selectedChannel = ""
	c.selectedThread = ""
	c.dropThreadFetchLocked()

	conv := BotConversation(bot.ID)
	var welcome *Message
	if !c.log.opened(conv) {
		msg := c.newMessageLocked(bot.Name, bot.Welcome, false, true)
		c.log.append(conv, msg, StateLocal)
		welcome = &msg
	}
	c.mu.Unlock()

	if welcome != nil {
		c.publishMessage(conv, *welcome, StateLocal)
	}
	c.publishLists()
	return nil
}

// Back returns from a channel's threads to the channel list. Loaded lists
// and the open conversation are kept.
func (c *Controller) Back() {
	c.mu.Lock()
	if c.selectedChannel == "" {
		c.mu.Unlock()
		return
	}
	c.selectedChannel = ""
	c.dropThreadFetchLocked()
	c.mu.Unlock()

	c.publishLists()
}

// CloseConversation clears the active thread or bot.
func (c *Controller) CloseConversation() {
	c.mu.Lock()
	c.selectedThread = ""
	c.selectedBot = ""
	c.mu.Unlock()

	c.publishLists()
}

// Active returns the active conversation, zero when none.
func (c *Controller) Active() ConversationID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

// Messages returns a copy of the log of conv.
func (c *Controller) Messages(conv ConversationID) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.list(conv)
}

// Snapshot copies the visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{View: c.view}
	switch {
	case c.view == ViewBots:
		s.Title = "Bots"
		for _, b := range registry {
			s.Items = append(s.Items, ListItem{ID: b.ID, Name: b.Name})
		}
		s.SelectedID = c.selectedBot
	case c.selectedChannel != "":
		s.Title = c.channelNameLocked(c.selectedChannel)
		for _, t := range c.threads[c.selectedChannel] {
			s.Items = append(s.Items, ListItem{ID: t.ID.String(), Name: t.Title, Detail: t.Status})
		}
		s.Loading = c.threadsLoading
		s.SelectedID = c.selectedThread.String()
		s.CanGoBack = true
	default:
		s.Title = "Canales"
		for _, ch := range c.channels {
			s.Items = append(s.Items, ListItem{ID: ch.ID.String(), Name: ch.Name, Detail: ch.ChannelType})
		}
		s.Loading = c.channelsLoading
		s.SelectedID = c.selectedChannel.String()
	}

	s.Conversation = c.activeLocked()
	s.ChatName = c.chatNameLocked()
	if !s.Conversation.IsZero() {
		s.Messages = c.log.list(s.Conversation)
	}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	return s
}

// Send appends text to the active conversation as the user's message. In a
// bot conversation it then asks the bot and appends the reply, or a system
// message when the bot fails. Bot failures are logged and never returned.
// Send does nothing when no conversation is active, the text is blank, or
// no user is authenticated.
func (c *Controller) Send(ctx context.Context, text string) {
	c.mu.Lock()
	conv := c.activeLocked()
	if conv.IsZero() || strings.TrimSpace(text) == "" || c.user == nil {
		c.mu.Unlock()
		return
	}

	bot, isBot := Bot{}, false
	if conv.Kind == KindBot {
		bot, isBot = LookupBot(conv.ID)
	}
	state := StateLocal
	if isBot {
		state = StatePending
	}
	sent := c.newMessageLocked(c.user.DisplayName(), text, true, false)
	c.log.append(conv, sent, state)
	c.mu.Unlock()

	c.publishMessage(conv, sent, state)
	if !isBot {
		return
	}

	var reply Message
	replyText, err := c.gw.AskBot(ctx, bot.Endpoint, text)

	c.mu.Lock()
	if err != nil {
		c.logger.Warn("bot request failed", "bot_id", bot.ID, "error", err)
		state = StateFailed
		reply = c.newMessageLocked(SystemAuthor, BotFailureText, false, false)
	} else {
		state = StateDelivered
		reply = c.newMessageLocked(bot.Name, replyText, false, true)
	}
	c.log.setState(sent.ID, state)
	c.log.append(conv, reply, StateLocal)
	c.mu.Unlock()

	c.publish(conv, Event{Kind: EventDelivery, Conversation: conv, Message: sent, State: state})
	c.publishMessage(conv, reply, StateLocal)
}

// CreateChannel creates a channel owned by the user and reloads the channel list.
func (c *Controller) CreateChannel(ctx context.Context, name, channelType string) (*api.ChannelDetail, error) {
	user := c.User()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	detail, err := c.gw.CreateChannel(ctx, api.CreateChannelInput{
		Name:        name,
		OwnerID:     user.ID,
		ChannelType: channelType,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("channel created", "channel_id", detail.ID, "name", detail.Name)

	if err := c.loadChannels(ctx, true); err != nil {
		return detail, err
	}
	return detail, nil
}

// JoinChannel adds the user to a channel and reloads the channel list.
func (c *Controller) JoinChannel(ctx context.Context, channelID api.ID) error {
	user := c.User()
	if user == nil {
		return ErrNotAuthenticated
	}

	if err := c.gw.JoinChannel(ctx, api.JoinChannelInput{ChannelID: channelID, UserID: user.ID}); err != nil {
		return err
	}
	c.logger.Info("joined channel", "channel_id", channelID)

	return c.loadChannels(ctx, true)
}

// LeaveChannel removes the user from a channel (the selected one when
// channelID is empty), clears the channel and thread selection and reloads
// the channel list.
func (c *Controller) LeaveChannel(ctx context.Context, channelID api.ID) error {
	user := c.User()
	if user == nil {
		return ErrNotAuthenticated
	}
	if channelID == "" {
		c.mu.Lock()
		channelID = c.selectedChannel
		c.mu.Unlock()
		if channelID == "" {
			return ErrNoChannel
		}
	}

	if err := c.gw.LeaveChannel(ctx, channelID, user.ID); err != nil {
		return err
	}
	c.logger.Info("left channel", "channel_id", channelID)

	c.mu.Lock()
	c.selectedChannel = ""
	c.selectedThread = ""
	c.dropThreadFetchLocked()
	delete(c.threads, channelID)
	c.threadList.Invalidate(threadsKey(channelID))
	c.mu.Unlock()

	c.publishLists()
	return c.loadChannels(ctx, true)
}

// CreateThread opens a thread in the selected channel and reloads the
// channel's thread list.
func (c *Controller) CreateThread(ctx context.Context, title string) (*api.Thread, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	channelID, userID := c.selectedChannel, c.user.ID
	c.mu.Unlock()
	if channelID == "" {
		return nil, ErrNoChannel
	}

	thread, err := c.gw.CreateThread(ctx, api.CreateThreadInput{
		Title:     title,
		CreatedBy: userID,
		ChannelID: channelID,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("thread created", "thread_id", thread.ID, "channel_id", channelID)

	c.mu.Lock()
	if c.selectedChannel != channelID {
		c.threadList.Invalidate(threadsKey(channelID))
		delete(c.threads, channelID)
		c.mu.Unlock()
		return thread, nil
	}
	gen, _ := c.beginThreadsLocked(channelID, true)
	c.mu.Unlock()

	c.publishLists()
	if err := c.fetchThreads(ctx, channelID, gen); err != nil {
		return thread, err
	}
	return thread, nil
}

// ChannelMembers lists the members of the selected channel.
func (c *Controller) ChannelMembers(ctx context.Context) ([]api.ChannelMember, error) {
	c.mu.Lock()
	channelID := c.selectedChannel
	c.mu.Unlock()
	if channelID == "" {
		return nil, ErrNoChannel
	}
	return c.gw.ListChannelMembers(ctx, channelID)
}

// ChannelDetail fetches a channel, the selected one when channelID is empty.
func (c *Controller) ChannelDetail(ctx context.Context, channelID api.ID) (*api.ChannelDetail, error) {
	if channelID == "" {
		c.mu.Lock()
		channelID = c.selectedChannel
		c.mu.Unlock()
		if channelID == "" {
			return nil, ErrNoChannel
		}
	}
	return c.gw.GetChannel(ctx, channelID)
}

// RefreshChannels drops the cached channel list and fetches it again.
func (c *Controller) RefreshChannels(ctx context.Context) error {
	return c.loadChannels(ctx, true)
}

// loadChannels applies the user's channel list from cache or the gateway.
// force skips the cache.
func (c *Controller) loadChannels(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	userID := c.user.ID
	key := channelsKey(userID)

	if force {
		c.channelList.Invalidate(key)
	} else if cached, ok := c.channelList.Get(key); ok {
		c.channels = cached
		c.channelsLoading = false
		c.mu.Unlock()
		c.publishLists()
		return nil
	}
	c.channelGen++
	gen := c.channelGen
	c.channelsLoading = true
	c.mu.Unlock()

	channels, err := c.gw.ListChannelsForUser(ctx, userID)

	c.mu.Lock()
	if gen != c.channelGen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale channel list", "user_id", userID)
		return nil
	}
	c.channelsLoading = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Error("failed to fetch channels", "user_id", userID, "error", err)
		c.publishLists()
		return fmt.Errorf("fetching channels: %w", err)
	}
	c.channels = channels
	c.channelList.Set(key, channels)
	c.mu.Unlock()

	c.publishLists()
	return nil
}

// beginThreadsLocked starts a thread list load for channelID and returns
// its generation. done is true when the cache already satisfied it.
// Must be called with mu held.
func (c *Controller) beginThreadsLocked(channelID api.ID, force bool) (gen uint64, done bool) {
	c.threadGen++
	gen = c.threadGen
	key := threadsKey(channelID)

	if force {
		c.threadList.Invalidate(key)
	} else if cached, ok := c.threadList.Get(key); ok {
		c.threads[channelID] = cached
		c.threadsLoading = false
		return gen, true
	}
	c.threadsLoading = true
	return gen, false
}

// fetchThreads loads a channel's threads and applies them only if gen is
// still the current generation.
func (c *Controller) fetchThreads(ctx context.Context, channelID api.ID, gen uint64) error {
	threads, err := c.gw.ListThreads(ctx, channelID)

	c.mu.Lock()
	if gen != c.threadGen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale thread list", "channel_id", channelID)
		return nil
	}
	c.threadsLoading = false
	if err != nil {
		c.threads[channelID] = nil
		c.mu.Unlock()
		c.logger.Error("failed to fetch threads", "channel_id", channelID, "error", err)
		c.publishLists()
		return fmt.Errorf("fetching threads: %w", err)
	}
	c.threads[channelID] = threads
	c.threadList.Set(threadsKey(channelID), threads)
	c.mu.Unlock()

	c.publishLists()
	return nil
}

// dropThreadFetchLocked invalidates any in-flight thread list load.
// Must be called with mu held.
func (c *Controller) dropThreadFetchLocked() {
	c.threadGen++
	c.threadsLoading = false
}

func (c *Controller) activeLocked() ConversationID {
	switch {
	case c.selectedThread != "":
		return ThreadConversation(c.selectedThread)
	case c.selectedBot != "":
		return BotConversation(c.selectedBot)
	default:
		return ConversationID{}
	}
}

func (c *Controller) chatNameLocked() string {
	if c.selectedThread != "" {
		for channelID := range c.threads {
			if t, ok := c.findThreadLocked(channelID, c.selectedThread); ok {
				return "# " + t.Title
			}
		}
	}
	if c.selectedBot != "" {
		if bot, ok := LookupBot(c.selectedBot); ok {
			return bot.Name
		}
	}
	return "Chat"
}

func (c *Controller) findThreadLocked(channelID, threadID api.ID) (api.Thread, bool) {
	for _, t := range c.threads[channelID] {
		if t.ID == threadID {
			return t, true
		}
	}
	return api.Thread{}, false
}

func (c *Controller) channelNameLocked(channelID api.ID) string {
	for _, ch := range c.channels {
		if ch.ID == channelID {
			return ch.Name
		}
	}
	return channelID.String()
}

func (c *Controller) newMessageLocked(author, text string, isSender, isBot bool) Message {
	now := c.now()
	return Message{
		ID:        uuid.New(),
		Author:    author,
		Text:      text,
		IsSender:  isSender,
		IsBot:     isBot,
		Timestamp: now.Format(timestampLayout),
		SentAt:    now,
	}
}

func (c *Controller) publishMessage(conv ConversationID, msg Message, state DeliveryState) {
	c.publish(conv, Event{Kind: EventMessage, Conversation: conv, Message: msg, State: state})
}

func (c *Controller) publish(conv ConversationID, event Event) {
	c.broadcaster.Publish(conv.String(), event)
}

func (c *Controller) publishLists() {
	c.broadcaster.Publish(ListsKey, Event{Kind: EventLists})
}

func channelsKey(userID api.ID) string {
	return "channels:" + userID.String()
}

func threadsKey(channelID api.ID) string {
	return "threads:" + channelID.String()
}
