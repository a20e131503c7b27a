// ABOUTME: View, conversation and message types for the chat controller
// ABOUTME: Messages are immutable once logged; delivery state is tracked beside them

package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/2389/tertulia/internal/api"
)

// Controller errors
var (
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrNoChannel        = errors.New("no channel selected")
	ErrUnknownThread    = errors.New("thread is not in the selected channel")
	ErrUnknownBot       = errors.New("unknown bot")
)

// View is the top-level list shown beside the conversation.
type View int

// Top-level views.
const (
	ViewChannels View = iota
	ViewBots
)

func (v View) String() string {
	switch v {
	case ViewChannels:
		return "channels"
	case ViewBots:
		return "bots"
	default:
		return "unknown"
	}
}

// ConversationKind tells thread conversations from bot conversations.
type ConversationKind int

// Conversation kinds.
const (
	KindNone ConversationKind = iota
	KindThread
	KindBot
)

// ConversationID identifies a message log. Thread and bot ids live in
// separate namespaces so a thread "1" never shares a log with bot "1".
type ConversationID struct {
	Kind ConversationKind
	ID   string
}

// ThreadConversation is the conversation of a thread.
func ThreadConversation(id api.ID) ConversationID {
	return ConversationID{Kind: KindThread, ID: id.String()}
}

// BotConversation is the conversation with a bot.
func BotConversation(id string) ConversationID {
	return ConversationID{Kind: KindBot, ID: id}
}

// IsZero reports whether no conversation is identified.
func (c ConversationID) IsZero() bool {
	return c.Kind == KindNone || c.ID == ""
}

func (c ConversationID) String() string {
	switch c.Kind {
	case KindThread:
		return "thread:" + c.ID
	case KindBot:
		return "bot:" + c.ID
	default:
		return ""
	}
}

// DeliveryState tracks a message's round trip.
type DeliveryState int

// Delivery states.
const (
	// StateLocal messages exist only on this client.
	StateLocal DeliveryState = iota
	// StatePending messages wait for a remote reply.
	StatePending
	// StateDelivered messages got their reply.
	StateDelivered
	// StateFailed messages got an error instead of a reply.
	StateFailed
)

func (s DeliveryState) String() string {
	switch s {
	case StateLocal:
		return "local"
	case StatePending:
		return "pending"
	case StateDelivered:
		return "delivered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SystemAuthor authors the messages the client inserts on failures.
const SystemAuthor = "Sistema"

// BotFailureText replaces a bot reply that could not be obtained.
const BotFailureText = "Error: No se pudo obtener respuesta del bot."

// timestampLayout is the display form of a message time.
const timestampLayout = "15:04"

// Message is one entry of a conversation log.
type Message struct {
	ID        uuid.UUID
	Author    string
	Text      string
	IsSender  bool
	IsBot     bool
	Timestamp string
	SentAt    time.Time
}

// Entry is a logged message together with its current delivery state.
type Entry struct {
	Message
	State DeliveryState
}

// ListItem is one row of the visible list.
type ListItem struct {
	ID     string
	Name   string
	Detail string
}

// Snapshot is a copy of everything a front end draws.
type Snapshot struct {
	View View
	// Title heads the visible list: "Canales", "Bots" or the channel name.
	Title      string
	Items      []ListItem
	Loading    bool
	SelectedID string
	CanGoBack  bool

	Conversation ConversationID
	ChatName     string
	Messages     []Entry

	User *api.User
}
