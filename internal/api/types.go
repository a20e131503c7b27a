// ABOUTME: Wire types for the chat gateway's JSON API
// ABOUTME: Users, channels, threads and bot payloads

package api

import (
	"encoding/json"
	"fmt"
)

// ID is a gateway identifier. Some endpoints send ids as JSON numbers,
// others as strings; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// User is the authenticated account.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// DisplayName is the full name when set, the username otherwise.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// RegisterInput is the body of POST /usuarios/register.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// LoginInput is the body of POST /usuarios/login.
type LoginInput struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdateUserInput is the body of PATCH /usuarios/me.
type UpdateUserInput struct {
	FullName string `json:"full_name"`
}

// Channel visibility values.
const (
	ChannelPublic  = "public"
	ChannelPrivate = "private"
)

// Channel is a top-level grouping of threads.
type Channel struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	OwnerID     ID     `json:"owner_id"`
	ChannelType string `json:"channel_type"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ChannelDetail is a channel with its member ids.
type ChannelDetail struct {
	Channel
	Users []ID `json:"users"`
}

// ChannelMember is one member of a channel.
type ChannelMember struct {
	ID       ID     `json:"id"`
	JoinedAt string `json:"joined_at,omitempty"`
}

// CreateChannelInput is the body of POST /canales/.
type CreateChannelInput struct {
	Name        string `json:"name"`
	OwnerID     ID     `json:"owner_id"`
	ChannelType string `json:"channel_type"`
}

// JoinChannelInput is the body of POST /canales/members/.
type JoinChannelInput struct {
	ChannelID ID `json:"channel_id"`
	UserID    ID `json:"user_id"`
}

// Thread lifecycle values.
const (
	ThreadOpen   = "open"
	ThreadClosed = "closed"
)

// Thread is a conversation inside a channel.
type Thread struct {
	ID        ID             `json:"id"`
	ChannelID ID             `json:"channel_id"`
	Title     string         `json:"title"`
	CreatedBy ID             `json:"created_by"`
	Status    string         `json:"status,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// CreateThreadInput is the body of POST /hilos/.
type CreateThreadInput struct {
	Title     string         `json:"title"`
	CreatedBy ID             `json:"created_by"`
	ChannelID ID             `json:"channel_id"`
	Meta      map[string]any `json:"meta"`
}

// BotMessage is sent to a bot endpoint.
type BotMessage struct {
	Message string `json:"message"`
}

// BotReply is a bot endpoint's answer.
type BotReply struct {
	Reply string `json:"reply"`
}
