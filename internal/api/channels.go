// ABOUTME: Channel endpoints: membership listing, detail, create, join, leave, members

package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListChannelsForUser returns every channel userID is a member of.
func (c *Client) ListChannelsForUser(ctx context.Context, userID ID) ([]Channel, error) {
	var channels []Channel
	path := "/api/v1/canales/members/" + url.PathEscape(userID.String())
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetChannel returns a channel with its members.
func (c *Client) GetChannel(ctx context.Context, channelID ID) (*ChannelDetail, error) {
	var detail ChannelDetail
	path := "/api/v1/canales/" + url.PathEscape(channelID.String())
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateChannel creates a channel owned by in.OwnerID.
func (c *Client) CreateChannel(ctx context.Context, in CreateChannelInput) (*ChannelDetail, error) {
	if in.ChannelType == "" {
		in.ChannelType = ChannelPublic
	}
	var detail ChannelDetail
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/canales/", body: in, auth: true}, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// JoinChannel adds a user to a channel by id.
func (c *Client) JoinChannel(ctx context.Context, in JoinChannelInput) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/v1/canales/members/", body: in, auth: true}, nil)
}

// LeaveChannel removes a user from a channel.
func (c *Client) LeaveChannel(ctx context.Context, channelID, userID ID) error {
	path := "/api/v1/canales/" + url.PathEscape(channelID.String()) + "/members/" + url.PathEscape(userID.String())
	return c.do(ctx, request{method: http.MethodDelete, path: path, auth: true}, nil)
}

// ListChannelMembers returns the members of a channel.
func (c *Client) ListChannelMembers(ctx context.Context, channelID ID) ([]ChannelMember, error) {
	var members []ChannelMember
	path := "/api/v1/canales/" + url.PathEscape(channelID.String()) + "/members"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &members); err != nil {
		return nil, err
	}
	return members, nil
}
