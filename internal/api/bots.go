// ABOUTME: Bot endpoints: one request, one reply string

package api

import (
	"context"
	"net/http"
)

// BotEndpoint is the gateway path of a bot.
type BotEndpoint string

// Known bot endpoints.
const (
	ProgrammingBot BotEndpoint = "/api/v1/chatbot/chat"
	WikipediaBot   BotEndpoint = "/api/v1/wikipedia/chat"
)

// AskBot sends text to a bot and returns its reply.
func (c *Client) AskBot(ctx context.Context, endpoint BotEndpoint, text string) (string, error) {
	var reply BotReply
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   string(endpoint),
		body:   BotMessage{Message: text},
		auth:   true,
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Reply, nil
}

// AskProgrammingBot sends text to the programming bot.
func (c *Client) AskProgrammingBot(ctx context.Context, text string) (string, error) {
	return c.AskBot(ctx, ProgrammingBot, text)
}

// AskWikipediaBot sends text to the Wikipedia bot.
func (c *Client) AskWikipediaBot(ctx context.Context, text string) (string, error) {
	return c.AskBot(ctx, WikipediaBot, text)
}
