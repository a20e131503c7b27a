// ABOUTME: Fixed registry of bot conversations and their gateway endpoints

package chat

import "github.com/2389/tertulia/internal/api"

// Bot is a conversational endpoint known to the client.
type Bot struct {
	ID       string
	Name     string
	Endpoint api.BotEndpoint
	Welcome  string
}

var registry = []Bot{
	{
		ID:       "1",
		Name:     "Bot de Wikipedia",
		Endpoint: api.WikipediaBot,
		Welcome:  "¡Hola! Soy el Bot de Wikipedia. Pregúntame sobre cualquier tema y te resumo lo que encuentre.",
	},
	{
		ID:       "2",
		Name:     "Bot de Programación",
		Endpoint: api.ProgrammingBot,
		Welcome:  "¡Hola! Soy el Bot de Programación. ¿En qué te puedo ayudar con tu código?",
	},
}

// Bots returns the registry in display order.
func Bots() []Bot {
	out := make([]Bot, len(registry))
	copy(out, registry)
	return out
}

// LookupBot finds a bot by id.
func LookupBot(id string) (Bot, bool) {
	for _, b := range registry {
		if b.ID == id {
			return b, true
		}
	}
	return Bot{}, false
}
