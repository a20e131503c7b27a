// ABOUTME: Terminal rendering of lists, messages and gateway objects
// ABOUTME: Message bodies are markdown and go through render.Plain

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/tertulia/internal/api"
	"github.com/2389/tertulia/internal/chat"
	"github.com/2389/tertulia/internal/render"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	senderColor = color.New(color.FgBlue, color.Bold)
	botColor    = color.New(color.FgGreen, color.Bold)
	systemColor = color.New(color.FgRed, color.Bold)
	otherColor  = color.New(color.FgMagenta, color.Bold)
	okColor     = color.New(color.FgGreen)
	dimColor    = color.New(color.FgHiBlack)
)

// emptyConversationHint is shown when nothing is open.
const emptyConversationHint = "Selecciona un hilo o un bot para empezar a chatear"

func writeOK(w io.Writer, format string, args ...any) {
	okColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// writeList prints the visible list of a snapshot with 1-based indexes.
func writeList(w io.Writer, s chat.Snapshot) {
	titleColor.Fprintln(w, s.Title)
	if s.Loading {
		dimColor.Fprintln(w, "  cargando...")
		return
	}
	if len(s.Items) == 0 {
		dimColor.Fprintln(w, "  (vacío)")
		return
	}
	for i, it := range s.Items {
		marker := " "
		if it.ID == s.SelectedID && s.SelectedID != "" {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %2d. %s", marker, i+1, it.Name)
		dimColor.Fprintf(w, "  [%s]", it.ID)
		if it.Detail != "" {
			dimColor.Fprintf(w, " %s", it.Detail)
		}
		fmt.Fprintln(w)
	}
}

// writeConversation prints the open conversation's header and history.
func writeConversation(w io.Writer, s chat.Snapshot) {
	if s.Conversation.IsZero() {
		dimColor.Fprintln(w, emptyConversationHint)
		return
	}
	titleColor.Fprintln(w, s.ChatName)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, e := range s.Messages {
		writeMessage(w, e)
	}
}

func writeMessage(w io.Writer, e chat.Entry) {
	dimColor.Fprintf(w, "[%s] ", e.Timestamp)

	author := otherColor
	switch {
	case e.IsSender:
		author = senderColor
	case e.IsBot:
		author = botColor
	case e.Author == chat.SystemAuthor:
		author = systemColor
	}
	author.Fprint(w, e.Author)
	fmt.Fprint(w, ": ")

	text := render.Plain(e.Text)
	fmt.Fprint(w, strings.ReplaceAll(text, "\n", "\n    "))

	switch e.State {
	case chat.StatePending:
		dimColor.Fprint(w, " …")
	case chat.StateFailed:
		systemColor.Fprint(w, " ✗")
	}
	fmt.Fprintln(w)
}

func writeUser(w io.Writer, u *api.User) {
	titleColor.Fprintln(w, u.DisplayName())
	fmt.Fprintf(w, "  id:      %s\n", u.ID)
	fmt.Fprintf(w, "  usuario: %s\n", u.Username)
	fmt.Fprintf(w, "  correo:  %s\n", u.Email)
	if u.FullName != "" {
		fmt.Fprintf(w, "  nombre:  %s\n", u.FullName)
	}
}

func writeChannelDetail(w io.Writer, d *api.ChannelDetail) {
	titleColor.Fprintln(w, d.Name)
	fmt.Fprintf(w, "  id:       %s\n", d.ID)
	fmt.Fprintf(w, "  tipo:     %s\n", d.ChannelType)
	fmt.Fprintf(w, "  dueño:    %s\n", d.OwnerID)
	if d.CreatedAt != "" {
		fmt.Fprintf(w, "  creado:   %s\n", d.CreatedAt)
	}
	fmt.Fprintf(w, "  miembros: %d\n", len(d.Users))
}

func writeMembers(w io.Writer, members []api.ChannelMember) {
	if len(members) == 0 {
		dimColor.Fprintln(w, "  (sin miembros)")
		return
	}
	for _, m := range members {
		fmt.Fprintf(w, "  %s", m.ID)
		if m.JoinedAt != "" {
			dimColor.Fprintf(w, "  desde %s", m.JoinedAt)
		}
		fmt.Fprintln(w)
	}
}

// describeError words the controller's sentinel errors for the terminal.
// Gateway messages are shown as the gateway sent them.
func describeError(err error) string {
	switch {
	case errors.Is(err, chat.ErrNoChannel):
		return "no hay ningún canal seleccionado"
	case errors.Is(err, chat.ErrUnknownThread):
		return "el hilo no pertenece al canal seleccionado"
	case errors.Is(err, chat.ErrUnknownBot):
		return "bot desconocido"
	case errors.Is(err, chat.ErrNotAuthenticated):
		return "no has iniciado sesión"
	}
	return err.Error()
}
