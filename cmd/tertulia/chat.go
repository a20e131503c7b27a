// ABOUTME: Interactive chat REPL over the conversation controller
// ABOUTME: Slash commands navigate channels, threads and bots; other lines are sent as messages

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/2389/tertulia/internal/api"
	"github.com/2389/tertulia/internal/chat"
)

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := a.newController()
			defer ctrl.Close()

			if err := ctrl.Start(cmd.Context()); err != nil {
				return err
			}
			r := newREPL(ctrl, a.in, a.out, a.logger)
			return r.run(cmd.Context())
		},
	}
}

// repl drives a Controller from line input. Replies to the open
// conversation are printed by a follower goroutine as they are published.
type repl struct {
	ctrl   *chat.Controller
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger

	mu sync.Mutex // serializes writes to out

	following  chat.ConversationID
	stopFollow context.CancelFunc
	followDone chan struct{}

	sends sync.WaitGroup // bot sends still waiting for a reply
}

func newREPL(ctrl *chat.Controller, in *bufio.Reader, out io.Writer, logger *slog.Logger) *repl {
	if logger == nil {
		logger = slog.Default()
	}
	return &repl{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		logger: logger.With("component", "repl"),
	}
}

func (r *repl) run(ctx context.Context) error {
	defer r.unfollow()
	defer r.sends.Wait()

	r.write(func(w io.Writer) {
		titleColor.Fprint(w, "tertulia")
		if u := r.ctrl.User(); u != nil {
			fmt.Fprintf(w, " conectado como %s\n", u.DisplayName())
		} else {
			fmt.Fprintln(w)
		}
		dimColor.Fprintln(w, "Escribe /help para ver los comandos. /quit para salir.")
		fmt.Fprintln(w)
		writeList(w, r.ctrl.Snapshot())
	})

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := r.readLines(readCtx)
	for {
		r.prompt()

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := r.command(ctx, line)
			if err != nil {
				r.reportError(err)
			}
			if quit {
				return nil
			}
			r.follow(ctx)
			continue
		}

		r.send(ctx, line)
	}
}

// readLines feeds input lines until EOF, a read error or ctx is done.
func (r *repl) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := r.in.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					r.logger.Error("reading input", "error", err)
				}
				return
			}
		}
	}()
	return lines
}

// send hands line to the active conversation. Bot sends run in the
// background so the prompt returns while the reply is pending; the
// follower prints the reply when it lands.
func (r *repl) send(ctx context.Context, line string) {
	switch r.ctrl.Active().Kind {
	case chat.KindNone:
		r.write(func(w io.Writer) { dimColor.Fprintln(w, emptyConversationHint) })
	case chat.KindBot:
		r.sends.Go(func() { r.ctrl.Send(ctx, line) })
	default:
		r.ctrl.Send(ctx, line)
	}
}

func (r *repl) command(ctx context.Context, line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit", "/q":
		return true, nil
	case "/help":
		r.write(writeHelp)
	case "/channels", "/canales":
		err = r.ctrl.SelectView(ctx, chat.ViewChannels)
		r.list()
	case "/bots":
		err = r.ctrl.SelectView(ctx, chat.ViewBots)
		r.list()
	case "/list", "/ls":
		r.list()
	case "/open":
		err = r.open(ctx, arg)
	case "/back":
		r.ctrl.Back()
		r.list()
	case "/close":
		r.ctrl.CloseConversation()
		r.write(func(w io.Writer) { dimColor.Fprintln(w, emptyConversationHint) })
	case "/history":
		r.conversation()
	case "/refresh":
		err = r.ctrl.RefreshChannels(ctx)
		r.list()
	case "/new-channel", "/new-private":
		if arg == "" {
			return false, fmt.Errorf("uso: %s <nombre>", name)
		}
		channelType := api.ChannelPublic
		if name == "/new-private" {
			channelType = api.ChannelPrivate
		}
		var detail *api.ChannelDetail
		detail, err = r.ctrl.CreateChannel(ctx, arg, channelType)
		if detail != nil {
			r.write(func(w io.Writer) { writeOK(w, "Canal %s creado [%s]", detail.Name, detail.ID) })
			r.list()
		}
	case "/join":
		if arg == "" {
			return false, errors.New("uso: /join <id-del-canal>")
		}
		if err = r.ctrl.JoinChannel(ctx, api.ID(arg)); err == nil {
			r.write(func(w io.Writer) { writeOK(w, "Te uniste a %s", arg) })
			r.list()
		}
	case "/leave":
		if err = r.ctrl.LeaveChannel(ctx, api.ID(arg)); err == nil {
			r.write(func(w io.Writer) { writeOK(w, "Saliste del canal") })
			r.list()
		}
	case "/new-thread":
		if arg == "" {
			return false, errors.New("uso: /new-thread <título>")
		}
		var thread *api.Thread
		thread, err = r.ctrl.CreateThread(ctx, arg)
		if thread != nil {
			r.write(func(w io.Writer) { writeOK(w, "Hilo %q creado [%s]", thread.Title, thread.ID) })
			r.list()
		}
	case "/members":
		var members []api.ChannelMember
		if members, err = r.ctrl.ChannelMembers(ctx); err == nil {
			r.write(func(w io.Writer) { writeMembers(w, members) })
		}
	case "/info":
		var detail *api.ChannelDetail
		if detail, err = r.ctrl.ChannelDetail(ctx, api.ID(arg)); err == nil {
			r.write(func(w io.Writer) { writeChannelDetail(w, detail) })
		}
	case "/me":
		if u := r.ctrl.User(); u != nil {
			r.write(func(w io.Writer) { writeUser(w, u) })
		}
	default:
		err = fmt.Errorf("comando desconocido %s, /help muestra los comandos", name)
	}
	return false, err
}

// open selects the visible item whose id is arg. When no item has that id
// and arg is a row number (1-based), the item in that row is selected.
func (r *repl) open(ctx context.Context, arg string) error {
	if arg == "" {
		return errors.New("uso: /open <id|fila>")
	}
	s := r.ctrl.Snapshot()
	id := arg
	if !slices.ContainsFunc(s.Items, func(it chat.ListItem) bool { return it.ID == arg }) {
		if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(s.Items) {
			id = s.Items[n-1].ID
		}
	}

	switch {
	case s.View == chat.ViewBots:
		if err := r.ctrl.SelectBot(id); err != nil {
			return err
		}
		r.conversation()
	case s.CanGoBack:
		if err := r.ctrl.SelectThread(api.ID(id)); err != nil {
			return err
		}
		r.conversation()
	default:
		err := r.ctrl.SelectChannel(ctx, api.ID(id))
		r.list()
		return err
	}
	return nil
}

// follow subscribes to the active conversation when it changed.
func (r *repl) follow(ctx context.Context) {
	conv := r.ctrl.Active()
	if conv == r.following {
		return
	}
	r.unfollow()
	if conv.IsZero() {
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := r.ctrl.Subscribe(subCtx, conv)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Kind != chat.EventMessage || ev.Message.IsSender {
				continue
			}
			entry := chat.Entry{Message: ev.Message, State: ev.State}
			r.write(func(w io.Writer) { writeMessage(w, entry) })
		}
	}()

	r.following = conv
	r.stopFollow = cancel
	r.followDone = done
}

// unfollow stops the follower after it printed everything already published.
func (r *repl) unfollow() {
	if r.stopFollow == nil {
		return
	}
	r.stopFollow()
	<-r.followDone
	r.following = chat.ConversationID{}
	r.stopFollow = nil
	r.followDone = nil
}

func (r *repl) list() {
	s := r.ctrl.Snapshot()
	r.write(func(w io.Writer) { writeList(w, s) })
}

func (r *repl) conversation() {
	s := r.ctrl.Snapshot()
	r.write(func(w io.Writer) { writeConversation(w, s) })
}

func (r *repl) prompt() {
	s := r.ctrl.Snapshot()
	r.write(func(w io.Writer) {
		if s.Conversation.IsZero() {
			fmt.Fprint(w, "> ")
			return
		}
		fmt.Fprintf(w, "[%s]> ", s.ChatName)
	})
}

func (r *repl) reportError(err error) {
	r.write(func(w io.Writer) {
		systemColor.Fprint(w, "[error] ")
		fmt.Fprintln(w, describeError(err))
		if errors.Is(err, api.ErrUnauthorized) {
			dimColor.Fprintln(w, "La sesión no es válida. Sal con /quit y ejecuta `tertulia login`.")
		}
	})
}

func (r *repl) write(fn func(w io.Writer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.out)
}

func writeHelp(w io.Writer) {
	fmt.Fprintln(w, "Comandos:")
	fmt.Fprintln(w, "  /channels          Muestra tus canales")
	fmt.Fprintln(w, "  /bots              Muestra los bots")
	fmt.Fprintln(w, "  /open <id|fila>    Abre un canal, hilo o bot de la lista")
	fmt.Fprintln(w, "  /back              Vuelve de los hilos de un canal a la lista de canales")
	fmt.Fprintln(w, "  /close             Cierra la conversación abierta")
	fmt.Fprintln(w, "  /history           Muestra la conversación abierta")
	fmt.Fprintln(w, "  /list              Vuelve a mostrar la lista actual")
	fmt.Fprintln(w, "  /refresh           Recarga tus canales")
	fmt.Fprintln(w, "  /new-channel <n>   Crea un canal público")
	fmt.Fprintln(w, "  /new-private <n>   Crea un canal privado")
	fmt.Fprintln(w, "  /join <id>         Únete a un canal")
	fmt.Fprintln(w, "  /leave [id]        Sal de un canal (por defecto, el seleccionado)")
	fmt.Fprintln(w, "  /new-thread <t>    Abre un hilo en el canal seleccionado")
	fmt.Fprintln(w, "  /members           Lista los miembros del canal seleccionado")
	fmt.Fprintln(w, "  /info [id]         Muestra un canal (por defecto, el seleccionado)")
	fmt.Fprintln(w, "  /me                Muestra tu perfil")
	fmt.Fprintln(w, "  /help              Muestra esta ayuda")
	fmt.Fprintln(w, "  /quit              Salir")
	fmt.Fprintln(w, "/open busca primero un id exacto y, si no lo hay, usa el número de fila.")
	fmt.Fprintln(w, "Cualquier otra línea se envía a la conversación abierta.")
}
