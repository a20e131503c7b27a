// ABOUTME: Channel and thread commands
// ABOUTME: Mutations go through the conversation controller so lists are re-fetched afterwards

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/tertulia/internal/api"
	"github.com/2389/tertulia/internal/chat"
)

// withController starts a controller for the logged in user and runs fn.
func (a *app) withController(ctx context.Context, fn func(*chat.Controller) error) error {
	ctrl := a.newController()
	defer ctrl.Close()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	return fn(ctrl)
}

func (a *app) channelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "channels",
		Aliases: []string{"canales"},
		Short:   "List and manage your channels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(cmd.Context(), func(ctrl *chat.Controller) error {
				writeList(a.out, ctrl.Snapshot())
				return nil
			})
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <channel-id>",
			Short: "Show a channel",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				detail, err := a.client.GetChannel(cmd.Context(), api.ID(args[0]))
				if err != nil {
					return fmt.Errorf("fetching channel: %w", err)
				}
				writeChannelDetail(a.out, detail)
				return nil
			},
		},
		a.createChannelCmd(),
		&cobra.Command{
			Use:   "join <channel-id>",
			Short: "Join a channel",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withController(cmd.Context(), func(ctrl *chat.Controller) error {
					if err := ctrl.JoinChannel(cmd.Context(), api.ID(args[0])); err != nil {
						return fmt.Errorf("joining channel: %w", err)
					}
					writeOK(a.out, "Te uniste a %s", args[0])
					writeList(a.out, ctrl.Snapshot())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "leave <channel-id>",
			Short: "Leave a channel",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withController(cmd.Context(), func(ctrl *chat.Controller) error {
					if err := ctrl.LeaveChannel(cmd.Context(), api.ID(args[0])); err != nil {
						return fmt.Errorf("leaving channel: %w", err)
					}
					writeOK(a.out, "Saliste de %s", args[0])
					writeList(a.out, ctrl.Snapshot())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "members <channel-id>",
			Short: "List a channel's members",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				members, err := a.client.ListChannelMembers(cmd.Context(), api.ID(args[0]))
				if err != nil {
					return fmt.Errorf("listing members: %w", err)
				}
				titleColor.Fprintf(a.out, "Miembros de %s\n", args[0])
				writeMembers(a.out, members)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) createChannelCmd() *cobra.Command {
	var private bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel you own",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelType := api.ChannelPublic
			if private {
				channelType = api.ChannelPrivate
			}
			name := strings.Join(args, " ")
			return a.withController(cmd.Context(), func(ctrl *chat.Controller) error {
				detail, err := ctrl.CreateChannel(cmd.Context(), name, channelType)
				if err != nil {
					return fmt.Errorf("creating channel: %w", err)
				}
				writeOK(a.out, "Canal %s creado [%s]", detail.Name, detail.ID)
				writeList(a.out, ctrl.Snapshot())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&private, "private", false, "create a private channel")
	return cmd
}

func (a *app) threadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "threads <channel-id>",
		Aliases: []string{"hilos"},
		Short:   "List a channel's threads",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withController(cmd.Context(), func(ctrl *chat.Controller) error {
				if err := ctrl.SelectChannel(cmd.Context(), api.ID(args[0])); err != nil {
					return err
				}
				writeList(a.out, ctrl.Snapshot())
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <channel-id> <title>",
		Short: "Open a thread in a channel",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return a.withController(cmd.Context(), func(ctrl *chat.Controller) error {
				if err := ctrl.SelectChannel(cmd.Context(), api.ID(args[0])); err != nil {
					return err
				}
				thread, err := ctrl.CreateThread(cmd.Context(), title)
				if err != nil {
					return fmt.Errorf("creating thread: %w", err)
				}
				writeOK(a.out, "Hilo %q creado [%s]", thread.Title, thread.ID)
				writeList(a.out, ctrl.Snapshot())
				return nil
			})
		},
	})
	return cmd
}
