// ABOUTME: Account commands: register, login, logout, me and profile
// ABOUTME: login stores the access token where every other command reads it

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389/tertulia/internal/api"
	"github.com/2389/tertulia/internal/session"
)

func (a *app) registerCmd() *cobra.Command {
	var in api.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				pw, err := a.prompt("Contraseña: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}
			user, err := a.client.Register(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("registering: %w", err)
			}
			writeOK(a.out, "Cuenta %s creada. Inicia sesión con `tertulia login %s`.", user.Username, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "full name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and store the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := a.prompt("Contraseña: ")
				if err != nil {
					return err
				}
				password = pw
			}

			resp, err := a.client.Login(cmd.Context(), api.LoginInput{
				UsernameOrEmail: args[0],
				Password:        password,
			})
			if err != nil {
				return fmt.Errorf("logging in: %w", err)
			}
			if resp.AccessToken == "" {
				return errors.New("logging in: gateway returned no access token")
			}
			if err := a.tokens.Save(resp.AccessToken); err != nil {
				return err
			}

			writeOK(a.out, "Sesión iniciada como %s", args[0])
			if claims, err := session.Inspect(resp.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
				dimColor.Fprintf(a.out, "  la sesión expira el %s\n", claims.ExpiresAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.tokens.Invalidate()
			writeOK(a.out, "Sesión cerrada")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading current user: %w", err)
			}
			writeUser(a.out, user)

			token, err := a.tokens.Token()
			if err != nil {
				return nil
			}
			if claims, err := session.Inspect(token); err == nil && !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(a.out, "  sesión:  expira el %s\n", claims.ExpiresAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func (a *app) profileCmd() *cobra.Command {
	var fullName string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the logged in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := a.newController()
			defer ctrl.Close()

			if err := ctrl.Start(cmd.Context()); err != nil {
				return err
			}
			user, err := ctrl.UpdateProfile(cmd.Context(), fullName)
			if err != nil {
				return fmt.Errorf("updating profile: %w", err)
			}
			writeOK(a.out, "Perfil actualizado")
			writeUser(a.out, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "full-name", "", "new full name")
	_ = cmd.MarkFlagRequired("full-name")
	return cmd
}
