package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/j-veylop/openai-costs-tui/internal/config"
	"github.com/j-veylop/openai-costs-tui/internal/db"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local dashboard users",
	}
	cmd.AddCommand(newUserAddCmd(), newUserListCmd(), newUserPasswdCmd(), newUserDeleteCmd())
	return cmd
}

// withAuth opens the user store and runs fn against an auth service.
func withAuth(fn func(*auth.Service) error) error {
	cfg, err := config.LoadLocal()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	svc := auth.New(database, auth.Config{
		Secret:     cfg.SessionSecret,
		SessionTTL: cfg.SessionTTL,
	})
	if err := svc.SeedDefaultAdmin(context.Background()); err != nil {
		return err
	}
	return fn(svc)
}

func newUserAddCmd() *cobra.Command {
	var nu auth.NewUser
	var admin bool

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Long: `Create a user. The password is read from the terminal.

Examples:
  oct user add alice --first-name Alice
  oct user add bob --admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nu.Username = args[0]
			nu.Role = models.RoleUser
			if admin {
				nu.Role = models.RoleAdmin
			}

			password, err := readNewPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			nu.Password = password

			return withAuth(func(svc *auth.Service) error {
				u, err := svc.CreateUser(cmd.Context(), nu)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %q\n", u.Role, u.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nu.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&nu.LastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAuth(func(svc *auth.Service) error {
				users, err := svc.ListUsers(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}
				return writeUsers(cmd.OutOrStdout(), users)
			})
		},
	}
}

func writeUsers(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tROLE\tCREATED")
	for i := range users {
		u := &users[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Username, u.DisplayName(), u.Role, u.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func newUserPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username>",
		Short: "Set a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readNewPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return withAuth(func(svc *auth.Service) error {
				if err := svc.SetPassword(cmd.Context(), args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %q\n", args[0])
				return nil
			})
		},
	}
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(func(svc *auth.Service) error {
				if err := svc.DeleteUser(cmd.Context(), args[0]); err != nil {
					if errors.Is(err, db.ErrUserNotFound) {
						return fmt.Errorf("no user named %q", args[0])
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
				return nil
			})
		},
	}
}

var errPasswordMismatch = errors.New("passwords do not match")

// readNewPassword asks for a password twice. On a terminal the input is not
// echoed; otherwise two lines are read from in.
func readNewPassword(in io.Reader, prompt io.Writer) (string, error) {
	read := lineReader(in)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		read = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			return string(b), err
		}
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := read()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(prompt, "Confirm password: ")
	second, err := read()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if first != second {
		return "", errPasswordMismatch
	}
	if len(first) < auth.MinPasswordLength {
		return "", auth.ErrPasswordTooShort
	}
	return first, nil
}

func lineReader(in io.Reader) func() (string, error) {
	scanner := bufio.NewScanner(in)
	return func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
}
