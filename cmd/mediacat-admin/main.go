// Command mediacat-admin provisions accounts and the schema out of band.
//
//	mediacat-admin migrate
//	mediacat-admin create-user <username> <password> [admin|user]
//	mediacat-admin set-password <username> <password>
//	mediacat-admin version
//
// Configuration is read the same way as the server (config.yaml, MEDIACAT_*
// and the legacy DATABASE_URL variable).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/config"
	"github.com/JustinTDCT/mediacat/internal/db"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/models"
	"github.com/JustinTDCT/mediacat/internal/users"
	"github.com/JustinTDCT/mediacat/internal/validation"
	"github.com/JustinTDCT/mediacat/internal/version"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage:
  mediacat-admin migrate
  mediacat-admin create-user <username> <password> [admin|user]
  mediacat-admin set-password <username> <password>
  mediacat-admin version`)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mediacat-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	level := fs.String("log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	logging.Init(logging.Config{Level: *level, Format: "console"})

	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "version":
		fmt.Fprintln(out, version.Load().Version)
		return nil
	case "migrate":
		if len(cmdArgs) != 0 {
			return errUsage
		}
		return withDB(ctx, func(conn *db.DB) error {
			if err := db.Migrate(ctx, conn.DB); err != nil {
				return err
			}
			fmt.Fprintln(out, "migrations applied")
			return nil
		})
	case "create-user":
		req, err := parseCreateUser(cmdArgs)
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return err
		}
		return withDB(ctx, func(conn *db.DB) error {
			u := &models.User{Username: req.Username, PasswordHash: hash, Role: req.Role, IsActive: true}
			if err := users.NewRepository(conn.DB).Create(ctx, u); err != nil {
				return err
			}
			fmt.Fprintf(out, "created %s %q with id %d\n", u.Role, u.Username, u.ID)
			return nil
		})
	case "set-password":
		if len(cmdArgs) != 2 {
			return errUsage
		}
		req := users.CreateRequest{Username: cmdArgs[0], Password: cmdArgs[1], Role: models.RoleUser}
		if err := validation.Struct(&req); err != nil {
			return describe(err)
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return err
		}
		return withDB(ctx, func(conn *db.DB) error {
			if err := users.NewRepository(conn.DB).SetPassword(ctx, req.Username, hash); err != nil {
				return err
			}
			fmt.Fprintf(out, "password updated for %q\n", req.Username)
			return nil
		})
	default:
		return errUsage
	}
}

// parseCreateUser reads <username> <password> [role]. Any role other than
// "user" provisions an admin.
func parseCreateUser(args []string) (users.CreateRequest, error) {
	if len(args) < 2 || len(args) > 3 {
		return users.CreateRequest{}, errUsage
	}
	req := users.CreateRequest{Username: args[0], Password: args[1], Role: models.RoleAdmin}
	if len(args) == 3 && args[2] == string(models.RoleUser) {
		req.Role = models.RoleUser
	}
	if err := validation.Struct(&req); err != nil {
		return users.CreateRequest{}, describe(err)
	}
	return req, nil
}

// describe flattens a validation error into one line for the terminal.
func describe(err error) error {
	fields := apperr.FieldsOf(err)
	if len(fields) == 0 {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fields[name])
	}
	return errors.New(strings.Join(msgs, "; "))
}

func withDB(ctx context.Context, fn func(*db.DB) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}
