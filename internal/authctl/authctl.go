// Package authctl implements the gophauth administration commands. They run
// against the account store directly, without going through a transport.
package authctl

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Accounts is the part of services.AccountService the commands use.
type Accounts interface {
	Register(ctx context.Context, email, password, fullName string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
	GrantAdmin(ctx context.Context, account *models.Account) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// ErrUsage is returned for an unknown command or malformed arguments.
var ErrUsage = errors.New("usage error")

const Usage = `usage: authctl [-c config.json] [server flags] <command> [arguments]

commands:
  register [-admin] [-name "Full Name"] [email]   create an account (password is prompted)
  grant-admin <email>                             give an account the admin role
  check [email]                                   verify a password
  list                                            list all accounts

The store is selected by the server configuration: the -c file, the
environment, or server flags such as -store sqlite -sqlite auth.db placed
before the command.`

// SplitArgs separates the global flags (-c/-config and the server flags)
// from the command and its arguments.
func SplitArgs(args []string) ([]string, error) {
	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("c", "", "path to JSON config file")
	fs.String("config", "", "path to JSON config file")
	for _, name := range config.FlagNames() {
		fs.String(strings.TrimPrefix(name, "-"), "", "server setting")
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return nil, fmt.Errorf("%w: missing command", ErrUsage)
	}
	return fs.Args(), nil
}

type CLI struct {
	accounts Accounts
	reader   *bufio.Reader
	out      io.Writer
}

func New(accounts Accounts, in io.Reader, out io.Writer) *CLI {
	return &CLI{accounts: accounts, reader: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0].
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch args[0] {
	case "register":
		return c.register(ctx, args[1:])
	case "grant-admin":
		return c.grantAdmin(ctx, args[1:])
	case "check":
		return c.check(ctx, args[1:])
	case "list":
		return c.list(ctx)
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (c *CLI) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	admin := fs.Bool("admin", false, "grant the admin role")
	name := fs.String("name", "", "full name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	email, err := c.emailArg(fs.Args())
	if err != nil {
		return err
	}
	password, err := GetNewPassword(c.out)
	if err != nil {
		return err
	}

	account, err := c.accounts.Register(ctx, email, password, *name)
	if err != nil {
		return err
	}
	if *admin {
		if account, err = c.accounts.GrantAdmin(ctx, account); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.out, "registered %s (id=%s, role=%s)\n", account.Email, account.ID, account.Role)
	return nil
}

func (c *CLI) grantAdmin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: grant-admin takes exactly one email", ErrUsage)
	}
	account, err := c.accounts.GetByEmail(ctx, args[0])
	if err != nil {
		return err
	}
	if account, err = c.accounts.GrantAdmin(ctx, account); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is now %s\n", account.Email, account.Role)
	return nil
}

func (c *CLI) check(ctx context.Context, args []string) error {
	email, err := c.emailArg(args)
	if err != nil {
		return err
	}
	password, err := GetPassword(c.out, "Enter password: ")
	if err != nil {
		return err
	}
	account, err := c.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "credentials valid for %s\n", account.Email)
	return nil
}

func (c *CLI) list(ctx context.Context) error {
	accounts, err := c.accounts.ListAccounts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Email, a.FullName, a.Role, a.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

// emailArg takes the email from args or prompts for it.
func (c *CLI) emailArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		email, err := GetSimpleText(c.reader, "Enter email", c.out)
		if err != nil {
			return "", err
		}
		if email == "" {
			return "", fmt.Errorf("%w: email is required", ErrUsage)
		}
		return email, nil
	case 1:
		return args[0], nil
	}
	return "", fmt.Errorf("%w: expected a single email", ErrUsage)
}
