// Package main is a command-line client for the geodata manager server.
//
// Usage:
//
//	geodata-cli [-server URL] <command> [args]
//
// Commands:
//
//	register <username> <email> <password>
//	login <email> <password>
//	logout
//	account
//	upload <file>
//	list
//	mine
//	rename <id> <new-name>
//	toggle <id>
//	delete <id>
//
// The session token is stored under the user config directory, so login
// persists across invocations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/sakif/geodata-manager/internal/client"
	"github.com/sakif/geodata-manager/internal/model"
)

func main() {
	serverURL := flag.String("server", envOr("GEODATA_SERVER", "http://localhost:8080"), "server base URL")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c := client.New(*serverURL, tokenPath())
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := run(ctx, c, args[0], args[1:]); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "error:", err)
			fmt.Fprintln(os.Stderr, "run: geodata-cli login <email> <password>")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// authCommands require a stored session; they are cut short locally when
// no token is present instead of round-tripping a guaranteed 401.
var authCommands = map[string]bool{
	"account": true, "upload": true, "list": true, "mine": true,
	"rename": true, "toggle": true, "delete": true,
}

func run(ctx context.Context, c *client.Client, command string, args []string) error {
	if authCommands[command] && !c.Authenticated() {
		return fmt.Errorf("%w: not logged in", client.ErrUnauthorized)
	}

	switch command {
	case "register":
		if len(args) != 3 {
			return errors.New("usage: register <username> <email> <password>")
		}
		user, err := c.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("registered %s (%s)\n", user.Username, user.Email)
		return nil

	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <password>")
		}
		user, err := c.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", user.Username)
		return nil

	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "account":
		user, err := c.Account(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("id:       %s\nusername: %s\nemail:    %s\n", user.ID, user.Username, user.Email)
		return nil

	case "upload":
		if len(args) != 1 {
			return errors.New("usage: upload <file>")
		}
		record, err := c.Upload(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %s (%s) as %s\n", record.FileName, record.FileType, record.ID)
		return nil

	case "list":
		records, err := c.List(ctx)
		if err != nil {
			return err
		}
		printRecords(records)
		return nil

	case "mine":
		records, err := c.Mine(ctx)
		if err != nil {
			return err
		}
		printRecords(records)
		return nil

	case "rename":
		if len(args) != 2 {
			return errors.New("usage: rename <id> <new-name>")
		}
		record, err := c.Rename(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("renamed to %s\n", record.FileName)
		return nil

	case "toggle":
		if len(args) != 1 {
			return errors.New("usage: toggle <id>")
		}
		visible, err := c.Toggle(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("visible: %t\n", visible)
		return nil

	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete <id>")
		}
		if err := c.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printRecords(records []model.GeoData) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tVISIBLE\tURL")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", r.ID, r.FileName, r.FileType, r.IsVisible, r.FileURL)
	}
	w.Flush()
}

// tokenPath stores the session under the user config directory, falling
// back to the working directory when it is unavailable.
func tokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".geodata-token"
	}
	return filepath.Join(dir, "geodata-manager", "token")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: geodata-cli [-server URL] <command> [args]

commands:
  register <username> <email> <password>
  login <email> <password>
  logout
  account
  upload <file>
  list
  mine
  rename <id> <new-name>
  toggle <id>
  delete <id>`)
}
