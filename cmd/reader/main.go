// Command reader browses and manages Daily Post from a terminal. Filters,
// pagination and the admin session survive between invocations.
package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
)

// Globals are the flags shared by every command.
type Globals struct {
	Data     string `help:"File the posts and session are stored in." default:"data/reader.json" type:"path"`
	API      string `help:"Base URL of a Daily Post server, e.g. http://localhost:3001/api. Empty uses local storage." env:"DAILYPOST_API"`
	Quota    int64  `help:"Storage quota in bytes for local storage." default:"5242880"`
	LogFile  string `help:"Write logs to this file." name:"log-file"`
	LogLevel string `help:"Log level." default:"info" name:"log-level" enum:"debug,info,warn,error"`
}

type CLI struct {
	Globals

	List         ListCmd         `cmd:"" default:"1" help:"Show the current page of posts."`
	Search       SearchCmd       `cmd:"" help:"Search titles, excerpts and content."`
	Category     CategoryCmd     `cmd:"" help:"Filter by category."`
	More         MoreCmd         `cmd:"" help:"Load the next page of posts."`
	Show         ShowCmd         `cmd:"" help:"Read a post."`
	Login        LoginCmd        `cmd:"" help:"Log in as admin."`
	Logout       LogoutCmd       `cmd:"" help:"Log out."`
	Create       CreateCmd       `cmd:"" help:"Publish a post (admin)."`
	Edit         EditCmd         `cmd:"" help:"Edit a post (admin)."`
	Delete       DeleteCmd       `cmd:"" help:"Delete a post (admin)."`
	HashPassword HashPasswordCmd `cmd:"" name:"hash-password" help:"Print a bcrypt hash for ADMIN_PASSWORD_HASH."`
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("reader"),
		kong.Description("Daily Post in your terminal."),
		kong.UsageOnError(),
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	a, err := newApp(context.Background(), cli.Globals, os.Stdout)
	kctx.FatalIfErrorf(err)
	defer a.close()

	kctx.FatalIfErrorf(kctx.Run(a))
}
