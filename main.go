package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"inhouse/internal/back"
	"inhouse/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string) error {
	switch command {
	case "serve":
		conf, err := config.NewFromUserConfigDir()
		if err != nil {
			return err
		}

		return serve(conf)
	case "migrate":
		return runMigrations()
	case "rerank":
		conf, err := config.NewFromUserConfigDir()
		if err != nil {
			return err
		}

		b, err := newBack(conf)
		if err != nil {
			return err
		}

		return b.Rerank()
	case "dev:fixtures":
		return loadFixtures()
	case "version":
		fmt.Fprintf(os.Stdout, "inhouse %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
		return nil
	}
}

func newBack(conf *config.Config) (*back.Back, error) {
	return back.New(
		"sqlite3", "./inhouse.db",
		conf.MatchmakingMaxPerRole,
		conf.ProposalTimeout(),
	)
}

func help() string {
	return fmt.Sprintf(`
inhouse runs 5v5 custom game queues, matchmaking, and ratings for a
Discord community.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      apply the database migrations
    rerank       recompute every rating from the stored game histories
    serve        start the Discord bot and background tasks
    version      display the current version
`,
		os.Args[0],
	)
}
