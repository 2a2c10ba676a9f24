// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/tictac/client"
	"github.com/danielhkuo/tictac/cliparse"
	"github.com/danielhkuo/tictac/game"
	"github.com/danielhkuo/tictac/identity"
	"github.com/danielhkuo/tictac/room"
	"github.com/dustin/go-humanize"
)

const requestTimeout = 10 * time.Second

type options struct {
	host       bool
	join       string
	size       int
	local      bool
	stats      bool
	clearStats bool
	server     string
}

func parseArgs(args []string, env cliparse.ClientConfig) (options, error) {
	var opts options
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.BoolVar(&opts.host, "host", false, "Host a new online room")
	fs.StringVar(&opts.join, "join", "", "Join the online room with this code")
	fs.IntVar(&opts.size, "size", game.MinBoardSize, "Board size for -host and -local")
	fs.BoolVar(&opts.local, "local", false, "Play both sides on this terminal")
	fs.BoolVar(&opts.stats, "stats", false, "Print the global win/draw counts")
	fs.BoolVar(&opts.clearStats, "clear-stats", false, "Reset the global win/draw counts")
	fs.StringVar(&opts.server, "server", env.ServerURL, "Server URL")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	modes := 0
	for _, set := range []bool{opts.host, opts.join != "", opts.local, opts.stats, opts.clearStats} {
		if set {
			modes++
		}
	}
	switch {
	case modes == 0:
		return options{}, errors.New("one of -host, -join, -local, -stats or -clear-stats is required")
	case modes > 1:
		return options{}, errors.New("choose a single mode")
	}

	if opts.host || opts.local {
		if err := game.ValidateSize(opts.size); err != nil {
			return options{}, err
		}
	}
	return opts, nil
}

func main() {
	cliparse.LoadEnv()
	env := cliparse.ParseClientEnv()

	opts, err := parseArgs(os.Args[1:], env)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, env, os.Stdin, os.Stdout); err != nil {
		slog.Error("play failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, env cliparse.ClientConfig, in io.Reader, out io.Writer) error {
	if opts.local {
		return playLocal(ctx, game.NewLocal(opts.size), readLines(in), out)
	}

	c := client.New(opts.server)

	switch {
	case opts.stats:
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		stats, err := c.SumStats(reqCtx)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatStats(stats))
		return nil

	case opts.clearStats:
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		n, err := c.ClearStats(reqCtx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared %s recorded games\n", humanize.Comma(n))
		return nil
	}

	playerID, err := identity.GetOrCreatePlayerID(env.PlayerFile)
	if err != nil {
		return err
	}

	syncer := room.New(c, playerID, room.WithStats(c))
	defer syncer.Close()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if opts.host {
		code, err := syncer.Create(reqCtx, opts.size)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Room %s created. Share the code with your opponent.\n", code)
	} else {
		symbol, err := syncer.Join(reqCtx, opts.join)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Joined room %s as %s.\n", syncer.Snapshot().Room.Code, symbol)
	}

	return playOnline(ctx, syncer, readLines(in), out)
}

// readLines feeds stdin to the game loop. The channel closes at EOF.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return lines
}

func playOnline(ctx context.Context, syncer *room.Synchronizer, lines <-chan string, out io.Writer) error {
	fmt.Fprint(out, renderSnapshot(syncer.Snapshot(), time.Now()))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-syncer.Events():
			if !ok {
				return nil
			}
			if ev.Source == room.FromRemote {
				fmt.Fprint(out, renderSnapshot(ev.Snapshot, time.Now()))
			}

		case line, ok := <-lines:
			if !ok || line == "q" {
				return nil
			}
			if line == "" {
				continue
			}
			row, col, err := parseMove(line)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}

			moveCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			res, err := syncer.SubmitMove(moveCtx, row, col)
			cancel()
			if err != nil {
				fmt.Fprintf(out, "Move failed: %v\n", err)
				continue
			}
			if res == room.MoveIgnored {
				fmt.Fprintln(out, "Move ignored")
				continue
			}
			fmt.Fprint(out, renderSnapshot(syncer.Snapshot(), time.Now()))
		}
	}
}

func playLocal(ctx context.Context, g *game.Local, lines <-chan string, out io.Writer) error {
	fmt.Fprint(out, renderLocal(g))

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || line == "q" {
				return nil
			}
			switch line {
			case "":
				continue
			case "+":
				g.Grow()
			case "-":
				g.Shrink()
			case "r":
				g.Reset()
			default:
				row, col, err := parseMove(line)
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				if !g.Play(row, col) {
					fmt.Fprintln(out, "Move ignored")
					continue
				}
			}
			fmt.Fprint(out, renderLocal(g))
		}
	}
}
