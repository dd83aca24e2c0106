package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v1"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/crawler"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/shell"
)

var shellCommand = cli.Command{
	Name:      "shell",
	Usage:     "Query one or more index files interactively",
	ArgsUsage: "<index file>...",
	Flags: []cli.Flag{
		cli.BoolTFlag{Name: "validate", Usage: "verify each file's checksum when opening it"},
	},
	Action: runShell,
}

var memshellCommand = cli.Command{
	Name:      "memshell",
	Usage:     "Crawl a directory into memory and query it interactively",
	ArgsUsage: "<directory>",
	Action:    runMemshell,
}

func runShell(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no index files specified")
	}
	p, err := executor.Open(c.Args(), c.BoolT("validate"))
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return shell.Run(ctx, os.Stdin, os.Stdout, p.Process)
}

func runMemshell(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one directory")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := crawler.Crawl(ctx, c.Args().First())
	if err != nil {
		return err
	}
	return shell.Run(ctx, os.Stdin, os.Stdout, shell.MemorySearch(res.Index, res.DocTable))
}
