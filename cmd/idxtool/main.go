// Command idxtool queries and inspects index files from the terminal.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/logger"
)

func main() {
	app := cli.NewApp()
	app.Name = "idxtool"
	app.HelpName = os.Args[0]
	app.Usage = "query and inspect diskindex files"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn or error"},
	}
	app.Commands = []cli.Command{
		shellCommand,
		memshellCommand,
		verifyCommand,
		statsCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		logger.Setup(config.LoggingConfig{Level: ctx.String("log-level"), Format: "text"})
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "idxtool: %v\n", err)
		os.Exit(1)
	}
}
