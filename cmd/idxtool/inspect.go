package main

import (
	"errors"
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
)

var verifyCommand = cli.Command{
	Name:      "verify",
	Usage:     "Check the magic number and checksum of index files",
	ArgsUsage: "<index file>...",
	Action:    runVerify,
}

var statsCommand = cli.Command{
	Name:      "stats",
	Usage:     "Print the header and content counts of an index file",
	ArgsUsage: "<index file>",
	Action:    runStats,
}

func runVerify(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no index files specified")
	}
	failed := 0
	for _, path := range c.Args() {
		r, err := segment.OpenIndex(path, true)
		if err != nil {
			fmt.Printf("%s: FAILED: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: OK (checksum %08x)\n", path, r.Header().Checksum)
		r.Close()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, c.NArg())
	}
	return nil
}

func runStats(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one index file")
	}
	r, err := segment.OpenIndex(c.Args().First(), false)
	if err != nil {
		return err
	}
	defer r.Close()

	s, err := segment.Summarize(r)
	if err != nil {
		return err
	}
	fmt.Printf("file:           %s\n", r.Path())
	fmt.Printf("size:           %d bytes\n", s.Size)
	fmt.Printf("magic:          %#08x\n", s.Header.Magic)
	fmt.Printf("checksum:       %08x\n", s.Header.Checksum)
	fmt.Printf("doctable bytes: %d\n", s.Header.DocTableBytes)
	fmt.Printf("index bytes:    %d\n", s.Header.IndexBytes)
	fmt.Printf("documents:      %d\n", s.Docs)
	fmt.Printf("words:          %d\n", s.Words)
	fmt.Printf("postings:       %d\n", s.Postings)
	fmt.Printf("positions:      %d\n", s.Positions)
	return nil
}
