package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"
)

func cmdCache(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	dbPath := fs.String("db", "", "Cache database (default: in config dir)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if fs.NArg() < 1 {
		return usageError("cache [-db path] list|rm <key>")
	}

	s, err := openStore(*dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := context.Background()

	switch fs.Arg(0) {
	case "list", "ls":
		entries, err := s.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s  %5d  %8.1f KB  %s  %s\n",
				e.ID, e.Resolution, float64(e.Size)/1024, e.CreatedAt.Format(time.DateTime), e.Key)
		}
		fmt.Fprintf(w, "\n(%d entries)\n", len(entries))
	case "rm":
		if fs.NArg() < 2 {
			return usageError("cache rm <key>")
		}
		removed, err := s.Delete(ctx, fs.Arg(1))
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no cache entry: %s", fs.Arg(1))
		}
		fmt.Fprintf(w, "Removed: %s\n", fs.Arg(1))
	default:
		return usageError("cache [-db path] list|rm <key>")
	}
	return nil
}
