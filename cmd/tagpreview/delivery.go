package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"checkinbot/internal/roster"
)

// fileDelivery writes artifacts to a directory and hands back a file:// URL.
type fileDelivery struct {
	dir string
}

func (d *fileDelivery) Deliver(ctx context.Context, a roster.Artifact) (roster.Handle, error) {
	if err := ctx.Err(); err != nil {
		return roster.Handle{}, err
	}

	path, err := filepath.Abs(filepath.Join(d.dir, a.Name))
	if err != nil {
		return roster.Handle{}, err
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return roster.Handle{}, fmt.Errorf("error writing %s: %w", path, err)
	}
	return roster.Handle{URL: "file://" + filepath.ToSlash(path)}, nil
}
