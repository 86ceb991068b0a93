package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// maxParallelLoads bounds the number of exports parsed at once.
const maxParallelLoads = 4

// LoadFiles reads every export concurrently and concatenates the results in
// argument order. A chat id that appears in two files is an error.
func LoadFiles(ctx context.Context, paths []string, f Format) ([]Conversation, error) {
	results := make([][]Conversation, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			convs, err := LoadFile(path, f)
			if err != nil {
				return err
			}
			results[i] = convs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Conversation
	for _, r := range results {
		all = append(all, r...)
	}
	if all == nil {
		all = []Conversation{}
	}
	if err := ValidateAll(all); err != nil {
		return nil, err
	}
	return all, nil
}

// LoadFile reads a single export.
func LoadFile(path string, f Format) ([]Conversation, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "export %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	convs, err := Parse(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return convs, nil
}

// WriteFile writes conversations in the normalized format.
func WriteFile(convs []Conversation, path string) error {
	data, err := json.MarshalIndent(convs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
