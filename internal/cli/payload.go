package cli

import (
	"context"
	"os"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

// loadPayload reads a payload from a JSON file, or from the snapshot store
// when ref is not an existing file. It returns a label for display.
func (c *CLI) loadPayload(ctx context.Context, ref string) (cluster.Analytics, string, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		a, err := cluster.ReadFile(ref)
		return a, ref, err
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return cluster.Analytics{}, "", err
	}
	defer st.Close()

	snap, err := resolveSnapshot(ctx, st, ref)
	if err != nil {
		return cluster.Analytics{}, "", err
	}
	c.Logger.Debug("loaded snapshot", "id", snap.ID, "name", snap.Name)
	return snap.Payload, snap.Name, nil
}
