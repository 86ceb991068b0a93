package cluster

import (
	"math"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Validate checks the payload schema.
//
// It rejects payloads where a cluster has an invalid or duplicate id, a
// negative count or level, or a non-finite coordinate. Parent references are
// only checked for well-formedness (a non-nil parent must be a valid id);
// whether the parent exists is left to the hierarchy builder.
func Validate(a Analytics) error {
	if a.Clusters == nil {
		return errors.New(errors.ErrCodeInvalidPayload, "clusters field is required")
	}

	seen := make(map[string]struct{}, len(a.Clusters))
	for i, c := range a.Clusters {
		if err := errors.ValidateClusterID(c.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPayload, err, "cluster %d", i)
		}
		if _, dup := seen[c.ID]; dup {
			return errors.New(errors.ErrCodeInvalidPayload, "duplicate cluster id %q", c.ID)
		}
		seen[c.ID] = struct{}{}

		if c.ParentID != nil {
			if err := errors.ValidateClusterID(*c.ParentID); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPayload, err, "cluster %q parent", c.ID)
			}
		}
		if c.Count < 0 {
			return errors.New(errors.ErrCodeInvalidPayload, "cluster %q has negative count %d", c.ID, c.Count)
		}
		if c.Level < 0 {
			return errors.New(errors.ErrCodeInvalidPayload, "cluster %q has negative level %d", c.ID, c.Level)
		}
		if !finite(c.X) || !finite(c.Y) {
			return errors.New(errors.ErrCodeInvalidPayload, "cluster %q has non-finite coordinates", c.ID)
		}
	}

	for name, series := range map[string][]DataPoint{
		"cumulative_words":   a.CumulativeWords,
		"messages_per_chat":  a.MessagesPerChat,
		"messages_per_week":  a.MessagesPerWeek,
		"new_chats_per_week": a.NewChatsPerWeek,
	} {
		for _, p := range series {
			if !finite(p.Y) {
				return errors.New(errors.ErrCodeInvalidPayload, "%s contains a non-finite value at %q", name, p.X)
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
