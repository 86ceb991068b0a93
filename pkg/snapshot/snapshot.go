// Package snapshot persists analysis payloads so that they can be browsed and
// served later without calling the analysis service again.
//
// Two backends implement [Store]:
//   - [FileStore]: JSON files under ~/.local/share/clustermap/snapshots, for the CLI
//   - [MongoStore]: a MongoDB collection, for the HTTP server
//
// Snapshots are immutable once stored; Put with an existing id replaces it.
package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New(errors.ErrCodeSnapshotNotFound, "snapshot not found")

// Snapshot is a named, validated analysis payload.
type Snapshot struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	Clusters  int               `json:"clusters" bson:"clusters"`
	Payload   cluster.Analytics `json:"payload" bson:"payload"`
}

// Summary is a snapshot without its payload.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Clusters  int       `json:"clusters" bson:"clusters"`
}

// Summary drops the payload.
func (s *Snapshot) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt, Clusters: s.Clusters}
}

// New validates payload and wraps it in a snapshot with a fresh id.
// An empty name defaults to the creation time.
func New(name string, payload cluster.Analytics) (*Snapshot, error) {
	if err := cluster.Validate(payload); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if name == "" {
		name = now.Format("2006-01-02 15:04:05")
	}
	if err := errors.ValidateSnapshotName(name); err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		Clusters:  len(payload.Clusters),
		Payload:   payload,
	}, nil
}

// ValidateID checks that id is a canonical snapshot id.
func ValidateID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != strings.ToLower(id) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid snapshot id %q", id)
	}
	return nil
}

// Store persists snapshots.
type Store interface {
	// Get returns the snapshot with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Snapshot, error)
	// Put stores s, replacing any snapshot with the same id.
	Put(ctx context.Context, s *Snapshot) error
	// List returns every snapshot, newest first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Resolve finds a snapshot by full id, unique id prefix, or exact name.
func Resolve(ctx context.Context, st Store, ref string) (*Snapshot, error) {
	if ValidateID(ref) == nil {
		return st.Get(ctx, ref)
	}
	list, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	var match []Summary
	for _, s := range list {
		if s.Name == ref || (len(ref) >= 4 && strings.HasPrefix(s.ID, strings.ToLower(ref))) {
			match = append(match, s)
		}
	}
	switch len(match) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return st.Get(ctx, match[0].ID)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%q matches %d snapshots", ref, len(match))
	}
}
