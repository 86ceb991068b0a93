package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/geometry"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
	"github.com/matzehuels/clustermap/pkg/pipeline"
	"github.com/matzehuels/clustermap/pkg/snapshot"
	"github.com/matzehuels/clustermap/pkg/view"
)

// LevelsResponse describes every level of a snapshot.
type LevelsResponse struct {
	Levels   []LevelInfo `json:"levels"`
	Excluded []string    `json:"excluded"`
}

// LevelInfo is a level summary with its cluster ids.
type LevelInfo struct {
	hierarchy.LevelSummary
	IDs []string `json:"ids"`
}

// ClusterShare is a cluster with its share of the level.
type ClusterShare struct {
	cluster.Cluster
	Share       float64 `json:"share"`
	HasChildren bool    `json:"has_children"`
}

// LevelResponse lists the clusters of one level.
type LevelResponse struct {
	Depth    int            `json:"depth"`
	Clusters []ClusterShare `json:"clusters"`
}

// ChildrenResponse lists the children of a cluster.
type ChildrenResponse struct {
	Parent   string         `json:"parent"`
	Depth    int            `json:"depth"`
	Children []ClusterShare `json:"children"`
}

// FootprintsResponse lists the child footprints of the parents at a depth.
type FootprintsResponse struct {
	Depth   int           `json:"depth"`
	Padding float64       `json:"padding"`
	Bubbles []view.Bubble `json:"bubbles"`
}

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []snapshot.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createSnapshot(w http.ResponseWriter, r *http.Request) {
	payload, err := cluster.Decode(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := snapshot.New(r.URL.Query().Get("name"), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("snapshot created", "id", snap.ID, "name", snap.Name, "clusters", snap.Clusters)
	writeJSON(w, http.StatusCreated, snap.Summary())
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), snap.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getLevels(w http.ResponseWriter, r *http.Request) {
	lm, err := s.levelMap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := LevelsResponse{Excluded: lm.Excluded()}
	if resp.Excluded == nil {
		resp.Excluded = []string{}
	}
	for _, sum := range hierarchy.Summarize(lm) {
		level := lm.Level(sum.Depth)
		ids := make([]string, len(level))
		for i, c := range level {
			ids[i] = c.ID
		}
		resp.Levels = append(resp.Levels, LevelInfo{LevelSummary: sum, IDs: ids})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getLevel(w http.ResponseWriter, r *http.Request) {
	lm, err := s.levelMap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := depthParam(r, lm)
	if err != nil {
		writeError(w, err)
		return
	}
	level := lm.Level(d)
	writeJSON(w, http.StatusOK, LevelResponse{Depth: d, Clusters: withShares(lm, level)})
}

func (s *Server) getChildren(w http.ResponseWriter, r *http.Request) {
	lm, err := s.levelMap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cid := chi.URLParam(r, "cid")
	d, ok := lm.DepthOf(cid)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeClusterNotFound, "cluster %q not found", cid))
		return
	}
	writeJSON(w, http.StatusOK, ChildrenResponse{
		Parent:   cid,
		Depth:    d + 1,
		Children: withShares(lm, lm.Children(cid)),
	})
}

func (s *Server) getFootprints(w http.ResponseWriter, r *http.Request) {
	lm, err := s.levelMap(r)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := depthParam(r, lm)
	if err != nil {
		writeError(w, err)
		return
	}
	padding, err := floatQuery(r, "padding")
	if err != nil {
		writeError(w, err)
		return
	}
	pm := view.NewPointMap(lm, padding)
	pm.SetLevel(d)
	bubbles := pm.Bubbles()
	if bubbles == nil {
		bubbles = []view.Bubble{}
	}
	if padding <= 0 {
		padding = geometry.DefaultPaddingFactor
	}
	writeJSON(w, http.StatusOK, FootprintsResponse{Depth: d, Padding: padding, Bubbles: bubbles})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	snap, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	format := chi.URLParam(r, "format")
	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: r.URL.Query().Get("detailed") == "true",
	}
	if opts.PaddingFactor, err = floatQuery(r, "padding"); err != nil {
		writeError(w, err)
		return
	}
	if v := r.URL.Query().Get("level"); v != "" {
		if opts.Level, err = strconv.Atoi(v); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidLevel, "invalid level %q", v))
			return
		}
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	res := s.runner.Layout(r.Context(), snap.Payload, opts)
	out, err := s.runner.Render(r.Context(), res, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out[format])
}

func (s *Server) resolve(r *http.Request) (*snapshot.Snapshot, error) {
	return snapshot.Resolve(r.Context(), s.store, chi.URLParam(r, "id"))
}

func (s *Server) levelMap(r *http.Request) (*hierarchy.LevelMap, error) {
	snap, err := s.resolve(r)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(snap.Payload.Clusters), nil
}

func depthParam(r *http.Request, lm *hierarchy.LevelMap) (int, error) {
	raw := chi.URLParam(r, "depth")
	d, err := strconv.Atoi(raw)
	if err != nil || d < 0 || d >= lm.Depth() {
		return 0, errors.New(errors.ErrCodeInvalidLevel, "level %q out of range (hierarchy has %d levels)", raw, lm.Depth())
	}
	return d, nil
}

func floatQuery(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", key, raw)
	}
	return f, nil
}

func withShares(lm *hierarchy.LevelMap, cs []cluster.Cluster) []ClusterShare {
	out := make([]ClusterShare, len(cs))
	for i, c := range cs {
		share, _ := hierarchy.ShareOf(lm, c.ID)
		out[i] = ClusterShare{Cluster: c, Share: share, HasChildren: lm.HasChildren(c.ID)}
	}
	return out
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG, pipeline.FormatBubble:
		return "image/svg+xml"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz"
	}
}
