package cluster

// Cluster is a node in the topic hierarchy, representing a group of
// conversations. Clusters only reference their parent; the children of a
// cluster are derived by the hierarchy package.
type Cluster struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	ChatIDs     []string `json:"chat_ids" bson:"chat_ids"`
	ParentID    *string  `json:"parent_id" bson:"parent_id"` // nil marks a root
	Count       int      `json:"count" bson:"count"`
	X           float64  `json:"x_coord" bson:"x_coord"`
	Y           float64  `json:"y_coord" bson:"y_coord"`

	// Level is the depth asserted by the analysis service. It is advisory:
	// the real depth is always derived from the parent chain.
	Level int `json:"level" bson:"level"`
}

// IsRoot reports whether the cluster has no parent.
func (c Cluster) IsRoot() bool { return c.ParentID == nil }

// Parent returns the parent id, or "" for roots.
func (c Cluster) Parent() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

// DisplayName returns the name if set, otherwise the ID.
func (c Cluster) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// ParentRef returns a parent reference suitable for [Cluster.ParentID].
// An empty id yields nil (a root).
func ParentRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// DataPoint is one sample of a time series in the analytics payload.
// X is a week label such as "2024-03-04".
type DataPoint struct {
	X string  `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Analytics is the response of the external analysis call.
// The four time series are carried through untouched; Clusters is the sole
// input of the hierarchy and layout code.
type Analytics struct {
	CumulativeWords []DataPoint `json:"cumulative_words" bson:"cumulative_words"`
	MessagesPerChat []DataPoint `json:"messages_per_chat" bson:"messages_per_chat"`
	MessagesPerWeek []DataPoint `json:"messages_per_week" bson:"messages_per_week"`
	NewChatsPerWeek []DataPoint `json:"new_chats_per_week" bson:"new_chats_per_week"`
	Clusters        []Cluster   `json:"clusters" bson:"clusters"`
}

// Points returns the embedding coordinates of the given clusters in order.
func Points(cs []Cluster) (xs, ys []float64) {
	xs = make([]float64, len(cs))
	ys = make([]float64, len(cs))
	for i, c := range cs {
		xs[i], ys[i] = c.X, c.Y
	}
	return xs, ys
}

// TotalCount sums Count over cs.
func TotalCount(cs []Cluster) int {
	total := 0
	for _, c := range cs {
		total += c.Count
	}
	return total
}
