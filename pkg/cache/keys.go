package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// keyVersion is bumped whenever the layout of cached values changes, so old
// entries are never read back.
const keyVersion = "v1"

// Keyer builds cache keys.
type Keyer interface {
	// AnalysisKey is the key of an analysis response for a request body.
	AnalysisKey(body []byte) string
	// PayloadKey is the key of derived data computed from a payload, such as
	// rendered artifacts.
	PayloadKey(payloadHash string, opts PayloadKeyOpts) string
}

// PayloadKeyOpts distinguishes derived artifacts of the same payload.
type PayloadKeyOpts struct {
	Format   string  `json:"format"`
	Padding  float64 `json:"padding,omitempty"`
	Level    int     `json:"level,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func join(parts ...string) string { return strings.Join(parts, ":") }

// DefaultKeyer produces unscoped keys of the form
//
//	v1:analysis:<sha256 of body>
//	v1:artifact:<format>:<sha256 of payload hash and opts>
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) AnalysisKey(body []byte) string {
	return join(keyVersion, "analysis", Hash(body))
}

func (DefaultKeyer) PayloadKey(payloadHash string, opts PayloadKeyOpts) string {
	// PayloadKeyOpts holds only scalars; Marshal cannot fail.
	o, _ := json.Marshal(opts)
	return join(keyVersion, "artifact", opts.Format, Hash(append([]byte(payloadHash+"|"), o...)))
}

// ScopedKeyer prefixes every key of an inner Keyer. The analysis client
// scopes keys by server so two services never share responses.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer scopes inner under scope. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, scope string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, scope: strings.TrimSuffix(scope, ":")}
}

// ServerScope derives a short scope from a service URL.
func ServerScope(baseURL string) string {
	return "srv-" + Hash([]byte(baseURL))[:12]
}

// Scope returns the prefix without its separator.
func (k *ScopedKeyer) Scope() string { return k.scope }

func (k *ScopedKeyer) AnalysisKey(body []byte) string {
	return join(k.scope, k.inner.AnalysisKey(body))
}

func (k *ScopedKeyer) PayloadKey(payloadHash string, opts PayloadKeyOpts) string {
	return join(k.scope, k.inner.PayloadKey(payloadHash, opts))
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = (*ScopedKeyer)(nil)
)
