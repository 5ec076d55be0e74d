// Package socket implements a JSON-over-Unix-socket protocol for the adsaver daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/corey/adsaver/internal/ports"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/adsaver-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/adsaver-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodGenerate   = "generate"
	MethodSort       = "sort"
	MethodHealth     = "health"
	MethodShutdown   = "shutdown"
	MethodListSave   = "lists.save"
	MethodListGet    = "lists.get"
	MethodListList   = "lists.list"
	MethodListDelete = "lists.delete"
)

// Error codes carried alongside Response.Error so clients can restore
// sentinel errors.
const (
	CodeInvalid  = "invalid"
	CodeNotFound = "not_found"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// GenerateParams is the params for a generate request. A nil Config uses
// the daemon's configured defaults. A config decoded from JSON may be
// partial: mode, options and match_types each fall back to the defaults
// when left out (see ResolveConfig). Keywords containing an Exclude term as
// a whole word are dropped after generation.
type GenerateParams struct {
	Columns [3]string     `json:"columns"`
	Config  *combo.Config `json:"config,omitempty"`
	Sort    string        `json:"sort,omitempty"`
	Exclude []string      `json:"exclude,omitempty"`

	configJSON json.RawMessage
}

// UnmarshalJSON decodes strictly and keeps the config object as sent.
func (p *GenerateParams) UnmarshalJSON(data []byte) error {
	type plain GenerateParams
	var wire struct {
		plain
		Config json.RawMessage `json:"config,omitempty"`
	}
	if err := decodeStrict(data, &wire); err != nil {
		return err
	}
	cfg, err := decodeConfig(wire.Config)
	if err != nil {
		return err
	}
	*p = GenerateParams(wire.plain)
	p.Config = cfg
	if cfg != nil {
		p.configJSON = wire.Config
	}
	return nil
}

// ResolveConfig returns the generation config for the request, filling
// whatever the request left out from defaults.
func (p GenerateParams) ResolveConfig(defaults combo.Config) combo.Config {
	return resolveConfig(defaults, p.Config, p.configJSON)
}

// GenerateResult is the result of a generate request. Keywords are in the
// requested sort order.
type GenerateResult struct {
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
	Unique   int      `json:"unique"`
	Raw      int      `json:"raw"`
	Excluded int      `json:"excluded,omitempty"`
	Sort     string   `json:"sort"`
	Warning  string   `json:"warning,omitempty"`
	Elapsed  string   `json:"elapsed"`
}

// SortParams is the params for a sort request. With no Keywords the
// daemon re-sorts its last generated result without regenerating.
type SortParams struct {
	Keywords []string `json:"keywords,omitempty"`
	Sort     string   `json:"sort"`
}

// SortResult is the result of a sort request.
type SortResult struct {
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
	Sort     string   `json:"sort"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status      string `json:"status"`
	Generations uint64 `json:"generations"`
	LastCount   int    `json:"last_count"`
	Campaigns   int    `json:"campaigns"`
	Uptime      string `json:"uptime"`
}

// SaveListParams is the params for a lists.save request. When Keywords is
// empty the list is generated from Columns and Config, minus Exclude terms.
// Config resolves against the defaults as for GenerateParams.
type SaveListParams struct {
	ID       string        `json:"id,omitempty"`
	Name     string        `json:"name"`
	Campaign string        `json:"campaign"`
	AdGroup  string        `json:"ad_group"`
	Columns  [3]string     `json:"columns"`
	Config   *combo.Config `json:"config,omitempty"`
	Sort     string        `json:"sort,omitempty"`
	Exclude  []string      `json:"exclude,omitempty"`
	Keywords []string      `json:"keywords,omitempty"`

	configJSON json.RawMessage
}

// UnmarshalJSON decodes strictly and keeps the config object as sent.
func (p *SaveListParams) UnmarshalJSON(data []byte) error {
	type plain SaveListParams
	var wire struct {
		plain
		Config json.RawMessage `json:"config,omitempty"`
	}
	if err := decodeStrict(data, &wire); err != nil {
		return err
	}
	cfg, err := decodeConfig(wire.Config)
	if err != nil {
		return err
	}
	*p = SaveListParams(wire.plain)
	p.Config = cfg
	if cfg != nil {
		p.configJSON = wire.Config
	}
	return nil
}

// ResolveConfig returns the generation config for the request, filling
// whatever the request left out from defaults.
func (p SaveListParams) ResolveConfig(defaults combo.Config) combo.Config {
	return resolveConfig(defaults, p.Config, p.configJSON)
}

// ListRef addresses one saved list.
type ListRef struct {
	Campaign string `json:"campaign"`
	AdGroup  string `json:"ad_group"`
	ID       string `json:"id"`
}

// ListsParams is the params for a lists.list request. An empty Campaign
// lists campaign names only.
type ListsParams struct {
	Campaign string `json:"campaign,omitempty"`
	AdGroup  string `json:"ad_group,omitempty"`
}

// ListsResult is the result of a lists.list request.
type ListsResult struct {
	Campaigns []string            `json:"campaigns,omitempty"`
	Lists     []ports.ListSummary `json:"lists,omitempty"`
	Count     int                 `json:"count"`
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeConfig validates the shape of a request's config object. A missing
// or null object decodes to nil.
func decodeConfig(raw json.RawMessage) (*combo.Config, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var cfg combo.Config
	if err := decodeStrict(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// resolveConfig overlays the top-level keys present in raw onto defaults.
// A key that is present replaces the default wholesale, so
// {"match_types":{"exact":true}} selects exact only. Without raw JSON (a
// config built in Go) the full config wins.
func resolveConfig(defaults combo.Config, full *combo.Config, raw json.RawMessage) combo.Config {
	if full == nil {
		return defaults
	}
	if raw == nil {
		return *full
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(raw, &present); err != nil {
		return *full
	}
	cfg := defaults
	if _, ok := present["mode"]; ok {
		cfg.Mode = full.Mode
	}
	if _, ok := present["options"]; ok {
		cfg.Options = full.Options
	}
	if _, ok := present["match_types"]; ok {
		cfg.MatchTypes = full.MatchTypes
	}
	return cfg
}
