// Package warning annotates outbound chat data with a configurable privacy
// notice. Presence of the annotation is itself the enabled signal: when the
// feature is off, outgoing data carries no warning key at all.
package warning

import (
	"strings"

	"github.com/sipeed/chatwarden/pkg/normalize"
	"github.com/sipeed/chatwarden/pkg/settings"
)

// Key is the field added to outbound data when warnings are enabled.
const Key = "chatPermsWarning"

// Annotation is the injected warning payload.
type Annotation struct {
	Message     string `json:"message"`
	DisplayType string `json:"displayType"`
}

// Config is the effective warning configuration, with fallbacks applied.
type Config struct {
	Enabled     bool
	Message     string
	DisplayType string
}

// ConfigFrom extracts the warning configuration from a settings snapshot,
// substituting the default message when the configured one is blank and the
// default display type when the configured one is outside the enumeration.
func ConfigFrom(cfg settings.Settings) Config {
	msg := cfg.WarningMessage
	if strings.TrimSpace(msg) == "" {
		msg = settings.DefaultWarningMessage
	}
	dt := cfg.WarningDisplayType
	if !settings.IsValidDisplayType(dt) {
		dt = settings.DisplayBanner
	}
	return Config{
		Enabled:     cfg.WarningEnabled,
		Message:     msg,
		DisplayType: dt,
	}
}

// Inject returns data with the warning annotation attached when enabled.
// Nil input becomes an empty mapping; non-mapping input is wrapped under
// "originalData". When warnings are disabled the input passes through with
// no warning key added.
func Inject(data any, cfg settings.Settings) normalize.Event {
	var out normalize.Event
	switch v := data.(type) {
	case nil:
		out = normalize.Event{}
	case normalize.Event:
		out = v.Clone()
	case map[string]any:
		out = normalize.Event(v).Clone()
	default:
		out = normalize.Event{"originalData": data}
	}

	wc := ConfigFrom(cfg)
	if !wc.Enabled {
		return out
	}

	out[Key] = Annotation{
		Message:     wc.Message,
		DisplayType: wc.DisplayType,
	}
	return out
}
