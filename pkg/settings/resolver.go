package settings

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sipeed/chatwarden/pkg/logger"
	"github.com/sipeed/chatwarden/pkg/store"
)

// envVars maps each settings key to its override variable. The layer keys
// off presence: a variable that is set overrides the layers below even when
// its value is empty.
var envVars = map[string]string{
	KeyAdminUIDs:                "CHAT_PERMS_ADMIN_UIDS",
	KeyAllowChatGroup:           "CHAT_PERMS_ALLOW_CHAT_GROUP",
	KeyDenyChatGroup:            "CHAT_PERMS_DENY_CHAT_GROUP",
	KeyMinReputation:            "CHAT_PERMS_MIN_REPUTATION",
	KeyMinPosts:                 "CHAT_PERMS_MIN_POSTS",
	KeyChatNotYetAllowedMessage: "CHAT_PERMS_NOT_YET_ALLOWED_MESSAGE",
	KeyChatDeniedMessage:        "CHAT_PERMS_DENIED_MESSAGE",
	KeyWarningEnabled:           "CHAT_PERMS_WARNING_ENABLED",
	KeyWarningMessage:           "CHAT_PERMS_WARNING_MESSAGE",
	KeyWarningDisplayType:       "CHAT_PERMS_WARNING_DISPLAY_TYPE",
	KeyKeywordAlertsEnabled:     "CHAT_PERMS_KEYWORD_ALERTS_ENABLED",
	KeyKeywordList:              "CHAT_PERMS_KEYWORD_LIST",
	KeyAlertRecipientUIDs:       "CHAT_PERMS_ALERT_RECIPIENT_UIDS",
}

var boolKeys = map[string]bool{
	KeyWarningEnabled:       true,
	KeyKeywordAlertsEnabled: true,
}

// Resolver produces effective settings snapshots. Snapshots are replaced
// atomically on Refresh; readers always see a consistent value.
type Resolver struct {
	store store.Store
	cur   atomic.Pointer[Settings]

	// Environment overrides the process environment when non-nil (tests).
	Environment map[string]string
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve returns the current snapshot, computing it on first use.
func (r *Resolver) Resolve() Settings {
	if s := r.cur.Load(); s != nil {
		return *s
	}
	return r.Refresh()
}

// Refresh recomputes the snapshot from all three layers and swaps it in.
// It never fails: a broken store layer is logged and treated as empty.
func (r *Resolver) Refresh() Settings {
	merged := make(map[string]string)

	stored, err := r.store.GetAll(Namespace)
	if err != nil {
		logger.WarnCF("settings", "Settings store read failed, using defaults", map[string]any{"error": err.Error()})
		stored = nil
	}
	for key, val := range stored {
		if boolKeys[key] || val != "" {
			merged[key] = val
		}
	}

	for key, val := range r.envLayer() {
		merged[key] = val
	}

	s := coerce(merged)
	r.cur.Store(&s)
	return s
}

func (r *Resolver) envLayer() map[string]string {
	lookup := os.LookupEnv
	if r.Environment != nil {
		lookup = func(name string) (string, bool) {
			v, ok := r.Environment[name]
			return v, ok
		}
	}

	out := make(map[string]string)
	for key, name := range envVars {
		if v, ok := lookup(name); ok {
			out[key] = v
		}
	}
	return out
}

// coerce turns the merged string layer into a fully populated Settings.
// Type coercion happens here, after all layers are merged, never per layer.
func coerce(merged map[string]string) Settings {
	s := Defaults()

	if raw, ok := merged[KeyAdminUIDs]; ok {
		if ids := parseUIDList(raw); ids != nil {
			s.AdminUIDs = ids
		}
	}
	if raw, ok := merged[KeyAllowChatGroup]; ok {
		s.AllowChatGroup = raw
	}
	if raw, ok := merged[KeyDenyChatGroup]; ok {
		s.DenyChatGroup = raw
	}
	if n, ok := parseIntSetting(merged, KeyMinReputation); ok {
		s.MinReputation = n
	}
	if n, ok := parseIntSetting(merged, KeyMinPosts); ok {
		s.MinPosts = n
	}
	if raw, ok := merged[KeyChatNotYetAllowedMessage]; ok {
		s.ChatNotYetAllowedMessage = raw
	}
	if raw, ok := merged[KeyChatDeniedMessage]; ok {
		s.ChatDeniedMessage = raw
	}
	if raw, ok := merged[KeyWarningEnabled]; ok {
		s.WarningEnabled = coerceBool(raw)
	}
	if raw, ok := merged[KeyWarningMessage]; ok {
		s.WarningMessage = raw
	}
	if raw, ok := merged[KeyWarningDisplayType]; ok && IsValidDisplayType(raw) {
		s.WarningDisplayType = raw
	}
	if raw, ok := merged[KeyKeywordAlertsEnabled]; ok {
		s.KeywordAlertsEnabled = coerceBool(raw)
	}
	if raw, ok := merged[KeyKeywordList]; ok {
		if kws := parseKeywordList(raw); kws != nil {
			s.KeywordList = kws
		} else if strings.TrimSpace(raw) == "" || strings.HasPrefix(strings.TrimSpace(raw), "[") {
			// Explicitly configured empty list wins over the default.
			s.KeywordList = []string{}
		}
	}
	if raw, ok := merged[KeyAlertRecipientUIDs]; ok {
		if ids := parseUIDList(raw); ids != nil {
			s.AlertRecipientUIDs = ids
		} else {
			s.AlertRecipientUIDs = []int64{}
		}
	}

	if s.MinReputation < 0 {
		s.MinReputation = Defaults().MinReputation
	}
	if s.MinPosts < 0 {
		s.MinPosts = Defaults().MinPosts
	}
	return s
}

func parseIntSetting(merged map[string]string, key string) (int, bool) {
	raw, ok := merged[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
