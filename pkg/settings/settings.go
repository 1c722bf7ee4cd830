// Package settings resolves the effective moderation configuration from
// three layers in ascending precedence: built-in defaults, the persisted
// settings store, and environment overrides.
package settings

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Namespace is the settings store namespace all keys live under.
const Namespace = "chat-perms"

// Store field keys, matching what the admin panel submits.
const (
	KeyAdminUIDs                = "adminUids"
	KeyAllowChatGroup           = "allowChatGroup"
	KeyDenyChatGroup            = "denyChatGroup"
	KeyMinReputation            = "minReputation"
	KeyMinPosts                 = "minPosts"
	KeyChatNotYetAllowedMessage = "chatNotYetAllowedMessage"
	KeyChatDeniedMessage        = "chatDeniedMessage"
	KeyWarningEnabled           = "warningEnabled"
	KeyWarningMessage           = "warningMessage"
	KeyWarningDisplayType       = "warningDisplayType"
	KeyKeywordAlertsEnabled     = "keywordAlertsEnabled"
	KeyKeywordList              = "keywordList"
	KeyAlertRecipientUIDs       = "alertRecipientUids"
)

// Warning display types accepted by the client.
const (
	DisplayBanner = "banner"
	DisplayPopup  = "popup"
	DisplayInline = "inline"
)

// ValidDisplayTypes is the fixed display type enumeration.
var ValidDisplayTypes = []string{DisplayBanner, DisplayPopup, DisplayInline}

// IsValidDisplayType reports whether t is in the display type enumeration.
func IsValidDisplayType(t string) bool {
	for _, v := range ValidDisplayTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Settings is the fully resolved configuration snapshot. Every field is
// always populated; absent or invalid inputs fall back to defaults at
// every layer.
type Settings struct {
	AdminUIDs                []int64  `json:"adminUids"`
	AllowChatGroup           string   `json:"allowChatGroup"`
	DenyChatGroup            string   `json:"denyChatGroup"`
	MinReputation            int      `json:"minReputation"`
	MinPosts                 int      `json:"minPosts"`
	ChatNotYetAllowedMessage string   `json:"chatNotYetAllowedMessage"`
	ChatDeniedMessage        string   `json:"chatDeniedMessage"`
	WarningEnabled           bool     `json:"warningEnabled"`
	WarningMessage           string   `json:"warningMessage"`
	WarningDisplayType       string   `json:"warningDisplayType"`
	KeywordAlertsEnabled     bool     `json:"keywordAlertsEnabled"`
	KeywordList              []string `json:"keywordList"`
	AlertRecipientUIDs       []int64  `json:"alertRecipientUids"`
}

// DefaultWarningMessage is shown when no warning message is configured.
const DefaultWarningMessage = "שים לב: ההנהלה יכולה לצפות בהודעות הצ'אט"

// Defaults returns the built-in base layer.
func Defaults() Settings {
	return Settings{
		AdminUIDs:                []int64{1},
		AllowChatGroup:           "allowChat",
		DenyChatGroup:            "denyChat",
		MinReputation:            10,
		MinPosts:                 5,
		ChatNotYetAllowedMessage: "CHAT_NOT_YET_ALLOWED_MESSAGE",
		ChatDeniedMessage:        "CHAT_DENIED_MESSAGE",
		WarningEnabled:           false,
		WarningMessage:           DefaultWarningMessage,
		WarningDisplayType:       DisplayBanner,
		KeywordAlertsEnabled:     false,
		KeywordList:              []string{},
		AlertRecipientUIDs:       []int64{},
	}
}

// IsAdmin reports whether uid is in the admin identifier set.
func (s Settings) IsAdmin(uid int64) bool {
	for _, id := range s.AdminUIDs {
		if id == uid {
			return true
		}
	}
	return false
}

// EncodeForStore serializes a Settings into the string-valued map the
// persisted store holds: arrays as JSON text, booleans as "true"/"false",
// integers in decimal.
func EncodeForStore(s Settings) map[string]string {
	return map[string]string{
		KeyAdminUIDs:                encodeJSON(s.AdminUIDs),
		KeyAllowChatGroup:           s.AllowChatGroup,
		KeyDenyChatGroup:            s.DenyChatGroup,
		KeyMinReputation:            strconv.Itoa(s.MinReputation),
		KeyMinPosts:                 strconv.Itoa(s.MinPosts),
		KeyChatNotYetAllowedMessage: s.ChatNotYetAllowedMessage,
		KeyChatDeniedMessage:        s.ChatDeniedMessage,
		KeyWarningEnabled:           strconv.FormatBool(s.WarningEnabled),
		KeyWarningMessage:           s.WarningMessage,
		KeyWarningDisplayType:       s.WarningDisplayType,
		KeyKeywordAlertsEnabled:     strconv.FormatBool(s.KeywordAlertsEnabled),
		KeyKeywordList:              encodeJSON(s.KeywordList),
		KeyAlertRecipientUIDs:       encodeJSON(s.AlertRecipientUIDs),
	}
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// coerceBool applies the post-merge boolean coercion: true, "true" and "on"
// mean enabled, anything else means disabled.
func coerceBool(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "true", "on":
		return true
	}
	return false
}

// parseUIDList accepts a JSON array or comma-separated text, trimming each
// entry and dropping non-numeric ones.
func parseUIDList(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var ids []int64
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			return ids
		}
		// JSON arrays may carry strings ("[\"1\",\"2\"]"); fall through to
		// the string form.
		var strs []string
		if err := json.Unmarshal([]byte(raw), &strs); err == nil {
			return filterUIDs(strs)
		}
		return nil
	}
	return filterUIDs(strings.Split(raw, ","))
}

func filterUIDs(parts []string) []int64 {
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// parseKeywordList accepts a JSON array or newline-separated text, trimming
// and lower-casing each keyword and dropping empty entries.
func parseKeywordList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil
		}
	} else {
		parts = strings.Split(raw, "\n")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}
