package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipeed/chatwarden/pkg/store"
)

func newResolver(t *testing.T) (*Resolver, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	r := NewResolver(st)
	r.Environment = map[string]string{}
	return r, st
}

func TestResolveDefaultsWithEmptyStore(t *testing.T) {
	r, _ := newResolver(t)
	got := r.Resolve()
	assert.Equal(t, Defaults(), got)
}

func TestStoreLayerOverridesDefaults(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{
		KeyMinReputation:  "25",
		KeyAllowChatGroup: "veterans",
	}))

	got := r.Refresh()
	assert.Equal(t, 25, got.MinReputation)
	assert.Equal(t, "veterans", got.AllowChatGroup)
	// Untouched fields keep defaults.
	assert.Equal(t, 5, got.MinPosts)
}

func TestStoreLayerSkipsEmptyNonBooleanValues(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{
		KeyAllowChatGroup: "",
		KeyMinReputation:  "",
	}))

	got := r.Refresh()
	assert.Equal(t, "allowChat", got.AllowChatGroup)
	assert.Equal(t, 10, got.MinReputation)
}

func TestEnvLayerWinsOverStore(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{KeyMinPosts: "50"}))
	r.Environment["CHAT_PERMS_MIN_POSTS"] = "3"

	got := r.Refresh()
	assert.Equal(t, 3, got.MinPosts)
}

func TestEnvLayerAppliesEvenWhenEmpty(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{KeyWarningMessage: "from store"}))
	r.Environment["CHAT_PERMS_WARNING_MESSAGE"] = ""

	got := r.Refresh()
	assert.Equal(t, "", got.WarningMessage)
}

func TestBooleanCoercion(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"on", true},
		{"false", false},
		{"off", false},
		{"1", false},
		{"yes", false},
		{"", false},
	}
	for _, tc := range cases {
		r, st := newResolver(t)
		require.NoError(t, st.Set(Namespace, map[string]string{KeyWarningEnabled: tc.raw}))
		got := r.Refresh()
		assert.Equal(t, tc.want, got.WarningEnabled, "raw %q", tc.raw)
	}
}

func TestInvalidNumericFallsBackToDefault(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{
		KeyMinReputation: "lots",
		KeyMinPosts:      "-2",
	}))

	got := r.Refresh()
	assert.Equal(t, 10, got.MinReputation)
	assert.Equal(t, 5, got.MinPosts)
}

func TestDisplayTypeEnumValidation(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{KeyWarningDisplayType: "popup"}))
	assert.Equal(t, "popup", r.Refresh().WarningDisplayType)

	require.NoError(t, st.Set(Namespace, map[string]string{KeyWarningDisplayType: "marquee"}))
	assert.Equal(t, "banner", r.Refresh().WarningDisplayType)
}

func TestUIDListForms(t *testing.T) {
	cases := []struct {
		raw  string
		want []int64
	}{
		{"[1,2,3]", []int64{1, 2, 3}},
		{`["4","5"]`, []int64{4, 5}},
		{"1, 2 ,junk, 3", []int64{1, 2, 3}},
		{"nope", []int64{}}, // all entries non-numeric, all dropped
		{"[not json", nil},
	}
	for _, tc := range cases {
		r, st := newResolver(t)
		require.NoError(t, st.Set(Namespace, map[string]string{KeyAdminUIDs: tc.raw}))
		got := r.Refresh()
		if tc.want == nil {
			// Invalid input keeps the default admin set.
			assert.Equal(t, Defaults().AdminUIDs, got.AdminUIDs, "raw %q", tc.raw)
		} else {
			assert.Equal(t, tc.want, got.AdminUIDs, "raw %q", tc.raw)
		}
	}
}

func TestKeywordListForms(t *testing.T) {
	r, st := newResolver(t)
	require.NoError(t, st.Set(Namespace, map[string]string{
		KeyKeywordList: "  Banned \n\n secret\nOTHER ",
	}))
	assert.Equal(t, []string{"banned", "secret", "other"}, r.Refresh().KeywordList)

	require.NoError(t, st.Set(Namespace, map[string]string{
		KeyKeywordList: `["Foo"," bar ",""]`,
	}))
	assert.Equal(t, []string{"foo", "bar"}, r.Refresh().KeywordList)
}

func TestStoreFailureFallsBackToDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	st.FailReads = true
	r := NewResolver(st)
	r.Environment = map[string]string{"CHAT_PERMS_MIN_REPUTATION": "42"}

	got := r.Refresh()
	// Store layer is treated as empty; env still applies.
	assert.Equal(t, 42, got.MinReputation)
	assert.Equal(t, Defaults().MinPosts, got.MinPosts)
}

func TestSettingsRoundTrip(t *testing.T) {
	original := Settings{
		AdminUIDs:                []int64{1, 9},
		AllowChatGroup:           "trusted",
		DenyChatGroup:            "muted",
		MinReputation:            7,
		MinPosts:                 0,
		ChatNotYetAllowedMessage: "wait a bit",
		ChatDeniedMessage:        "no chat for you",
		WarningEnabled:           true,
		WarningMessage:           "watched",
		WarningDisplayType:       "inline",
		KeywordAlertsEnabled:     true,
		KeywordList:              []string{"banned", "secret"},
		AlertRecipientUIDs:       []int64{1},
	}

	st := store.NewMemoryStore()
	require.NoError(t, st.Set(Namespace, EncodeForStore(original)))
	r := NewResolver(st)
	r.Environment = map[string]string{}

	assert.Equal(t, original, r.Refresh())
}

func TestSnapshotConsistency(t *testing.T) {
	r, st := newResolver(t)
	first := r.Resolve()
	require.NoError(t, st.Set(Namespace, map[string]string{KeyMinPosts: "99"}))

	// Resolve without Refresh returns the cached snapshot.
	assert.Equal(t, first, r.Resolve())
	assert.Equal(t, 99, r.Refresh().MinPosts)
	assert.Equal(t, 99, r.Resolve().MinPosts)
}
