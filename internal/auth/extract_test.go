package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickSessionCookiesExactNames(t *testing.T) {
	cfg := DefaultConfig()
	cookies := []cookie{
		{Name: "tracking", Value: "x"},
		{Name: "espn_s2", Value: "s2-value"},
		{Name: "SWID", Value: "{ABC-123}"},
	}

	s, ok := pickSessionCookies(cookies, cfg)
	require.True(t, ok)
	assert.Equal(t, "s2-value", s.EspnS2)
	assert.Equal(t, "{ABC-123}", s.SWID)
}

func TestPickSessionCookiesFuzzyFallback(t *testing.T) {
	cfg := DefaultConfig()
	// Renamed cookies: the fuzzy fragments still resolve the pair.
	cookies := []cookie{
		{Name: "session_token", Value: "tok"},
		{Name: "user_id", Value: "{XYZ}"},
	}

	s, ok := pickSessionCookies(cookies, cfg)
	require.True(t, ok)
	assert.Equal(t, "tok", s.EspnS2)
	assert.Equal(t, "{XYZ}", s.SWID)
}

func TestPickSessionCookiesFuzzySkipsClaimedCookie(t *testing.T) {
	cfg := DefaultConfig()
	// "session_id" matches both fragment lists; the same cookie must
	// not be claimed for both slots.
	cookies := []cookie{
		{Name: "session_id", Value: "only"},
	}

	_, ok := pickSessionCookies(cookies, cfg)
	assert.False(t, ok)
}

func TestPickSessionCookiesFuzzyDistinctCookiesSharingValue(t *testing.T) {
	cfg := DefaultConfig()
	// Two different cookies with identical values fill both slots.
	cookies := []cookie{
		{Name: "session_token", Value: "dup"},
		{Name: "user_id", Value: "dup"},
	}

	s, ok := pickSessionCookies(cookies, cfg)
	require.True(t, ok)
	assert.Equal(t, "dup", s.EspnS2)
	assert.Equal(t, "dup", s.SWID)
}

func TestPickSessionCookiesExactBeatsFuzzy(t *testing.T) {
	cfg := DefaultConfig()
	cookies := []cookie{
		{Name: "old_session", Value: "stale"},
		{Name: "espn_s2", Value: "fresh"},
		{Name: "SWID", Value: "{W}"},
	}

	s, ok := pickSessionCookies(cookies, cfg)
	require.True(t, ok)
	assert.Equal(t, "fresh", s.EspnS2)
}

func TestPickSessionCookiesMissingPair(t *testing.T) {
	cfg := DefaultConfig()

	_, ok := pickSessionCookies(nil, cfg)
	assert.False(t, ok)

	_, ok = pickSessionCookies([]cookie{{Name: "espn_s2", Value: "s2"}}, cfg)
	assert.False(t, ok)

	_, ok = pickSessionCookies([]cookie{{Name: "tracking", Value: "x"}}, cfg)
	assert.False(t, ok)
}
