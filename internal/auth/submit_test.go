package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitOutcomeKeepsEngineErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubmitPollInterval = time.Millisecond
	cfg.SubmitTimeout = 50 * time.Millisecond
	s := &submitter{cfg: cfg, log: zerolog.Nop()}

	// A context with no browser attached makes the first page read
	// fail; that failure is an engine error, not a timeout.
	err := s.awaitOutcome(context.Background(), "http://before")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errTimeout))
	assert.Equal(t, KindBrowserInit, classify(err))
}

func TestRejectionTextMatchesRenderedText(t *testing.T) {
	phrases := DefaultConfig().ErrorPhrases

	html := `<html><body><div class="error">Incorrect <b>password</b>. Please try again.</div></body></html>`
	assert.True(t, rejectionText(html, phrases))
}

func TestRejectionTextPhraseSplitAcrossMarkup(t *testing.T) {
	phrases := []string{"try again"}

	// The phrase only exists once the markup is flattened to text.
	html := `<html><body><p>Please try <strong>again</strong> later.</p></body></html>`
	assert.True(t, rejectionText(html, phrases))
}

func TestRejectionTextCleanPage(t *testing.T) {
	phrases := DefaultConfig().ErrorPhrases

	html := `<html><body><h1>Welcome back</h1><a href="/league/1">My League</a></body></html>`
	assert.False(t, rejectionText(html, phrases))
}

func TestRejectionTextEmptyInput(t *testing.T) {
	assert.False(t, rejectionText("", DefaultConfig().ErrorPhrases))
}
