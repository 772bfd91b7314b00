package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"espnauth/internal/retry"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"form not found", fmt.Errorf("email field: %w", errFormNotFound), KindFormNotFound},
		{"invalid credentials", errInvalidCredentials, KindInvalidCredentials},
		{"missing cookies", fmt.Errorf("%w (searched 12 cookies)", errMissingSessionCookies), KindMissingSessionCookies},
		{"debug timeout", fmt.Errorf("%w after 5m0s", errDebugTimeout), KindDebugTimeout},
		{"explicit timeout", fmt.Errorf("open login page: %w: deadline", errTimeout), KindTimeout},
		{"poll deadline", retry.ErrDeadline, KindTimeout},
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"context canceled", context.Canceled, KindTimeout},
		{"browser init", fmt.Errorf("%w: exec not found", errBrowserInit), KindBrowserInit},
		{"unrecognized", errors.New("something else entirely"), KindBrowserInit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.err))
		})
	}
}

func TestClassifyPrefersSpecificKindOverTimeout(t *testing.T) {
	// A locate failure wraps retry.ErrDeadline semantics inside the
	// retry policy, but the form-not-found cause must win.
	err := fmt.Errorf("after 3 attempts: %w", fmt.Errorf("email field: %w", errFormNotFound))
	assert.Equal(t, KindFormNotFound, classify(err))
}
