package cli

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

// stubPromptOrgs swaps the interactive org prompt for a recorder that
// fills in fixed aliases.
func stubPromptOrgs(t *testing.T, source, target string) *bool {
	t.Helper()
	orig := promptOrgs
	t.Cleanup(func() { promptOrgs = orig })

	called := false
	promptOrgs = func(opts *seedOptions) error {
		called = true
		if opts.source == "" {
			opts.source = source
		}
		if opts.target == "" {
			opts.target = target
		}
		return nil
	}
	return &called
}

func newTestSeedOptions() *seedOptions {
	var abort atomic.Bool
	return &seedOptions{count: "10", plain: true, abort: &abort}
}

func TestRunSeedPromptsForMissingOrgAliases(t *testing.T) {
	t.Setenv("SFSEED_TOKEN_CACHE", "")

	tests := []struct {
		name    string
		prepare func(*seedOptions)
	}{
		{"no flags at all", func(opts *seedOptions) {}},
		{"object flag without orgs", func(opts *seedOptions) { opts.object = "Account" }},
		{"plan file without orgs", func(opts *seedOptions) { opts.planPath = "plan.yaml" }},
		{"source without target", func(opts *seedOptions) {
			opts.object = "Account"
			opts.source = "promptedsrc"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := stubPromptOrgs(t, "promptedsrc", "promptedtgt")
			opts := newTestSeedOptions()
			tt.prepare(opts)

			// No credentials are configured for the prompted aliases, so
			// the run stops at org resolution. The prompt must have run
			// first.
			err := runSeed(context.Background(), opts)
			require.Error(t, err)
			assert.True(t, *called, "expected the org prompt to run")
			assert.True(t, pkgErrors.IsAuth(err))
			assert.Contains(t, err.Error(), `"promptedsrc"`)
		})
	}
}

func TestRunSeedSkipsOrgPromptWhenAliasesGiven(t *testing.T) {
	t.Setenv("SFSEED_TOKEN_CACHE", "")
	called := stubPromptOrgs(t, "", "")

	opts := newTestSeedOptions()
	opts.source = "flagsrc"
	opts.target = "flagtgt"
	opts.object = "Account"

	err := runSeed(context.Background(), opts)
	require.Error(t, err)
	assert.False(t, *called, "org prompt must not run when both aliases are given")
	assert.Contains(t, err.Error(), `"flagsrc"`)
}

func TestRunSeedRejectsIdenticalOrgs(t *testing.T) {
	stubPromptOrgs(t, "", "")
	opts := newTestSeedOptions()
	opts.source = "prod"
	opts.target = "prod"
	opts.object = "Account"

	err := runSeed(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, pkgErrors.IsValidation(err))
}
