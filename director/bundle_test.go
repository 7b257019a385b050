package director

import (
	"errors"
	"testing"

	"github.com/ascdirector/ascdirector/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBundleLister struct {
	bundles []types.BundleID
	err     error
}

func (f *fakeBundleLister) ListBundleIDs(identifier string) ([]types.BundleID, error) {
	return f.bundles, f.err
}

func TestResolveReturnsFirstMatch(t *testing.T) {
	resolver := NewBundleResolver(&fakeBundleLister{bundles: []types.BundleID{
		{ID: "BUNDLE1", Identifier: "com.example.app"},
		{ID: "BUNDLE2", Identifier: "com.example.app"},
	}}, nullLogger())

	bundle, err := resolver.Resolve("com.example.app")
	require.NoError(t, err)
	assert.Equal(t, "BUNDLE1", bundle.ID)
}

func TestResolveNotFound(t *testing.T) {
	resolver := NewBundleResolver(&fakeBundleLister{}, nullLogger())

	_, err := resolver.Resolve("com.example.missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBundleIDNotFound))
	assert.Contains(t, err.Error(), "com.example.missing")
}

func TestResolvePropagatesListError(t *testing.T) {
	resolver := NewBundleResolver(&fakeBundleLister{err: errors.New("boom")}, nullLogger())

	_, err := resolver.Resolve("com.example.app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing bundle IDs")
}
