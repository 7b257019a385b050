package director

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/ascdirector/ascdirector/asc"
	"github.com/ascdirector/ascdirector/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProfileGetter serves a scripted sequence of responses, one per call.
type fakeProfileGetter struct {
	responses []func() (types.Profile, error)
	calls     int
}

func (f *fakeProfileGetter) GetProfile(id string) (types.Profile, error) {
	response := f.responses[f.calls]
	f.calls++
	return response()
}

func notFound() (types.Profile, error) {
	return types.Profile{}, asc.ErrNotFound
}

func withContent(content string) func() (types.Profile, error) {
	return func() (types.Profile, error) {
		return types.Profile{ID: "PROF1", Content: []byte(content)}, nil
	}
}

func testPolicy(maxAttempts int, slept *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       10 * time.Second,
		Sleep: func(d time.Duration) {
			*slept = append(*slept, d)
		},
	}
}

func TestFetchContentSucceedsWithinRetries(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("profile-bytes"))
	getter := &fakeProfileGetter{responses: []func() (types.Profile, error){
		notFound,
		notFound,
		withContent(encoded),
	}}

	var slept []time.Duration
	retriever := NewArtifactRetriever(getter, testPolicy(3, &slept), nullLogger())

	raw, err := retriever.FetchContent("PROF1")
	require.NoError(t, err)
	assert.Equal(t, "profile-bytes", string(raw))
	assert.Equal(t, 3, getter.calls)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, slept, "fixed delay between attempts, none before the first")
}

func TestFetchContentExhaustsAttempts(t *testing.T) {
	getter := &fakeProfileGetter{responses: []func() (types.Profile, error){
		notFound, notFound, notFound,
	}}

	var slept []time.Duration
	retriever := NewArtifactRetriever(getter, testPolicy(3, &slept), nullLogger())

	_, err := retriever.FetchContent("PROF1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, getter.calls)
}

func TestFetchContentAbortsOnOtherErrors(t *testing.T) {
	getter := &fakeProfileGetter{responses: []func() (types.Profile, error){
		func() (types.Profile, error) { return types.Profile{}, errors.New("forbidden") },
	}}

	var slept []time.Duration
	retriever := NewArtifactRetriever(getter, testPolicy(3, &slept), nullLogger())

	_, err := retriever.FetchContent("PROF1")
	require.Error(t, err)
	assert.Equal(t, 1, getter.calls, "non-not-found failures are not retried")
	assert.Empty(t, slept)
}

func TestFetchContentTreatsEmptyContentAsNotFound(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("profile-bytes"))
	getter := &fakeProfileGetter{responses: []func() (types.Profile, error){
		withContent(""),
		withContent("  \n"),
		withContent(encoded),
	}}

	var slept []time.Duration
	retriever := NewArtifactRetriever(getter, testPolicy(3, &slept), nullLogger())

	raw, err := retriever.FetchContent("PROF1")
	require.NoError(t, err)
	assert.Equal(t, "profile-bytes", string(raw))
	assert.Equal(t, 3, getter.calls)
}

func TestFetchContentRejectsUndecodableContent(t *testing.T) {
	getter := &fakeProfileGetter{responses: []func() (types.Profile, error){
		withContent("!!! not base64 !!!"),
	}}

	var slept []time.Duration
	retriever := NewArtifactRetriever(getter, testPolicy(3, &slept), nullLogger())

	_, err := retriever.FetchContent("PROF1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding profile content")
	assert.Equal(t, 1, getter.calls)
}
