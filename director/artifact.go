package director

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/ascdirector/ascdirector/asc"
	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds the artifact fetch loop. Sleep is injectable so tests
// run without real delay.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(time.Duration)
}

// DefaultRetryPolicy covers the usual eventual-consistency window after
// profile creation.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Delay:       10 * time.Second,
		Sleep:       time.Sleep,
	}
}

type profileGetter interface {
	GetProfile(id string) (types.Profile, error)
}

// ArtifactRetriever fetches the binary content of a freshly created
// profile. The content may not be materialized server-side immediately, so
// a not-found response is retried under the policy; every other failure
// aborts at once.
type ArtifactRetriever struct {
	api    profileGetter
	log    logrus.FieldLogger
	policy RetryPolicy
}

func NewArtifactRetriever(api profileGetter, policy RetryPolicy, logger logrus.FieldLogger) *ArtifactRetriever {
	if policy.Sleep == nil {
		policy.Sleep = time.Sleep
	}
	return &ArtifactRetriever{api: api, log: logger, policy: policy}
}

// FetchContent returns the decoded profile artifact. Zero-length content is
// treated the same as not-found: the profile exists but its artifact has
// not materialized yet.
func (a *ArtifactRetriever) FetchContent(profileID string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			a.policy.Sleep(a.policy.Delay)
		}

		raw, err := a.fetchOnce(profileID)
		if err == nil {
			a.log.WithFields(logrus.Fields{
				"profile_id": profileID,
				"attempt":    attempt,
				"bytes":      len(raw),
			}).Info("Fetched profile artifact")
			return raw, nil
		}
		if !asc.IsNotFound(err) {
			return nil, errors.Wrap(err, "fetching profile artifact")
		}

		lastErr = err
		a.log.WithFields(logrus.Fields{
			"profile_id": profileID,
			"attempt":    attempt,
		}).Info("Profile artifact not available yet")
	}
	return nil, errors.Wrapf(lastErr, "profile artifact still unavailable after %d attempts", a.policy.MaxAttempts)
}

func (a *ArtifactRetriever) fetchOnce(profileID string) ([]byte, error) {
	profile, err := a.api.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	encoded := strings.TrimSpace(string(profile.Content))
	if encoded == "" {
		return nil, errors.Wrapf(asc.ErrNotFound, "profile %s has no content yet", profileID)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "decoding profile content")
	}
	if len(raw) == 0 {
		return nil, errors.Wrapf(asc.ErrNotFound, "profile %s content is empty", profileID)
	}
	return raw, nil
}
