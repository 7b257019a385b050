package director

import (
	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Page size used by the discovery queries.
	findPageSize = 100

	// Upper bound on the tier-3 full scan so a huge account can never turn
	// discovery into an unbounded crawl.
	maxScanPages = 10
)

type profileQueryAPI interface {
	ListProfilesByName(name string, limit int) ([]types.Profile, error)
	ListProfilesByNameAndState(name, state string, limit int) ([]types.Profile, error)
	ListProfilesPage(next string, limit int) ([]types.Profile, string, error)
}

// ProfileFinder discovers every profile sharing a target name. The service
// suppresses invalid and expired profiles from default listings
// inconsistently, so discovery runs an ordered list of strategies and stops
// at the first one that yields results.
type ProfileFinder struct {
	api profileQueryAPI
	log logrus.FieldLogger
}

func NewProfileFinder(api profileQueryAPI, logger logrus.FieldLogger) *ProfileFinder {
	return &ProfileFinder{api: api, log: logger}
}

type discoveryTier struct {
	name string
	run  func(name string) ([]types.Profile, error)
}

func (f *ProfileFinder) tiers() []discoveryTier {
	return []discoveryTier{
		{
			name: "name filter",
			run: func(name string) ([]types.Profile, error) {
				return f.api.ListProfilesByName(name, findPageSize)
			},
		},
		{
			name: "invalid-state filter",
			run: func(name string) ([]types.Profile, error) {
				return f.api.ListProfilesByNameAndState(name, types.ProfileStateInvalid, findPageSize)
			},
		},
		{
			name: "full scan",
			run:  f.scanAll,
		},
	}
}

// FindAllByName returns every profile whose name equals name exactly, or an
// empty slice when none exist. The result is never partial: any tier
// failure fails the whole discovery.
func (f *ProfileFinder) FindAllByName(name string) ([]types.Profile, error) {
	for _, tier := range f.tiers() {
		profiles, err := tier.run(name)
		if err != nil {
			return nil, errors.Wrapf(err, "profile discovery via %s", tier.name)
		}

		// Filters can be fuzzy server-side; trust only exact matches.
		matched := profiles[:0]
		for _, profile := range profiles {
			if profile.Name == name {
				matched = append(matched, profile)
			}
		}

		if len(matched) > 0 {
			f.log.WithFields(logrus.Fields{
				"profile_name": name,
				"tier":         tier.name,
				"count":        len(matched),
			}).Info("Discovered existing profiles")
			return matched, nil
		}
		f.log.WithFields(logrus.Fields{
			"profile_name": name,
			"tier":         tier.name,
		}).Debug("Discovery tier found nothing")
	}

	f.log.WithField("profile_name", name).Info("No existing profile with this name")
	return []types.Profile{}, nil
}

// scanAll walks the unfiltered profile collection comparing names
// client-side. Last-resort tier: it is the only way to catch profiles the
// server hides from both the name filter and the state filter.
func (f *ProfileFinder) scanAll(name string) ([]types.Profile, error) {
	var matched []types.Profile
	next := ""
	for page := 0; page < maxScanPages; page++ {
		profiles, nextLink, err := f.api.ListProfilesPage(next, findPageSize)
		if err != nil {
			return nil, err
		}
		for _, profile := range profiles {
			if profile.Name == name {
				matched = append(matched, profile)
			}
		}
		if nextLink == "" {
			return matched, nil
		}
		next = nextLink
	}

	f.log.WithField("profile_name", name).
		Warnf("Profile scan stopped after %d pages; later duplicates may remain", maxScanPages)
	return matched, nil
}
