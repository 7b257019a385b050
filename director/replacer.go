package director

import (
	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// replaceState tracks progress through the delete-then-create protocol.
type replaceState int

const (
	stateDiscovering replaceState = iota
	stateDeleting
	stateResolvingDevices
	stateCreating
	stateDone
	stateFailed
)

func (s replaceState) String() string {
	switch s {
	case stateDiscovering:
		return "discovering"
	case stateDeleting:
		return "deleting"
	case stateResolvingDevices:
		return "resolving-devices"
	case stateCreating:
		return "creating"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type profileWriteAPI interface {
	CreateProfile(name, profileType, bundleID, certificateID string, deviceIDs []string) (types.Profile, error)
	DeleteProfile(id string) error
}

type deviceLister interface {
	ListDevices() ([]types.Device, error)
}

// ProfileReplacer removes every profile sharing the target name and creates
// the replacement. Deletions run sequentially and any failure aborts the
// whole operation: reporting failure beats proceeding against an ambiguous
// remote state.
type ProfileReplacer struct {
	finder  *ProfileFinder
	api     profileWriteAPI
	devices deviceLister
	log     logrus.FieldLogger
}

func NewProfileReplacer(finder *ProfileFinder, api profileWriteAPI, devices deviceLister, logger logrus.FieldLogger) *ProfileReplacer {
	return &ProfileReplacer{
		finder:  finder,
		api:     api,
		devices: devices,
		log:     logger,
	}
}

// ReplaceRequest names the profile to recreate and its bindings.
type ReplaceRequest struct {
	Name          string
	ProfileType   string
	BundleID      string
	CertificateID string
}

// Replace runs the replacement state machine to completion and returns the
// newly created profile.
func (r *ProfileReplacer) Replace(req ReplaceRequest) (types.Profile, error) {
	var (
		state      = stateDiscovering
		discovered []types.Profile
		deviceIDs  []string
		created    types.Profile
	)

	for state != stateDone && state != stateFailed {
		logger := r.log.WithFields(logrus.Fields{
			"profile_name": req.Name,
			"state":        state.String(),
		})

		switch state {
		case stateDiscovering:
			found, err := r.finder.FindAllByName(req.Name)
			if err != nil {
				return types.Profile{}, r.fail(&state, err, "discovering duplicate profiles")
			}
			discovered = found
			if len(discovered) > 0 {
				state = stateDeleting
			} else {
				state = stateResolvingDevices
			}

		case stateDeleting:
			for _, profile := range discovered {
				logger.WithFields(logrus.Fields{
					"profile_id":    profile.ID,
					"profile_state": profile.State,
				}).Info("Deleting existing profile")
				if err := r.api.DeleteProfile(profile.ID); err != nil {
					return types.Profile{}, r.fail(&state, err, "deleting profile "+profile.ID)
				}
			}
			state = stateResolvingDevices

		case stateResolvingDevices:
			if types.IsDeviceScopedProfileType(req.ProfileType) {
				// Always re-fetched fresh, never reused from a deleted
				// predecessor, so newly registered devices are included.
				devices, err := r.devices.ListDevices()
				if err != nil {
					return types.Profile{}, r.fail(&state, err, "listing devices")
				}
				deviceIDs = make([]string, 0, len(devices))
				for _, device := range devices {
					deviceIDs = append(deviceIDs, device.ID)
				}
				if len(deviceIDs) == 0 {
					logger.Warn("No enabled devices registered; creating a device-scoped profile with an empty device list")
				} else {
					logger.Infof("Binding %d devices to the new profile", len(deviceIDs))
				}
			}
			state = stateCreating

		case stateCreating:
			profile, err := r.api.CreateProfile(req.Name, req.ProfileType, req.BundleID, req.CertificateID, deviceIDs)
			if err != nil {
				// Not auto-retried: a blind retry could race the settling
				// deletion and leave two live profiles.
				return types.Profile{}, r.fail(&state,
					errors.Wrap(err, "a profile with this name may still exist server-side; rename the profile, wait for the deletion to settle, or remove it manually in the developer portal"),
					"creating profile")
			}
			created = profile
			logger.WithField("profile_id", created.ID).Info("Created replacement profile")
			state = stateDone
		}
	}

	return created, nil
}

func (r *ProfileReplacer) fail(state *replaceState, err error, msg string) error {
	r.log.WithField("state", state.String()).WithError(err).Error("Profile replacement failed")
	*state = stateFailed
	return errors.Wrap(err, msg)
}
