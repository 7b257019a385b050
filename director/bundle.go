package director

import (
	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrBundleIDNotFound - the bundle identifier is not registered in the
// account. Pipeline-terminating.
var ErrBundleIDNotFound = errors.New("bundle identifier not found")

type bundleIDLister interface {
	ListBundleIDs(identifier string) ([]types.BundleID, error)
}

// BundleResolver maps a reverse-DNS bundle identifier to its resource id.
type BundleResolver struct {
	client bundleIDLister
	log    logrus.FieldLogger
}

func NewBundleResolver(client bundleIDLister, logger logrus.FieldLogger) *BundleResolver {
	return &BundleResolver{client: client, log: logger}
}

// Resolve returns the resource id for the identifier. Identifiers are
// expected unique; when the service returns several, the first wins.
func (r *BundleResolver) Resolve(identifier string) (types.BundleID, error) {
	bundles, err := r.client.ListBundleIDs(identifier)
	if err != nil {
		return types.BundleID{}, errors.Wrap(err, "listing bundle IDs")
	}
	if len(bundles) == 0 {
		return types.BundleID{}, errors.Wrapf(ErrBundleIDNotFound, "%s", identifier)
	}
	if len(bundles) > 1 {
		r.log.WithField("identifier", identifier).
			Warnf("Found %d bundle ID resources for one identifier, using the first", len(bundles))
	}

	r.log.WithFields(logrus.Fields{
		"identifier": identifier,
		"bundle_id":  bundles[0].ID,
	}).Info("Resolved bundle identifier")
	return bundles[0], nil
}
