// Package director holds the decision logic of the profile upsert
// workflow: certificate selection, bundle resolution, duplicate discovery,
// the delete-then-create replacement protocol, and artifact retrieval.
package director

import (
	"sort"
	"time"

	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNoValidCertificate - no certificate of the requested type is currently
// valid. This terminates the pipeline before any profile is touched.
var ErrNoValidCertificate = errors.New("no valid certificate found")

// Certificates expiring within this window still get selected, but with a
// warning so renewal can be scheduled before the profile breaks.
const renewalWarningWindow = 30 * 24 * time.Hour

type certificateLister interface {
	ListCertificates(certType string) ([]types.Certificate, error)
}

// CertificateSelector picks the signing certificate a new profile should be
// bound to.
type CertificateSelector struct {
	client certificateLister
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewCertificateSelector(client certificateLister, logger logrus.FieldLogger) *CertificateSelector {
	return &CertificateSelector{
		client: client,
		log:    logger,
		now:    time.Now,
	}
}

// Select returns the longest-lived currently-valid certificate of the given
// type. Picking the latest expiry rather than the first listing keeps the
// recreated profile from inheriting a certificate about to churn.
func (s *CertificateSelector) Select(certType string) (types.Certificate, error) {
	certs, err := s.client.ListCertificates(certType)
	if err != nil {
		return types.Certificate{}, errors.Wrap(err, "listing certificates")
	}

	now := s.now()
	valid := make([]types.Certificate, 0, len(certs))
	for _, cert := range certs {
		if cert.CertificateType != certType {
			continue
		}
		if !cert.ExpirationDate.After(now) {
			s.log.WithFields(logrus.Fields{
				"certificate_id": cert.ID,
				"name":           cert.Name,
				"expired":        cert.ExpirationDate,
			}).Debug("Skipping expired certificate")
			continue
		}
		valid = append(valid, cert)
	}

	if len(valid) == 0 {
		return types.Certificate{}, errors.Wrapf(ErrNoValidCertificate, "type %s", certType)
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].ExpirationDate.After(valid[j].ExpirationDate)
	})
	selected := valid[0]

	remaining := selected.ExpirationDate.Sub(now)
	if remaining < renewalWarningWindow {
		s.log.WithFields(logrus.Fields{
			"certificate_id": selected.ID,
			"name":           selected.Name,
			"expires":        selected.ExpirationDate,
		}).Warnf("Selected certificate expires in %d days; schedule a renewal", int(remaining.Hours()/24))
	}

	s.log.WithFields(logrus.Fields{
		"certificate_id": selected.ID,
		"name":           selected.Name,
		"expires":        selected.ExpirationDate,
	}).Info("Selected signing certificate")
	return selected, nil
}
