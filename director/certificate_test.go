package director

import (
	"errors"
	"testing"
	"time"

	"github.com/ascdirector/ascdirector/types"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCertLister struct {
	certs []types.Certificate
	err   error
}

func (f *fakeCertLister) ListCertificates(certType string) ([]types.Certificate, error) {
	return f.certs, f.err
}

func nullLogger() logrus.FieldLogger {
	logger, _ := logtest.NewNullLogger()
	return logger
}

func TestSelectPicksLongestLivedValidCertificate(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	lister := &fakeCertLister{certs: []types.Certificate{
		{ID: "EXPIRED", CertificateType: "IOS_DISTRIBUTION", ExpirationDate: now.Add(-24 * time.Hour)},
		{ID: "SHORT", CertificateType: "IOS_DISTRIBUTION", ExpirationDate: now.Add(90 * 24 * time.Hour)},
		{ID: "LONG", CertificateType: "IOS_DISTRIBUTION", ExpirationDate: now.Add(200 * 24 * time.Hour)},
		{ID: "WRONGTYPE", CertificateType: "IOS_DEVELOPMENT", ExpirationDate: now.Add(300 * 24 * time.Hour)},
	}}

	selector := NewCertificateSelector(lister, nullLogger())
	selector.now = func() time.Time { return now }

	cert, err := selector.Select("IOS_DISTRIBUTION")
	require.NoError(t, err)
	assert.Equal(t, "LONG", cert.ID)
}

func TestSelectFailsWhenNothingValid(t *testing.T) {
	now := time.Now()
	lister := &fakeCertLister{certs: []types.Certificate{
		{ID: "EXPIRED", CertificateType: "IOS_DISTRIBUTION", ExpirationDate: now.Add(-time.Hour)},
		{ID: "JUSTEXPIRED", CertificateType: "IOS_DISTRIBUTION", ExpirationDate: now},
	}}

	selector := NewCertificateSelector(lister, nullLogger())
	selector.now = func() time.Time { return now }

	_, err := selector.Select("IOS_DISTRIBUTION")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoValidCertificate))
}

func TestSelectWarnsOnShortRemainingValidity(t *testing.T) {
	now := time.Now()
	lister := &fakeCertLister{certs: []types.Certificate{
		{ID: "EXPIRING", Name: "soon", CertificateType: "IOS_DISTRIBUTION", ExpirationDate: now.Add(10 * 24 * time.Hour)},
	}}

	logger, hook := logtest.NewNullLogger()
	selector := NewCertificateSelector(lister, logger)
	selector.now = func() time.Time { return now }

	cert, err := selector.Select("IOS_DISTRIBUTION")
	require.NoError(t, err, "short validity is a warning, not a failure")
	assert.Equal(t, "EXPIRING", cert.ID)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected a renewal warning")
}

func TestSelectPropagatesListError(t *testing.T) {
	lister := &fakeCertLister{err: errors.New("boom")}
	selector := NewCertificateSelector(lister, nullLogger())

	_, err := selector.Select("IOS_DISTRIBUTION")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing certificates")
}
