package director

import (
	"errors"
	"testing"

	"github.com/ascdirector/ascdirector/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileWriter struct {
	deleted       []string
	deleteFails   map[string]error
	created       []ReplaceRequest
	createdIDs    []string
	createErr     error
	lastDeviceIDs []string
}

func (f *fakeProfileWriter) DeleteProfile(id string) error {
	if err := f.deleteFails[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProfileWriter) CreateProfile(name, profileType, bundleID, certificateID string, deviceIDs []string) (types.Profile, error) {
	if f.createErr != nil {
		return types.Profile{}, f.createErr
	}
	f.created = append(f.created, ReplaceRequest{Name: name, ProfileType: profileType, BundleID: bundleID, CertificateID: certificateID})
	f.lastDeviceIDs = deviceIDs
	id := "NEWPROF"
	f.createdIDs = append(f.createdIDs, id)
	return types.Profile{ID: id, Name: name, ProfileType: profileType, State: types.ProfileStateActive}, nil
}

type fakeDeviceLister struct {
	devices []types.Device
	err     error
	calls   int
}

func (f *fakeDeviceLister) ListDevices() ([]types.Device, error) {
	f.calls++
	return f.devices, f.err
}

func newTestReplacer(query *fakeProfileQuery, writer *fakeProfileWriter, devices *fakeDeviceLister) *ProfileReplacer {
	finder := NewProfileFinder(query, nullLogger())
	return NewProfileReplacer(finder, writer, devices, nullLogger())
}

func TestReplaceDeletesAllDuplicatesThenCreates(t *testing.T) {
	query := &fakeProfileQuery{byName: []types.Profile{
		{ID: "OLD1", Name: "App Store Dist", State: types.ProfileStateActive},
		{ID: "OLD2", Name: "App Store Dist", State: types.ProfileStateInvalid},
	}}
	writer := &fakeProfileWriter{}
	devices := &fakeDeviceLister{}

	replacer := newTestReplacer(query, writer, devices)
	profile, err := replacer.Replace(ReplaceRequest{
		Name:          "App Store Dist",
		ProfileType:   types.ProfileTypeIOSAppStore,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"OLD1", "OLD2"}, writer.deleted, "every duplicate is deleted, whatever its state")
	require.Len(t, writer.created, 1)
	assert.Equal(t, "NEWPROF", profile.ID)
	assert.Equal(t, "CERT1", writer.created[0].CertificateID)
	assert.Equal(t, 0, devices.calls, "store profiles never resolve devices")
	assert.Nil(t, writer.lastDeviceIDs)
}

func TestReplaceSkipsDeletionWhenNothingExists(t *testing.T) {
	writer := &fakeProfileWriter{}
	replacer := newTestReplacer(&fakeProfileQuery{}, writer, &fakeDeviceLister{})

	profile, err := replacer.Replace(ReplaceRequest{
		Name:          "Fresh Profile",
		ProfileType:   types.ProfileTypeIOSAppStore,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.NoError(t, err)
	assert.Empty(t, writer.deleted)
	assert.Equal(t, "NEWPROF", profile.ID)
}

func TestReplaceAbortsOnDeletionFailure(t *testing.T) {
	query := &fakeProfileQuery{byName: []types.Profile{
		{ID: "OLD1", Name: "App Store Dist"},
		{ID: "OLD2", Name: "App Store Dist"},
	}}
	writer := &fakeProfileWriter{deleteFails: map[string]error{"OLD2": errors.New("boom")}}
	devices := &fakeDeviceLister{}

	replacer := newTestReplacer(query, writer, devices)
	_, err := replacer.Replace(ReplaceRequest{
		Name:          "App Store Dist",
		ProfileType:   types.ProfileTypeIOSAppDevelopment,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OLD2")
	assert.Empty(t, writer.created, "creation must not run after a failed deletion")
	assert.Equal(t, 0, devices.calls)
}

func TestReplaceResolvesFreshDeviceListForDeviceScopedTypes(t *testing.T) {
	devices := &fakeDeviceLister{devices: []types.Device{{ID: "DEV1"}, {ID: "DEV2"}, {ID: "DEV3"}}}
	writer := &fakeProfileWriter{}

	replacer := newTestReplacer(&fakeProfileQuery{}, writer, devices)
	_, err := replacer.Replace(ReplaceRequest{
		Name:          "Dev Profile",
		ProfileType:   types.ProfileTypeIOSAppDevelopment,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, devices.calls)
	assert.Equal(t, []string{"DEV1", "DEV2", "DEV3"}, writer.lastDeviceIDs)
}

func TestReplaceEmptyDeviceListIsNotFatal(t *testing.T) {
	writer := &fakeProfileWriter{}
	replacer := newTestReplacer(&fakeProfileQuery{}, writer, &fakeDeviceLister{})

	_, err := replacer.Replace(ReplaceRequest{
		Name:          "Ad Hoc Profile",
		ProfileType:   types.ProfileTypeIOSAppAdHoc,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.NoError(t, err)
	require.Len(t, writer.created, 1)
	assert.Empty(t, writer.lastDeviceIDs)
}

func TestReplaceCreateFailureCarriesRemediationHint(t *testing.T) {
	writer := &fakeProfileWriter{createErr: errors.New("ENTITY_ERROR: name in use")}
	replacer := newTestReplacer(&fakeProfileQuery{}, writer, &fakeDeviceLister{})

	_, err := replacer.Replace(ReplaceRequest{
		Name:          "App Store Dist",
		ProfileType:   types.ProfileTypeIOSAppStore,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may still exist server-side")
	assert.Contains(t, err.Error(), "name in use")
}

func TestReplaceDeviceListFailureAborts(t *testing.T) {
	devices := &fakeDeviceLister{err: errors.New("boom")}
	writer := &fakeProfileWriter{}
	replacer := newTestReplacer(&fakeProfileQuery{}, writer, devices)

	_, err := replacer.Replace(ReplaceRequest{
		Name:          "Dev Profile",
		ProfileType:   types.ProfileTypeMacAppDevelopment,
		BundleID:      "BUNDLE1",
		CertificateID: "CERT1",
	})
	require.Error(t, err)
	assert.Empty(t, writer.created)
}
