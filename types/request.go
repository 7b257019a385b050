package types

import (
	"fmt"
	"strings"
)

// UpsertRequest carries everything a single upsert run needs. All fields
// are validated before any remote call is made.
type UpsertRequest struct {
	ProfileName      string
	CertificateType  string
	BundleIdentifier string
	ProfileType      string
	IssuerID         string
	KeyID            string
	PrivateKeyPEM    []byte
	OutputPath       string
}

// Validate checks that every required field is set, defaulting the profile
// type to the iOS development class when absent.
func (r *UpsertRequest) Validate() error {
	if r.ProfileType == "" {
		r.ProfileType = ProfileTypeIOSAppDevelopment
	}

	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"PROFILE_NAME", r.ProfileName},
		{"CERT_TYPE", r.CertificateType},
		{"BUNDLE_ID", r.BundleIdentifier},
		{"ISSUER_ID", r.IssuerID},
		{"KEY_ID", r.KeyID},
		{"PRIVATE_KEY_BASE64", string(r.PrivateKeyPEM)},
	}
	for _, req := range required {
		if req.value == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required inputs: %s", strings.Join(missing, ", "))
	}
	return nil
}

// UpsertResult is the outcome of one upsert run.
type UpsertResult struct {
	CertificateID        string
	ProfileID            string
	ProfilePath          string
	ProfileContentBase64 string
	Success              bool
}
