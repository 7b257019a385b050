package types

import "time"

// Certificate is a signing certificate resource from App Store Connect.
type Certificate struct {
	ID              string
	Name            string
	DisplayName     string
	CertificateType string
	Platform        string
	ExpirationDate  time.Time
}

// BundleID maps a reverse-DNS bundle identifier to its resource id.
type BundleID struct {
	ID         string
	Identifier string
}

// Device is a registered device. Only the resource id matters for
// profile association.
type Device struct {
	ID   string
	Name string
	UDID string
}

// Profile is a provisioning profile resource. Content is only populated
// on a detail fetch, never on listings.
type Profile struct {
	ID          string
	Name        string
	ProfileType string
	Platform    string
	State       string
	Content     []byte
}

// Profile states as reported by App Store Connect.
const (
	ProfileStateActive  = "ACTIVE"
	ProfileStateInvalid = "INVALID"
	ProfileStateExpired = "EXPIRED"
)

// Profile types.
const (
	ProfileTypeIOSAppDevelopment  = "IOS_APP_DEVELOPMENT"
	ProfileTypeIOSAppStore        = "IOS_APP_STORE"
	ProfileTypeIOSAppAdHoc        = "IOS_APP_ADHOC"
	ProfileTypeIOSAppInHouse      = "IOS_APP_INHOUSE"
	ProfileTypeMacAppDevelopment  = "MAC_APP_DEVELOPMENT"
	ProfileTypeMacAppStore        = "MAC_APP_STORE"
	ProfileTypeMacAppDirect       = "MAC_APP_DIRECT"
	ProfileTypeTvOSAppDevelopment = "TVOS_APP_DEVELOPMENT"
	ProfileTypeTvOSAppStore       = "TVOS_APP_STORE"
	ProfileTypeTvOSAppAdHoc       = "TVOS_APP_ADHOC"
	ProfileTypeTvOSAppInHouse     = "TVOS_APP_INHOUSE"
)

// Certificate types.
const (
	CertificateTypeIOSDevelopment     = "IOS_DEVELOPMENT"
	CertificateTypeIOSDistribution    = "IOS_DISTRIBUTION"
	CertificateTypeMacAppDistribution = "MAC_APP_DISTRIBUTION"
	CertificateTypeDevelopment        = "DEVELOPMENT"
	CertificateTypeDistribution       = "DISTRIBUTION"
)

// IsDeviceScopedProfileType reports whether profiles of the given type are
// bound to an explicit device list. Store-distribution types are not.
func IsDeviceScopedProfileType(profileType string) bool {
	switch profileType {
	case ProfileTypeIOSAppDevelopment,
		ProfileTypeIOSAppAdHoc,
		ProfileTypeMacAppDevelopment,
		ProfileTypeTvOSAppDevelopment,
		ProfileTypeTvOSAppAdHoc:
		return true
	default:
		return false
	}
}
