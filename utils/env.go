// Package utils reads the workflow's environment configuration.
package utils

import (
	"encoding/base64"
	"strings"

	"github.com/micromdm/go4/env"
	"github.com/pkg/errors"
)

func ProfileName() string {
	return env.String("PROFILE_NAME", "")
}

func CertType() string {
	return env.String("CERT_TYPE", "")
}

func IssuerID() string {
	return env.String("ISSUER_ID", "")
}

func KeyID() string {
	return env.String("KEY_ID", "")
}

func PrivateKeyBase64() string {
	return env.String("PRIVATE_KEY_BASE64", "")
}

func BundleID() string {
	return env.String("BUNDLE_ID", "")
}

func ProfileType() string {
	return env.String("PROFILE_TYPE", "")
}

func OutputPath() string {
	return env.String("OUTPUT_PATH", "")
}

func GithubOutputPath() string {
	return env.String("GITHUB_OUTPUT", "")
}

func LogLevel() string {
	return env.String("LOG_LEVEL", "info")
}

// DecodePrivateKey decodes the base64-wrapped PEM key material supplied
// through the environment.
func DecodePrivateKey(encoded string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "decoding PRIVATE_KEY_BASE64")
	}
	if len(decoded) == 0 {
		return nil, errors.New("PRIVATE_KEY_BASE64 decoded to empty key material")
	}
	return decoded, nil
}
