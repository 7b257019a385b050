package director

import (
	"time"

	"github.com/fullsailor/pkcs7"
	"github.com/groob/plist"
	"github.com/sirupsen/logrus"
)

// profilePayload is the plist embedded in a .mobileprovision artifact.
type profilePayload struct {
	Name           string    `plist:"Name"`
	UUID           string    `plist:"UUID"`
	AppIDName      string    `plist:"AppIDName"`
	TeamName       string    `plist:"TeamName"`
	ExpirationDate time.Time `plist:"ExpirationDate"`
}

// InspectArtifact logs the identity of a fetched .mobileprovision: the
// artifact is CMS-signed with a plist payload inside. Purely diagnostic;
// a malformed artifact logs a warning and nothing else.
func InspectArtifact(logger logrus.FieldLogger, data []byte) {
	payload := data
	if parsed, err := pkcs7.Parse(data); err == nil {
		payload = parsed.Content
	} else {
		logger.WithError(err).Debug("Artifact is not CMS-wrapped, trying raw plist")
	}

	var info profilePayload
	if err := plist.Unmarshal(payload, &info); err != nil {
		logger.WithError(err).Warn("Could not decode profile payload from artifact")
		return
	}

	logger.WithFields(logrus.Fields{
		"profile_uuid": info.UUID,
		"profile_name": info.Name,
		"app_id_name":  info.AppIDName,
		"team_name":    info.TeamName,
		"expires":      info.ExpirationDate,
	}).Info("Profile artifact decoded")
}
