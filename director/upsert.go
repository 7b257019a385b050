package director

import (
	"encoding/base64"
	"os"

	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OutputSink receives workflow results as they become known. Outputs are
// written incrementally so a failing run still reports everything that
// succeeded before the failure.
type OutputSink interface {
	Set(name, value string) error
}

// Upserter sequences the full workflow: certificate selection, bundle
// resolution, profile replacement, artifact retrieval, output encoding.
// Every stage failure halts the pipeline; no partial success is reported.
type Upserter struct {
	certificates *CertificateSelector
	bundles      *BundleResolver
	replacer     *ProfileReplacer
	artifacts    *ArtifactRetriever
	outputs      OutputSink
	log          logrus.FieldLogger
}

func NewUpserter(
	certificates *CertificateSelector,
	bundles *BundleResolver,
	replacer *ProfileReplacer,
	artifacts *ArtifactRetriever,
	outputs OutputSink,
	logger logrus.FieldLogger,
) *Upserter {
	return &Upserter{
		certificates: certificates,
		bundles:      bundles,
		replacer:     replacer,
		artifacts:    artifacts,
		outputs:      outputs,
		log:          logger,
	}
}

// Run executes one upsert. The returned result always reflects what was
// written to the sink, including Success=false on any failure.
func (u *Upserter) Run(req types.UpsertRequest) (types.UpsertResult, error) {
	var result types.UpsertResult

	fail := func(err error, msg string) (types.UpsertResult, error) {
		if sinkErr := u.outputs.Set("success", "false"); sinkErr != nil {
			u.log.WithError(sinkErr).Error("Could not record failure output")
		}
		return result, errors.Wrap(err, msg)
	}

	certificate, err := u.certificates.Select(req.CertificateType)
	if err != nil {
		return fail(err, "selecting certificate")
	}
	result.CertificateID = certificate.ID
	if err := u.outputs.Set("cert_id", certificate.ID); err != nil {
		return fail(err, "recording cert_id output")
	}

	bundle, err := u.bundles.Resolve(req.BundleIdentifier)
	if err != nil {
		return fail(err, "resolving bundle identifier")
	}

	profile, err := u.replacer.Replace(ReplaceRequest{
		Name:          req.ProfileName,
		ProfileType:   req.ProfileType,
		BundleID:      bundle.ID,
		CertificateID: certificate.ID,
	})
	if err != nil {
		return fail(err, "replacing profile")
	}
	result.ProfileID = profile.ID
	if err := u.outputs.Set("profile_id", profile.ID); err != nil {
		return fail(err, "recording profile_id output")
	}

	raw, err := u.artifacts.FetchContent(profile.ID)
	if err != nil {
		return fail(err, "retrieving profile artifact")
	}
	InspectArtifact(u.log, raw)

	if req.OutputPath != "" {
		if err := writeArtifact(req.OutputPath, raw); err != nil {
			return fail(err, "writing profile artifact")
		}
		result.ProfilePath = req.OutputPath
		if err := u.outputs.Set("profile_path", req.OutputPath); err != nil {
			return fail(err, "recording profile_path output")
		}
		u.log.WithFields(logrus.Fields{
			"path":  req.OutputPath,
			"bytes": len(raw),
		}).Info("Wrote profile artifact")
	}

	result.ProfileContentBase64 = base64.StdEncoding.EncodeToString(raw)
	if err := u.outputs.Set("provision_profile_base64", result.ProfileContentBase64); err != nil {
		return fail(err, "recording artifact output")
	}

	if err := u.outputs.Set("success", "true"); err != nil {
		return fail(err, "recording success output")
	}
	result.Success = true
	u.log.WithFields(logrus.Fields{
		"profile_id":     result.ProfileID,
		"certificate_id": result.CertificateID,
	}).Info("Profile upsert complete")
	return result, nil
}

// writeArtifact persists the raw artifact and verifies the write landed.
func writeArtifact(path string, raw []byte) error {
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "verifying written artifact")
	}
	if info.Size() == 0 {
		return errors.Errorf("artifact file %s is empty after write", path)
	}
	return nil
}
