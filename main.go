package main

import (
	"os"

	"github.com/ascdirector/ascdirector/asc"
	"github.com/ascdirector/ascdirector/director"
	"github.com/ascdirector/ascdirector/output"
	"github.com/ascdirector/ascdirector/types"
	"github.com/ascdirector/ascdirector/utils"
	log "github.com/sirupsen/logrus"
)

func main() {
	logger := log.New()
	if level, err := log.ParseLevel(utils.LogLevel()); err == nil {
		logger.SetLevel(level)
	}

	if err := run(logger); err != nil {
		logger.WithError(err).Error("Profile upsert failed")
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	outputs := output.NewSink(utils.GithubOutputPath(), logger)

	req := types.UpsertRequest{
		ProfileName:      utils.ProfileName(),
		CertificateType:  utils.CertType(),
		BundleIdentifier: utils.BundleID(),
		ProfileType:      utils.ProfileType(),
		IssuerID:         utils.IssuerID(),
		KeyID:            utils.KeyID(),
		PrivateKeyPEM:    []byte(utils.PrivateKeyBase64()),
		OutputPath:       utils.OutputPath(),
	}

	// Validate before touching the network; a missing input still reports
	// success=false to the calling workflow.
	if err := req.Validate(); err != nil {
		if sinkErr := outputs.Set("success", "false"); sinkErr != nil {
			logger.WithError(sinkErr).Error("Could not record failure output")
		}
		return err
	}

	pemKey, err := utils.DecodePrivateKey(utils.PrivateKeyBase64())
	if err != nil {
		if sinkErr := outputs.Set("success", "false"); sinkErr != nil {
			logger.WithError(sinkErr).Error("Could not record failure output")
		}
		return err
	}
	req.PrivateKeyPEM = pemKey

	tokens, err := asc.NewTokenSource(req.IssuerID, req.KeyID, req.PrivateKeyPEM)
	if err != nil {
		if sinkErr := outputs.Set("success", "false"); sinkErr != nil {
			logger.WithError(sinkErr).Error("Could not record failure output")
		}
		return err
	}

	client := asc.NewClient(asc.DefaultBaseURL, tokens, logger)

	finder := director.NewProfileFinder(client, logger)
	upserter := director.NewUpserter(
		director.NewCertificateSelector(client, logger),
		director.NewBundleResolver(client, logger),
		director.NewProfileReplacer(finder, client, client, logger),
		director.NewArtifactRetriever(client, director.DefaultRetryPolicy(), logger),
		outputs,
		logger,
	)

	logger.WithFields(log.Fields{
		"profile_name": req.ProfileName,
		"profile_type": req.ProfileType,
		"cert_type":    req.CertificateType,
		"bundle_id":    req.BundleIdentifier,
	}).Info("Starting provisioning profile upsert")

	_, err = upserter.Run(req)
	return err
}
