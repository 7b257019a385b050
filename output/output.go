// Package output appends workflow results to a GitHub-Actions-style output
// file: one key=value line per single-line value, the delimited block form
// for anything containing a newline.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sink writes key-value outputs to the file at path. A Sink with an empty
// path only logs, which keeps local runs outside a CI job working.
type Sink struct {
	path string
	log  logrus.FieldLogger
}

func NewSink(path string, logger logrus.FieldLogger) *Sink {
	return &Sink{path: path, log: logger}
}

// Set appends one output. Values with embedded newlines use the heredoc
// delimiter form so line-oriented consumers stay parseable; the delimiter
// is randomized so a value can never terminate its own block.
func (s *Sink) Set(name, value string) error {
	s.log.WithFields(logrus.Fields{
		"name":  name,
		"bytes": len(value),
	}).Debug("Setting output")

	if s.path == "" {
		return nil
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening output file %s", s.path)
	}
	defer file.Close()

	var line string
	if strings.Contains(value, "\n") {
		delimiter := "ghadelimiter_" + uuid.New().String()
		line = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	} else {
		line = fmt.Sprintf("%s=%s\n", name, value)
	}

	if _, err := file.WriteString(line); err != nil {
		return errors.Wrapf(err, "writing output %s", name)
	}
	return nil
}
