// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance decides which registry records belong to an organization
// and mines their interventions for drug codes.
package relevance

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/trial-analyzer/internal/registry"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// Classifier decides whether a record belongs to an organization. The
// organization name is already normalized.
type Classifier interface {
	IsRelated(record types.TrialRecord, normalizedOrg string) bool
}

// SubstringClassifier matches when the normalized organization name occurs
// in the normalized lead sponsor, any collaborator, or the brief summary.
// False positives are accepted.
type SubstringClassifier struct {
	Logger logrus.FieldLogger
}

// NewSubstringClassifier returns a SubstringClassifier that logs malformed
// records to log.
func NewSubstringClassifier(log logrus.FieldLogger) *SubstringClassifier {
	return &SubstringClassifier{Logger: log}
}

// IsRelated implements Classifier. Malformed records are logged and
// reported as unrelated.
func (c *SubstringClassifier) IsRelated(record types.TrialRecord, normalizedOrg string) bool {
	if normalizedOrg == "" {
		return false
	}
	if err := record.Validate(); err != nil {
		c.logger().WithError(err).Warn("skipping malformed record in relevance check")
		return false
	}

	if nameMatches(record.LeadSponsorName, normalizedOrg) {
		return true
	}
	for _, name := range record.CollaboratorNames {
		if nameMatches(name, normalizedOrg) {
			return true
		}
	}
	return nameMatches(record.BriefSummary, normalizedOrg)
}

// Filter returns the records c considers related, in input order.
func Filter(c Classifier, records []types.TrialRecord, normalizedOrg string) []types.TrialRecord {
	var out []types.TrialRecord
	for _, r := range records {
		if c.IsRelated(r, normalizedOrg) {
			out = append(out, r)
		}
	}
	return out
}

func nameMatches(text, normalizedOrg string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(registry.Normalize(text), normalizedOrg)
}

func (c *SubstringClassifier) logger() logrus.FieldLogger {
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return c.Logger
}
