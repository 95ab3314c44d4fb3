// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/trial-analyzer/internal/trialerr"
	"github.com/pdiddy/trial-analyzer/pkg/types"
)

const (
	moduleSuffix    = "Module"
	defaultPageSize = 100
)

// MinimumModules must always be present in the configured module list.
var MinimumModules = []string{
	"IdentificationModule",
	"StatusModule",
	"DesignModule",
	"SponsorCollaboratorsModule",
	"DescriptionModule",
	"ConditionsModule",
}

// QueryBuilder constructs registry query URLs. Its module list is validated
// once, at construction.
type QueryBuilder struct {
	endpoint string
	fields   string
	pageSize int
}

// NewQueryBuilder validates cfg and returns a builder. A module list that
// lacks any of MinimumModules, or contains an entry without the "Module"
// suffix, yields a *trialerr.ConfigurationError.
func NewQueryBuilder(cfg types.RegistryConfig) (*QueryBuilder, error) {
	if err := ValidateModules(cfg.Modules); err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, &trialerr.ConfigurationError{Reason: "registry endpoint is empty"}
	}
	if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &trialerr.ConfigurationError{Reason: "registry endpoint " + strconv.Quote(endpoint) + " is not an absolute URL"}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &QueryBuilder{
		endpoint: endpoint,
		fields:   strings.Join(cfg.Modules, ","),
		pageSize: pageSize,
	}, nil
}

// ValidateModules checks that modules is a superset of MinimumModules and
// that every entry ends with "Module".
func ValidateModules(modules []string) error {
	present := make(map[string]bool, len(modules))
	var invalid []string
	for _, m := range modules {
		present[m] = true
		if !strings.HasSuffix(m, moduleSuffix) {
			invalid = append(invalid, m)
		}
	}

	var missing []string
	for _, m := range MinimumModules {
		if !present[m] {
			missing = append(missing, m)
		}
	}

	switch {
	case len(missing) > 0 && len(invalid) > 0:
		return &trialerr.ConfigurationError{Reason: "invalid registry module list", Missing: missing, Invalid: invalid}
	case len(missing) > 0:
		return &trialerr.ConfigurationError{Reason: "required registry modules missing", Missing: missing}
	case len(invalid) > 0:
		return &trialerr.ConfigurationError{Reason: "registry modules must end with \"Module\"", Invalid: invalid}
	}
	return nil
}

// OrganizationQuery builds the primary query for a normalized organization name.
func (b *QueryBuilder) OrganizationQuery(normalizedName string) (string, error) {
	if strings.TrimSpace(normalizedName) == "" {
		return "", &trialerr.InvalidInputError{Field: "organization name", Reason: "empty"}
	}
	return b.build(normalizedName), nil
}

// DrugCodeQuery builds the follow-up query for a drug code.
func (b *QueryBuilder) DrugCodeQuery(code types.DrugIdentifier) (string, error) {
	if strings.TrimSpace(string(code)) == "" {
		return "", &trialerr.InvalidInputError{Field: "drug code", Reason: "empty"}
	}
	return b.build(string(code)), nil
}

// build keeps the registry's parameter order: query.term, fields, pageSize.
func (b *QueryBuilder) build(term string) string {
	var sb strings.Builder
	sb.WriteString(b.endpoint)
	sb.WriteString("?query.term=")
	sb.WriteString(encodeComponent(term))
	sb.WriteString("&fields=")
	sb.WriteString(b.fields)
	sb.WriteString("&pageSize=")
	sb.WriteString(strconv.Itoa(b.pageSize))
	return sb.String()
}

// encodeComponent percent-encodes s for a query value, using %20 for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
