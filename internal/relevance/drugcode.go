// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"regexp"

	"github.com/pdiddy/trial-analyzer/pkg/types"
)

// drugCodePattern matches codes like TERN-501 or ABC-1234.
var drugCodePattern = regexp.MustCompile(`\b[A-Z]+-\d{3,4}\b`)

// ExtractCode returns the first drug code in an intervention name, or ""
// when there is none.
func ExtractCode(interventionName string) types.DrugIdentifier {
	return types.DrugIdentifier(drugCodePattern.FindString(interventionName))
}

// ExtractAll scans every intervention name of every record and returns the
// distinct codes in first-seen order.
func ExtractAll(records []types.TrialRecord) *types.DrugIdentifierSet {
	set := types.NewDrugIdentifierSet()
	for _, r := range records {
		for _, iv := range r.Interventions {
			if code := ExtractCode(iv.Name); code != "" {
				set.Add(code)
			}
		}
	}
	return set
}
