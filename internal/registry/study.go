// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import "github.com/pdiddy/trial-analyzer/pkg/types"

// Response is a decoded registry query response. A payload without a
// "studies" key decodes to an empty Studies slice.
type Response struct {
	Studies       []Study `json:"studies"`
	TotalCount    int     `json:"totalCount,omitempty"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// Records flattens every study into a TrialRecord.
func (r *Response) Records() []types.TrialRecord {
	if r == nil {
		return nil
	}
	records := make([]types.TrialRecord, 0, len(r.Studies))
	for _, s := range r.Studies {
		records = append(records, s.Record())
	}
	return records
}

// Registry API JSON structures. Modules are pointers so absent modules
// stay distinguishable from empty ones.
type Study struct {
	ProtocolSection *protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	IdentificationModule    *identificationModule    `json:"identificationModule"`
	StatusModule            *statusModule            `json:"statusModule"`
	SponsorCollaborators    *sponsorModule           `json:"sponsorCollaboratorsModule"`
	DescriptionModule       *descriptionModule       `json:"descriptionModule"`
	ConditionsModule        *conditionsModule        `json:"conditionsModule"`
	DesignModule            *designModule            `json:"designModule"`
	ArmsInterventionsModule *armsInterventionsModule `json:"armsInterventionsModule"`
}

type identificationModule struct {
	NCTID      string `json:"nctId"`
	BriefTitle string `json:"briefTitle"`
}

type statusModule struct {
	OverallStatus        string     `json:"overallStatus"`
	StartDateStruct      dateStruct `json:"startDateStruct"`
	CompletionDateStruct dateStruct `json:"completionDateStruct"`
}

type dateStruct struct {
	Date string `json:"date"`
}

type sponsorModule struct {
	LeadSponsor   namedParty   `json:"leadSponsor"`
	Collaborators []namedParty `json:"collaborators"`
}

type namedParty struct {
	Name string `json:"name"`
}

type descriptionModule struct {
	BriefSummary string `json:"briefSummary"`
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type designModule struct {
	Phases         []string        `json:"phases"`
	EnrollmentInfo *enrollmentInfo `json:"enrollmentInfo"`
}

type enrollmentInfo struct {
	Count *int `json:"count"`
}

type armsInterventionsModule struct {
	Interventions []intervention `json:"interventions"`
}

type intervention struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Record flattens the study. A study without a protocol section yields an
// empty record, which fails TrialRecord.Validate.
func (s Study) Record() types.TrialRecord {
	var r types.TrialRecord
	p := s.ProtocolSection
	if p == nil {
		return r
	}

	if m := p.IdentificationModule; m != nil {
		r.Identifier = m.NCTID
		r.Title = m.BriefTitle
	}
	if m := p.StatusModule; m != nil {
		r.OverallStatus = m.OverallStatus
		r.StartDate = m.StartDateStruct.Date
		r.CompletionDate = m.CompletionDateStruct.Date
	}
	if m := p.SponsorCollaborators; m != nil {
		r.LeadSponsorName = m.LeadSponsor.Name
		for _, c := range m.Collaborators {
			r.CollaboratorNames = append(r.CollaboratorNames, c.Name)
		}
	}
	if m := p.DescriptionModule; m != nil {
		r.BriefSummary = m.BriefSummary
	}
	if m := p.ConditionsModule; m != nil {
		r.Conditions = append(r.Conditions, m.Conditions...)
	}
	if m := p.DesignModule; m != nil {
		r.Phases = append(r.Phases, m.Phases...)
		if m.EnrollmentInfo != nil && m.EnrollmentInfo.Count != nil {
			n := *m.EnrollmentInfo.Count
			r.EnrollmentCount = &n
		}
	}
	if m := p.ArmsInterventionsModule; m != nil {
		for _, iv := range m.Interventions {
			r.Interventions = append(r.Interventions, types.Intervention{Type: iv.Type, Name: iv.Name})
		}
	}
	return r
}
