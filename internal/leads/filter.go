package leads

import "strings"

// ListFilter narrows a lead list the way the admin dashboard does: an exact
// classification match and a free-text search over name and whatsapp.
type ListFilter struct {
	Classification Classification
	Search         string
}

// Match reports whether lead passes the filter. Classification must match
// exactly. Search matches a case-insensitive substring of the name or a
// substring of the whatsapp handle.
func (f ListFilter) Match(lead *Lead) bool {
	if f.Classification != "" && lead.Classification != f.Classification {
		return false
	}
	if f.Search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(lead.Name), strings.ToLower(f.Search)) {
		return true
	}
	return strings.Contains(lead.WhatsApp, f.Search)
}

// Apply returns the leads that pass the filter, preserving order.
func (f ListFilter) Apply(leads []*Lead) []*Lead {
	if f.Classification == "" && f.Search == "" {
		return leads
	}
	out := make([]*Lead, 0, len(leads))
	for _, l := range leads {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Stats are the aggregate counts shown on the dashboard cards.
type Stats struct {
	Total    int `json:"total"`
	Hot      int `json:"hot"`
	Warm     int `json:"warm"`
	Cold     int `json:"cold"`
	Pending  int `json:"pending"`
	Attended int `json:"attended"`
}

// ComputeStats counts leads per classification and status.
func ComputeStats(leads []*Lead) Stats {
	s := Stats{Total: len(leads)}
	for _, l := range leads {
		switch l.Classification {
		case ClassificationHot:
			s.Hot++
		case ClassificationWarm:
			s.Warm++
		case ClassificationCold:
			s.Cold++
		}
		switch l.Status {
		case StatusPending:
			s.Pending++
		case StatusAttended:
			s.Attended++
		}
	}
	return s
}
