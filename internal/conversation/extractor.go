package conversation

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
)

var dataSummaryPattern = regexp.MustCompile(`(?s)\[DATA_SUMMARY:\s*(\{.*?\})\s*\]`)

var errNestedSummaryValue = errors.New("nested value in data summary field")

// DataSummary is the qualification payload the model emits once it has
// gathered every field.
type DataSummary struct {
	Operation      string               `json:"operation"`
	PropertyType   string               `json:"propertyType"`
	Zone           string               `json:"zone"`
	Budget         string               `json:"budget"`
	Financing      string               `json:"financing"`
	Timeline       string               `json:"timeline"`
	Name           string               `json:"name"`
	WhatsApp       string               `json:"whatsapp"`
	Classification leads.Classification `json:"classification"`
}

// LeadRequest converts the payload into a lead creation request.
func (d *DataSummary) LeadRequest() *leads.CreateLeadRequest {
	return &leads.CreateLeadRequest{
		Name:           d.Name,
		WhatsApp:       d.WhatsApp,
		Operation:      d.Operation,
		PropertyType:   d.PropertyType,
		Zone:           d.Zone,
		Budget:         d.Budget,
		Financing:      d.Financing,
		Timeline:       d.Timeline,
		Classification: d.Classification,
	}
}

// Extraction is the outcome of scanning a model reply.
type Extraction struct {
	// Text is the reply with the DATA_SUMMARY block removed, trimmed.
	Text string
	// Summary is nil when no block was present or it failed to parse.
	Summary *DataSummary
	// Found reports whether a block was present at all.
	Found bool
}

// ExtractDataSummary locates the first DATA_SUMMARY block in reply, removes
// it from the display text, and parses its JSON object. A block that is
// present but malformed yields a *ParseError alongside the cleaned text.
func ExtractDataSummary(reply string) (Extraction, error) {
	loc := dataSummaryPattern.FindStringSubmatchIndex(reply)
	if loc == nil {
		return Extraction{Text: strings.TrimSpace(reply)}, nil
	}

	out := Extraction{
		Text:  strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:]),
		Found: true,
	}

	var raw map[string]summaryValue
	if err := json.Unmarshal([]byte(reply[loc[2]:loc[3]]), &raw); err != nil {
		return out, &ParseError{Reason: "malformed json", Err: err}
	}

	summary := &DataSummary{
		Operation:      raw["operation"].String(),
		PropertyType:   raw["propertyType"].String(),
		Zone:           raw["zone"].String(),
		Budget:         raw["budget"].String(),
		Financing:      raw["financing"].String(),
		Timeline:       raw["timeline"].String(),
		Name:           raw["name"].String(),
		WhatsApp:       raw["whatsapp"].String(),
		Classification: leads.Classification(raw["classification"].String()),
	}

	required := []struct {
		field string
		value string
	}{
		{"operation", summary.Operation},
		{"propertyType", summary.PropertyType},
		{"zone", summary.Zone},
		{"budget", summary.Budget},
		{"financing", summary.Financing},
		{"timeline", summary.Timeline},
		{"name", summary.Name},
		{"whatsapp", summary.WhatsApp},
		{"classification", string(summary.Classification)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return out, &ParseError{Reason: "missing field " + r.field}
		}
	}
	if !summary.Classification.Valid() {
		return out, &ParseError{Reason: "unknown classification " + string(summary.Classification)}
	}

	out.Summary = summary
	return out, nil
}

// summaryValue accepts a JSON string, number or boolean. Models sometimes
// emit budgets as bare numbers.
type summaryValue string

func (v *summaryValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = summaryValue(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return errNestedSummaryValue
	default:
		*v = summaryValue(data)
	}
	return nil
}

func (v summaryValue) String() string {
	return strings.TrimSpace(string(v))
}
