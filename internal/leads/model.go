package leads

import (
	"strings"
	"time"
)

// Classification tiers a lead by readiness to transact.
type Classification string

const (
	ClassificationHot  Classification = "HOT"
	ClassificationWarm Classification = "WARM"
	ClassificationCold Classification = "COLD"
)

// Valid reports whether c is one of HOT, WARM or COLD. Matching is exact.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationHot, ClassificationWarm, ClassificationCold:
		return true
	}
	return false
}

// Status is the workflow state of a lead in the admin dashboard.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAttended Status = "attended"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAttended
}

// Lead is a prospective client's qualification record captured by the chatbot.
type Lead struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	WhatsApp       string         `json:"whatsapp"`
	Operation      string         `json:"operation"`
	PropertyType   string         `json:"propertyType"`
	Zone           string         `json:"zone"`
	Budget         string         `json:"budget"`
	Financing      string         `json:"financing"`
	Timeline       string         `json:"timeline"`
	Classification Classification `json:"classification"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// CreateLeadRequest carries the qualification fields. Identity, status and
// timestamp are assigned by the store.
type CreateLeadRequest struct {
	Name           string         `json:"name"`
	WhatsApp       string         `json:"whatsapp"`
	Operation      string         `json:"operation"`
	PropertyType   string         `json:"propertyType"`
	Zone           string         `json:"zone"`
	Budget         string         `json:"budget"`
	Financing      string         `json:"financing"`
	Timeline       string         `json:"timeline"`
	Classification Classification `json:"classification"`
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.WhatsApp) == "" {
		return ErrMissingContact
	}
	if !r.Classification.Valid() {
		return ErrInvalidClassification
	}
	return nil
}

func (r *CreateLeadRequest) toLead(id int64, createdAt time.Time) *Lead {
	return &Lead{
		ID:             id,
		Name:           r.Name,
		WhatsApp:       r.WhatsApp,
		Operation:      r.Operation,
		PropertyType:   r.PropertyType,
		Zone:           r.Zone,
		Budget:         r.Budget,
		Financing:      r.Financing,
		Timeline:       r.Timeline,
		Classification: r.Classification,
		Status:         StatusPending,
		CreatedAt:      createdAt,
	}
}
