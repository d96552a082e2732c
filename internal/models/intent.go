package models

import (
	"fmt"
	"strings"
)

// Persona selects the tone of the generated breakup text
type Persona string

const (
	PersonaToxic Persona = "toxic"
	PersonaHR    Persona = "hr"
)

// MaxReasonLength bounds the free-form reason text
const MaxReasonLength = 500

// ParsePersona validates a persona string from user input
func ParsePersona(s string) (Persona, error) {
	switch Persona(strings.ToLower(strings.TrimSpace(s))) {
	case PersonaToxic:
		return PersonaToxic, nil
	case PersonaHR:
		return PersonaHR, nil
	default:
		return "", fmt.Errorf("unknown persona %q (must be %q or %q)", s, PersonaToxic, PersonaHR)
	}
}

// Intent captures what the user wants generated. Immutable once created.
type Intent struct {
	Reason  string  `json:"reason"`
	Persona Persona `json:"persona"`
}

// NewIntent validates raw user input and builds an Intent
func NewIntent(reason, persona string) (Intent, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Intent{}, fmt.Errorf("reason is required")
	}
	if len(reason) > MaxReasonLength {
		return Intent{}, fmt.Errorf("reason must be at most %d characters", MaxReasonLength)
	}

	p, err := ParsePersona(persona)
	if err != nil {
		return Intent{}, err
	}

	return Intent{Reason: reason, Persona: p}, nil
}
