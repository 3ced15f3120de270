package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "pending"
	StatusApproved AppointmentStatus = "approved"
	StatusRejected AppointmentStatus = "rejected"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Legacy maps the status onto the nullable boolean used by older clients:
// nil while pending, true once approved, false once rejected.
func (s AppointmentStatus) Legacy() *bool {
	var b bool
	switch s {
	case StatusApproved:
		b = true
	case StatusRejected:
		b = false
	default:
		return nil
	}
	return &b
}

// ParseStatus accepts the status names (in English or Spanish) and the legacy
// "true", "false" and "null" spellings.
func ParseStatus(raw string) (AppointmentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "pendiente", "null":
		return StatusPending, nil
	case "approved", "aprobada", "aprobado", "true":
		return StatusApproved, nil
	case "rejected", "rechazada", "rechazado", "false":
		return StatusRejected, nil
	}
	return "", fmt.Errorf("estado desconocido %q", raw)
}

// StatusInput decodes a status sent either as a JSON boolean, null or a string.
// Set is false when the field was absent from the payload.
type StatusInput struct {
	Status AppointmentStatus
	Set    bool
}

func (in *StatusInput) UnmarshalJSON(data []byte) error {
	in.Set = true
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null":
		in.Status = StatusPending
		return nil
	case "true":
		in.Status = StatusApproved
		return nil
	case "false":
		in.Status = StatusRejected
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("estado inválido: %s", data)
	}
	st, err := ParseStatus(s)
	if err != nil {
		return err
	}
	in.Status = st
	return nil
}
