package models

// MedicalProfile represents the emergency medical profile.
type MedicalProfile struct {
	BloodType      string    `json:"bloodType,omitempty"`
	Allergies      []string  `json:"allergies,omitempty"`
	Medications    []string  `json:"medications,omitempty"`
	Conditions     []string  `json:"conditions,omitempty"`
	EmergencyNotes string    `json:"emergencyNotes,omitempty"`
	UpdatedAt      Timestamp `json:"updatedAt"`
}

// MedicalProfileRequest carries the fields for upserting a medical profile.
type MedicalProfileRequest struct {
	BloodType      string   `json:"bloodType,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies      []string `json:"allergies,omitempty"`
	Medications    []string `json:"medications,omitempty"`
	Conditions     []string `json:"conditions,omitempty"`
	EmergencyNotes string   `json:"emergencyNotes,omitempty" validate:"omitempty,max=2000"`
}
