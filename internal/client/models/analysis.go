package models

// AnalysisRecord is one saved water test. Numeric readings are kept as
// the strings the user typed; optional readings are empty when omitted.
// Records are append-only.
type AnalysisRecord struct {
	ID             string    `json:"id"`
	CreatedAt      Timestamp `json:"created_at"`
	PoolID         string    `json:"pool_id,omitempty"`
	PH             string    `json:"ph"`
	Chlorine       string    `json:"chlorine"`
	Alkalinity     string    `json:"alkalinity,omitempty"`
	CyanuricAcid   string    `json:"cyanuric_acid,omitempty"`
	Observation    string    `json:"observation,omitempty"`
	HasImage       bool      `json:"has_image"`
	Analysis       string    `json:"analysis"`
	Recommendation string    `json:"recommendation"`
}
