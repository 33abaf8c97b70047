// Package models defines the records the client stores locally and mirrors
// to the remote document store.
package models

// Location says whether a pool is outdoors or under a roof.
type Location string

const (
	LocationOutdoor Location = "outdoor"
	LocationIndoor  Location = "indoor"
)

// Equipment lists the treatment equipment installed on a pool.
type Equipment struct {
	Ionizer     bool `json:"ionizer"`
	Heater      bool `json:"heater"`
	Ozone       bool `json:"ozone"`
	Chlorinator bool `json:"chlorinator"`
}

// Pool is one of a user's pools. ID is assigned on creation and never
// changes; CreatedAt is set once and UpdatedAt moves on every update.
type Pool struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Volume    float64   `json:"volume"`
	Location  Location  `json:"location"`
	Equipment Equipment `json:"equipment"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// EquipmentPatch carries the equipment flags a caller wants to change.
// A nil field leaves the stored flag alone.
type EquipmentPatch struct {
	Ionizer     *bool
	Heater      *bool
	Ozone       *bool
	Chlorinator *bool
}

// PoolPatch is a partial pool. An empty ID asks for a new pool; a nil
// field means "not provided", so clearing a value has to be explicit
// (for example Name set to a pointer to "").
type PoolPatch struct {
	ID        string          `json:"id"`
	Name      *string         `json:"name" validate:"omitempty,max=100"`
	Volume    *float64        `json:"volume" validate:"omitempty,gte=0"`
	Location  *Location       `json:"location" validate:"omitempty,oneof=outdoor indoor"`
	Equipment *EquipmentPatch `json:"equipment"`
	CreatedAt *Timestamp      `json:"created_at"`
}

// Apply returns a copy of p with every provided field of patch written
// over it. ID and UpdatedAt are never touched.
func (p Pool) Apply(patch PoolPatch) Pool {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Volume != nil {
		p.Volume = *patch.Volume
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if e := patch.Equipment; e != nil {
		if e.Ionizer != nil {
			p.Equipment.Ionizer = *e.Ionizer
		}
		if e.Heater != nil {
			p.Equipment.Heater = *e.Heater
		}
		if e.Ozone != nil {
			p.Equipment.Ozone = *e.Ozone
		}
		if e.Chlorinator != nil {
			p.Equipment.Chlorinator = *e.Chlorinator
		}
	}
	if patch.CreatedAt != nil {
		p.CreatedAt = *patch.CreatedAt
	}
	return p
}

// FindPool returns the index of the pool with the given id, or -1.
func FindPool(pools []Pool, id string) int {
	for i := range pools {
		if pools[i].ID == id {
			return i
		}
	}
	return -1
}
