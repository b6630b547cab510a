package domain

// Product represents a single catalog record as stored by the catalog service.
// The assistant only ever reads products; all write paths live outside this service.
type Product struct {
	ID          int            `json:"id"`
	DocumentID  string         `json:"documentId,omitempty"`
	Slug        string         `json:"slug,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       *float64       `json:"price,omitempty"`
	Specs       map[string]any `json:"specs,omitempty"`
}

// Spec keys used by the fast-path answerer and context assembler.
// These mirror the payload schema of the vector index collection.
const (
	SpecMotorFamily          = "motorFamily"
	SpecMotorType            = "motorType"
	SpecSupplyVoltageMinV    = "supplyVoltageMinV"
	SpecSupplyVoltageMaxV    = "supplyVoltageMaxV"
	SpecRatedPowerKw         = "ratedPowerKw"
	SpecRatedTorqueNm        = "ratedTorqueNm"
	SpecIPRating             = "ipRating"
	SpecCooling              = "cooling"
	SpecMountType            = "mountType"
	SpecHasBrake             = "hasBrake"
	SpecBrakeVoltageV        = "brakeVoltageV"
	SpecBrakeHoldingTorqueNm = "brakeHoldingTorqueNm"
	SpecGearboxRequired      = "gearboxRequired"
	SpecGearboxType          = "gearboxType"
	SpecGearboxRatio         = "gearboxRatio"
	SpecMaxLengthMm          = "maxLengthMm"
	SpecMaxWidthMm           = "maxWidthOrDiameterMm"
)

// SpecString returns the named spec as a string, or "" when absent or not a string.
func (p *Product) SpecString(key string) string {
	if p.Specs == nil {
		return ""
	}
	if s, ok := p.Specs[key].(string); ok {
		return s
	}
	return ""
}

// SpecNumber returns the named spec as a float64 when present.
// JSON decoding stores all numbers as float64, but ints are handled
// for products constructed directly in code.
func (p *Product) SpecNumber(key string) (float64, bool) {
	if p.Specs == nil {
		return 0, false
	}
	switch v := p.Specs[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// SpecBool returns the named spec as a bool when present.
func (p *Product) SpecBool(key string) (bool, bool) {
	if p.Specs == nil {
		return false, false
	}
	b, ok := p.Specs[key].(bool)
	return b, ok
}
