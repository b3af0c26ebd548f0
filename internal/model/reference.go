package model

// Reference is a labeled lookup row. Every reference table shares this shape.
type Reference struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null;default:noname" json:"title"`
	Description string `gorm:"size:255;not null" json:"description"`
}

// Equipment is a machine model.
type Equipment struct{ Reference }

// Engine is an engine model.
type Engine struct{ Reference }

// Transmission is a transmission model.
type Transmission struct{ Reference }

// DrivingAxle is a driving axle model.
type DrivingAxle struct{ Reference }

// SteeringAxle is a steering axle model.
type SteeringAxle struct{ Reference }

// MaintenanceCompany is the organization that performed a maintenance.
type MaintenanceCompany struct{ Reference }

// MaintenanceType is a kind of scheduled maintenance.
type MaintenanceType struct{ Reference }

// RefusalNode is the machine unit that failed.
type RefusalNode struct{ Reference }

// RecoveryMethod is how a failure was repaired.
type RecoveryMethod struct{ Reference }

func (Equipment) TableName() string          { return "equipment" }
func (Engine) TableName() string             { return "engines" }
func (Transmission) TableName() string       { return "transmissions" }
func (DrivingAxle) TableName() string        { return "driving_axles" }
func (SteeringAxle) TableName() string       { return "steering_axles" }
func (MaintenanceCompany) TableName() string { return "maintenance_companies" }
func (MaintenanceType) TableName() string    { return "maintenance_types" }
func (RefusalNode) TableName() string        { return "refusal_nodes" }
func (RecoveryMethod) TableName() string     { return "recovery_methods" }

// ReferenceKind describes one reference table as exposed over the API.
type ReferenceKind struct {
	Name  string // URL segment
	Table string
	Label string // default description

	// UsedBy is the table whose ForeignKey column points at this one.
	UsedBy     string
	ForeignKey string
}

// ReferenceKinds lists every reference table in display order.
var ReferenceKinds = []ReferenceKind{
	{Name: "equipment", Table: "equipment", Label: "Equipment model", UsedBy: "machines", ForeignKey: "equipment_id"},
	{Name: "engines", Table: "engines", Label: "Engine model", UsedBy: "machines", ForeignKey: "engine_id"},
	{Name: "transmissions", Table: "transmissions", Label: "Transmission model", UsedBy: "machines", ForeignKey: "transmission_id"},
	{Name: "driving-axles", Table: "driving_axles", Label: "Driving axle model", UsedBy: "machines", ForeignKey: "driving_axle_id"},
	{Name: "steering-axles", Table: "steering_axles", Label: "Steering axle model", UsedBy: "machines", ForeignKey: "steering_axle_id"},
	{Name: "maintenance-companies", Table: "maintenance_companies", Label: "Maintenance company", UsedBy: "maintenance", ForeignKey: "maintenance_company_id"},
	{Name: "maintenance-types", Table: "maintenance_types", Label: "Maintenance type", UsedBy: "maintenance", ForeignKey: "maintenance_type_id"},
	{Name: "refusal-nodes", Table: "refusal_nodes", Label: "Refusal node", UsedBy: "claims", ForeignKey: "refusal_node_id"},
	{Name: "recovery-methods", Table: "recovery_methods", Label: "Recovery method", UsedBy: "claims", ForeignKey: "recovery_method_id"},
}

// LookupReferenceKind finds a kind by its URL segment.
func LookupReferenceKind(name string) (ReferenceKind, bool) {
	for _, k := range ReferenceKinds {
		if k.Name == name {
			return k, true
		}
	}
	return ReferenceKind{}, false
}
