// Package filter narrows already-scoped record queries by user-supplied
// criteria. Empty criteria are ignored; unknown query keys never reach here.
package filter

import (
	"net/url"

	"gorm.io/gorm"

	"silant-backend/internal/access"
	"silant-backend/internal/parse"
)

type scope = func(*gorm.DB) *gorm.DB

// MachineCriteria filters machines by reference titles and serial.
type MachineCriteria struct {
	Equipment    string
	Engine       string
	Transmission string
	DrivingAxle  string
	SteeringAxle string
	Serial       string // case-insensitive substring
}

// MaintenanceCriteria filters maintenance records.
type MaintenanceCriteria struct {
	Type           string
	Machine        string // serial substring
	ServiceCompany string
}

// ClaimCriteria filters claims.
type ClaimCriteria struct {
	RefusalNode    string
	RecoveryMethod string
	ServiceCompany string
	Machine        string // serial substring
}

// MachineCriteriaFrom reads machine criteria from a query string. Unknown
// keys and blank values are ignored.
func MachineCriteriaFrom(q url.Values) MachineCriteria {
	return MachineCriteria{
		Equipment:    parse.Term(q.Get("equipment")),
		Engine:       parse.Term(q.Get("engine")),
		Transmission: parse.Term(q.Get("transmission")),
		DrivingAxle:  parse.Term(q.Get("driving_axle")),
		SteeringAxle: parse.Term(q.Get("steering_axle")),
		Serial:       parse.Term(q.Get("serial")),
	}
}

// MaintenanceCriteriaFrom reads maintenance criteria from a query string.
func MaintenanceCriteriaFrom(q url.Values) MaintenanceCriteria {
	return MaintenanceCriteria{
		Type:           parse.Term(q.Get("type")),
		Machine:        parse.Term(q.Get("machine")),
		ServiceCompany: parse.Term(q.Get("service_company")),
	}
}

// ClaimCriteriaFrom reads claim criteria from a query string.
func ClaimCriteriaFrom(q url.Values) ClaimCriteria {
	return ClaimCriteria{
		RefusalNode:    parse.Term(q.Get("refusal_node")),
		RecoveryMethod: parse.Term(q.Get("recovery_method")),
		ServiceCompany: parse.Term(q.Get("service_company")),
		Machine:        parse.Term(q.Get("machine")),
	}
}

// Scopes returns one scope per non-empty criterion.
func (c MachineCriteria) Scopes() []scope {
	var out []scope
	out = appendTitle(out, "machines.equipment_id", "equipment", c.Equipment)
	out = appendTitle(out, "machines.engine_id", "engines", c.Engine)
	out = appendTitle(out, "machines.transmission_id", "transmissions", c.Transmission)
	out = appendTitle(out, "machines.driving_axle_id", "driving_axles", c.DrivingAxle)
	out = appendTitle(out, "machines.steering_axle_id", "steering_axles", c.SteeringAxle)
	if c.Serial != "" {
		out = append(out, serialContains("machines.serial", c.Serial))
	}
	return out
}

// Scopes returns one scope per non-empty criterion.
func (c MaintenanceCriteria) Scopes() []scope {
	var out []scope
	out = appendTitle(out, "maintenance.maintenance_type_id", "maintenance_types", c.Type)
	out = appendTitle(out, "maintenance.service_company_id", "service_companies", c.ServiceCompany)
	if c.Machine != "" {
		out = append(out, machineSerialContains("maintenance.machine_id", c.Machine))
	}
	return out
}

// Scopes returns one scope per non-empty criterion.
func (c ClaimCriteria) Scopes() []scope {
	var out []scope
	out = appendTitle(out, "claims.refusal_node_id", "refusal_nodes", c.RefusalNode)
	out = appendTitle(out, "claims.recovery_method_id", "recovery_methods", c.RecoveryMethod)
	out = appendTitle(out, "claims.service_company_id", "service_companies", c.ServiceCompany)
	if c.Machine != "" {
		out = append(out, machineSerialContains("claims.machine_id", c.Machine))
	}
	return out
}

// Preview is the anonymous serial search. An empty term matches nothing.
func Preview(serial string) scope {
	term := parse.Term(serial)
	if term == "" {
		return access.Nothing
	}
	return serialContains("machines.serial", term)
}

func appendTitle(out []scope, column, table, title string) []scope {
	if title == "" {
		return out
	}
	return append(out, func(db *gorm.DB) *gorm.DB {
		ids := db.Session(&gorm.Session{NewDB: true}).
			Table(table).
			Select("id").
			Where("title = ?", title)
		return db.Where(column+" IN (?)", ids)
	})
}

func serialContains(column, term string) scope {
	pattern := parse.ContainsPattern(term)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
	}
}

func machineSerialContains(column, term string) scope {
	pattern := parse.ContainsPattern(term)
	return func(db *gorm.DB) *gorm.DB {
		ids := db.Session(&gorm.Session{NewDB: true}).
			Table("machines").
			Select("id").
			Where("LOWER(serial) LIKE ? ESCAPE '\\'", pattern)
		return db.Where(column+" IN (?)", ids)
	}
}
