package access

import "gorm.io/gorm"

// Nothing narrows any query to the empty set.
func Nothing(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// Machines narrows a machines query to the rows p may see.
func Machines(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch p.Role {
		case RoleAdmin:
			return db
		case RoleClient:
			return db.Where("machines.client_id = ?", p.PartyID)
		case RoleServiceCompany:
			return db.Where("machines.service_company_id = ?", p.PartyID)
		default:
			return Nothing(db)
		}
	}
}

// Maintenance narrows a maintenance query to the rows p may see. Clients see
// records of their machines; service companies see records stamped with
// their company at save time.
func Maintenance(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch p.Role {
		case RoleAdmin:
			return db
		case RoleClient:
			return db.Where("maintenance.machine_id IN (?)", ownedMachineIDs(db, p.PartyID))
		case RoleServiceCompany:
			return db.Where("maintenance.service_company_id = ?", p.PartyID)
		default:
			return Nothing(db)
		}
	}
}

// Claims narrows a claims query to the rows p may see, following the same
// rules as Maintenance.
func Claims(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch p.Role {
		case RoleAdmin:
			return db
		case RoleClient:
			return db.Where("claims.machine_id IN (?)", ownedMachineIDs(db, p.PartyID))
		case RoleServiceCompany:
			return db.Where("claims.service_company_id = ?", p.PartyID)
		default:
			return Nothing(db)
		}
	}
}

func ownedMachineIDs(db *gorm.DB, clientID int64) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("machines").
		Select("id").
		Where("client_id = ?", clientID)
}
