// Package testutil builds in-memory databases populated with a small,
// fixed set of parties and machines for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"silant-backend/internal/model"
)

// OpenDB returns a migrated in-memory SQLite database closed with the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Date parses a YYYY-MM-DD literal.
func Date(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Fixture is the seeded data set.
//
//	M-100     client C1, service company S1
//	ABC-200   client C2, service company S2
//	XABC-300  client C1, service company S2
type Fixture struct {
	Admin, ClientUser1, ClientUser2, CompanyUser1, CompanyUser2, Nobody, DualUser model.User

	C1, C2 model.Client
	S1, S2 model.ServiceCompany

	Equipment          model.Equipment
	Engine             model.Engine
	Transmission       model.Transmission
	DrivingAxle        model.DrivingAxle
	SteeringAxle       model.SteeringAxle
	MaintenanceType    model.MaintenanceType
	MaintenanceCompany model.MaintenanceCompany
	RefusalNode        model.RefusalNode
	RecoveryMethod     model.RecoveryMethod

	M100, ABC200, XABC300 model.Machine
}

// Seed populates db with the fixture.
func Seed(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	f := &Fixture{
		Admin:        model.User{Username: "admin", PasswordHash: "x", IsSuperuser: true, IsActive: true},
		ClientUser1:  model.User{Username: "client1", PasswordHash: "x", IsActive: true},
		ClientUser2:  model.User{Username: "client2", PasswordHash: "x", IsActive: true},
		CompanyUser1: model.User{Username: "company1", PasswordHash: "x", IsActive: true},
		CompanyUser2: model.User{Username: "company2", PasswordHash: "x", IsActive: true},
		Nobody:       model.User{Username: "nobody", PasswordHash: "x", IsActive: true},
		DualUser:     model.User{Username: "dual", PasswordHash: "x", IsActive: true},
	}
	for _, u := range []*model.User{&f.Admin, &f.ClientUser1, &f.ClientUser2, &f.CompanyUser1, &f.CompanyUser2, &f.Nobody, &f.DualUser} {
		require.NoError(t, db.Create(u).Error)
	}

	f.C1 = model.Client{Title: "C1", Description: "Client", UserID: f.ClientUser1.ID}
	f.C2 = model.Client{Title: "C2", Description: "Client", UserID: f.ClientUser2.ID}
	f.S1 = model.ServiceCompany{Title: "S1", Description: "Service company", UserID: f.CompanyUser1.ID}
	f.S2 = model.ServiceCompany{Title: "S2", Description: "Service company", UserID: f.CompanyUser2.ID}
	for _, v := range []any{&f.C1, &f.C2, &f.S1, &f.S2} {
		require.NoError(t, db.Omit(clause.Associations).Create(v).Error)
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&model.Client{Title: "Dual client", UserID: f.DualUser.ID}).Error)
	require.NoError(t, db.Omit(clause.Associations).Create(&model.ServiceCompany{Title: "Dual company", UserID: f.DualUser.ID}).Error)

	f.Equipment.Title = "PD-10"
	f.Engine.Title = "D-245"
	f.Transmission.Title = "10VB-0040"
	f.DrivingAxle.Title = "20VB-0022"
	f.SteeringAxle.Title = "VSM-001"
	f.MaintenanceType.Title = "TO-1"
	f.MaintenanceCompany.Title = "Self service"
	f.RefusalNode.Title = "Engine"
	f.RecoveryMethod.Title = "Part replacement"
	for _, v := range []any{&f.Equipment, &f.Engine, &f.Transmission, &f.DrivingAxle, &f.SteeringAxle,
		&f.MaintenanceType, &f.MaintenanceCompany, &f.RefusalNode, &f.RecoveryMethod} {
		require.NoError(t, db.Create(v).Error)
	}

	f.M100 = f.NewMachine("M-100", f.C1.ID, f.S1.ID, "2023-03-01")
	f.ABC200 = f.NewMachine("ABC-200", f.C2.ID, f.S2.ID, "2023-01-15")
	f.XABC300 = f.NewMachine("XABC-300", f.C1.ID, f.S2.ID, "2023-02-10")
	for _, m := range []*model.Machine{&f.M100, &f.ABC200, &f.XABC300} {
		require.NoError(t, db.Omit(clause.Associations).Create(m).Error)
	}
	return f
}

// NewMachine builds an unsaved machine using the fixture's reference rows.
func (f *Fixture) NewMachine(serial string, clientID, companyID int64, shipped string) model.Machine {
	return model.Machine{
		Serial:             serial,
		EquipmentID:        f.Equipment.ID,
		EngineID:           f.Engine.ID,
		EngineSerial:       "E-" + serial,
		TransmissionID:     f.Transmission.ID,
		TransmissionSerial: "T-" + serial,
		DrivingAxleID:      f.DrivingAxle.ID,
		DrivingAxleSerial:  "DA-" + serial,
		SteeringAxleID:     f.SteeringAxle.ID,
		SteeringAxleSerial: "SA-" + serial,
		SupplyContract:     "No. 1 of 2023-01-01",
		ShipmentDate:       Date(shipped),
		EndConsumer:        "Consumer",
		ShippingAddress:    "Address",
		Options:            "Standard",
		ClientID:           clientID,
		ServiceCompanyID:   companyID,
	}
}

// NewMaintenance builds an unsaved maintenance record for machine.
func (f *Fixture) NewMaintenance(machineID int64, day string) model.Maintenance {
	return model.Maintenance{
		MaintenanceTypeID:    f.MaintenanceType.ID,
		MaintenanceDate:      Date(day),
		OperatingTime:        100,
		OrderNumber:          "ORD-" + day,
		OrderDate:            Date(day),
		MaintenanceCompanyID: f.MaintenanceCompany.ID,
		MachineID:            machineID,
	}
}

// NewClaim builds an unsaved claim for machine.
func (f *Fixture) NewClaim(machineID int64, refusal, recovery string) model.Claim {
	return model.Claim{
		RefusalDate:        Date(refusal),
		OperatingTime:      250,
		RefusalNodeID:      f.RefusalNode.ID,
		RefusalDescription: "Does not start",
		RecoveryMethodID:   f.RecoveryMethod.ID,
		RepairParts:        "Starter",
		RecoveryDate:       Date(recovery),
		MachineID:          machineID,
	}
}
