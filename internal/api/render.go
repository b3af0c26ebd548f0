package api

import (
	"time"

	"silant-backend/internal/model"
)

// titled is a foreign key rendered with its display title.
type titled struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type machineRef struct {
	ID     int64  `json:"id"`
	Serial string `json:"serial"`
}

type machineResponse struct {
	ID                 int64  `json:"id"`
	Serial             string `json:"serial"`
	Equipment          titled `json:"equipment"`
	Engine             titled `json:"engine"`
	EngineSerial       string `json:"engine_serial"`
	Transmission       titled `json:"transmission"`
	TransmissionSerial string `json:"transmission_serial"`
	DrivingAxle        titled `json:"driving_axle"`
	DrivingAxleSerial  string `json:"driving_axle_serial"`
	SteeringAxle       titled `json:"steering_axle"`
	SteeringAxleSerial string `json:"steering_axle_serial"`
	SupplyContract     string `json:"supply_contract"`
	ShipmentDate       string `json:"shipment_date"`
	EndConsumer        string `json:"end_consumer"`
	ShippingAddress    string `json:"shipping_address"`
	Options            string `json:"options"`
	Client             titled `json:"client"`
	ServiceCompany     titled `json:"service_company"`
}

// machinePreview is what anonymous callers see: the unit composition only.
type machinePreview struct {
	ID                 int64  `json:"id"`
	Serial             string `json:"serial"`
	Equipment          titled `json:"equipment"`
	Engine             titled `json:"engine"`
	EngineSerial       string `json:"engine_serial"`
	Transmission       titled `json:"transmission"`
	TransmissionSerial string `json:"transmission_serial"`
	DrivingAxle        titled `json:"driving_axle"`
	DrivingAxleSerial  string `json:"driving_axle_serial"`
	SteeringAxle       titled `json:"steering_axle"`
	SteeringAxleSerial string `json:"steering_axle_serial"`
}

type maintenanceResponse struct {
	ID                 int64      `json:"id"`
	Machine            machineRef `json:"machine"`
	Type               titled     `json:"type"`
	MaintenanceDate    string     `json:"maintenance_date"`
	OperatingTime      int        `json:"operating_time"`
	OrderNumber        string     `json:"order_number"`
	OrderDate          string     `json:"order_date"`
	MaintenanceCompany titled     `json:"maintenance_company"`
	ServiceCompany     titled     `json:"service_company"`
}

type claimResponse struct {
	ID                 int64      `json:"id"`
	Machine            machineRef `json:"machine"`
	RefusalDate        string     `json:"refusal_date"`
	OperatingTime      int        `json:"operating_time"`
	RefusalNode        titled     `json:"refusal_node"`
	RefusalDescription string     `json:"refusal_description"`
	RecoveryMethod     titled     `json:"recovery_method"`
	RepairParts        string     `json:"repair_parts"`
	RecoveryDate       string     `json:"recovery_date"`
	Downtime           int        `json:"downtime"`
	ServiceCompany     titled     `json:"service_company"`
}

func date(t time.Time) string {
	return t.Format(model.DateLayout)
}

func ref(id int64, r model.Reference) titled {
	return titled{ID: id, Title: r.Title}
}

func renderMachine(m model.Machine) machineResponse {
	return machineResponse{
		ID:                 m.ID,
		Serial:             m.Serial,
		Equipment:          ref(m.EquipmentID, m.Equipment.Reference),
		Engine:             ref(m.EngineID, m.Engine.Reference),
		EngineSerial:       m.EngineSerial,
		Transmission:       ref(m.TransmissionID, m.Transmission.Reference),
		TransmissionSerial: m.TransmissionSerial,
		DrivingAxle:        ref(m.DrivingAxleID, m.DrivingAxle.Reference),
		DrivingAxleSerial:  m.DrivingAxleSerial,
		SteeringAxle:       ref(m.SteeringAxleID, m.SteeringAxle.Reference),
		SteeringAxleSerial: m.SteeringAxleSerial,
		SupplyContract:     m.SupplyContract,
		ShipmentDate:       date(m.ShipmentDate),
		EndConsumer:        m.EndConsumer,
		ShippingAddress:    m.ShippingAddress,
		Options:            m.Options,
		Client:             titled{ID: m.ClientID, Title: m.Client.Title},
		ServiceCompany:     titled{ID: m.ServiceCompanyID, Title: m.ServiceCompany.Title},
	}
}

func renderMachinePreview(m model.Machine) machinePreview {
	return machinePreview{
		ID:                 m.ID,
		Serial:             m.Serial,
		Equipment:          ref(m.EquipmentID, m.Equipment.Reference),
		Engine:             ref(m.EngineID, m.Engine.Reference),
		EngineSerial:       m.EngineSerial,
		Transmission:       ref(m.TransmissionID, m.Transmission.Reference),
		TransmissionSerial: m.TransmissionSerial,
		DrivingAxle:        ref(m.DrivingAxleID, m.DrivingAxle.Reference),
		DrivingAxleSerial:  m.DrivingAxleSerial,
		SteeringAxle:       ref(m.SteeringAxleID, m.SteeringAxle.Reference),
		SteeringAxleSerial: m.SteeringAxleSerial,
	}
}

func renderMaintenance(m model.Maintenance) maintenanceResponse {
	return maintenanceResponse{
		ID:                 m.ID,
		Machine:            machineRef{ID: m.MachineID, Serial: m.Machine.Serial},
		Type:               ref(m.MaintenanceTypeID, m.MaintenanceType.Reference),
		MaintenanceDate:    date(m.MaintenanceDate),
		OperatingTime:      m.OperatingTime,
		OrderNumber:        m.OrderNumber,
		OrderDate:          date(m.OrderDate),
		MaintenanceCompany: ref(m.MaintenanceCompanyID, m.MaintenanceCompany.Reference),
		ServiceCompany:     titled{ID: m.ServiceCompanyID, Title: m.ServiceCompany.Title},
	}
}

func renderClaim(c model.Claim) claimResponse {
	return claimResponse{
		ID:                 c.ID,
		Machine:            machineRef{ID: c.MachineID, Serial: c.Machine.Serial},
		RefusalDate:        date(c.RefusalDate),
		OperatingTime:      c.OperatingTime,
		RefusalNode:        ref(c.RefusalNodeID, c.RefusalNode.Reference),
		RefusalDescription: c.RefusalDescription,
		RecoveryMethod:     ref(c.RecoveryMethodID, c.RecoveryMethod.Reference),
		RepairParts:        c.RepairParts,
		RecoveryDate:       date(c.RecoveryDate),
		Downtime:           c.Downtime,
		ServiceCompany:     titled{ID: c.ServiceCompanyID, Title: c.ServiceCompany.Title},
	}
}
