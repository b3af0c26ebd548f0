package form

import (
	"context"
	"strings"

	"silant-backend/internal/model"
)

// MachineInput is the body of machine create and update requests.
type MachineInput struct {
	Serial             string `json:"serial" binding:"required,max=255"`
	Equipment          int64  `json:"equipment" binding:"required,gt=0"`
	Engine             int64  `json:"engine" binding:"required,gt=0"`
	EngineSerial       string `json:"engine_serial" binding:"required,max=255"`
	Transmission       int64  `json:"transmission" binding:"required,gt=0"`
	TransmissionSerial string `json:"transmission_serial" binding:"required,max=255"`
	DrivingAxle        int64  `json:"driving_axle" binding:"required,gt=0"`
	DrivingAxleSerial  string `json:"driving_axle_serial" binding:"required,max=255"`
	SteeringAxle       int64  `json:"steering_axle" binding:"required,gt=0"`
	SteeringAxleSerial string `json:"steering_axle_serial" binding:"required,max=255"`
	SupplyContract     string `json:"supply_contract" binding:"required,max=255"`
	ShipmentDate       string `json:"shipment_date" binding:"required"`
	EndConsumer        string `json:"end_consumer" binding:"required,max=255"`
	ShippingAddress    string `json:"shipping_address" binding:"required,max=255"`
	Options            string `json:"options" binding:"max=1000"`
	Client             int64  `json:"client" binding:"required,gt=0"`
	ServiceCompany     int64  `json:"service_company" binding:"required,gt=0"`
}

// Validate checks references and dates and builds the machine to save.
func (in MachineInput) Validate(ctx context.Context, lookup Lookup, fc Context) (model.Machine, error) {
	c := &checker{ctx: ctx, lookup: lookup}

	shipped := c.date("shipment_date", in.ShipmentDate)
	c.exists("equipment", "equipment", in.Equipment)
	c.exists("engine", "engines", in.Engine)
	c.exists("transmission", "transmissions", in.Transmission)
	c.exists("driving_axle", "driving_axles", in.DrivingAxle)
	c.exists("steering_axle", "steering_axles", in.SteeringAxle)
	c.exists("client", "clients", in.Client)
	c.exists("service_company", "service_companies", in.ServiceCompany)
	if err := c.result(); err != nil {
		return model.Machine{}, err
	}

	options := strings.TrimSpace(in.Options)
	if options == "" {
		options = "Standard"
	}
	return model.Machine{
		Serial:             strings.TrimSpace(in.Serial),
		EquipmentID:        in.Equipment,
		EngineID:           in.Engine,
		EngineSerial:       in.EngineSerial,
		TransmissionID:     in.Transmission,
		TransmissionSerial: in.TransmissionSerial,
		DrivingAxleID:      in.DrivingAxle,
		DrivingAxleSerial:  in.DrivingAxleSerial,
		SteeringAxleID:     in.SteeringAxle,
		SteeringAxleSerial: in.SteeringAxleSerial,
		SupplyContract:     in.SupplyContract,
		ShipmentDate:       shipped,
		EndConsumer:        in.EndConsumer,
		ShippingAddress:    in.ShippingAddress,
		Options:            options,
		ClientID:           in.Client,
		ServiceCompanyID:   in.ServiceCompany,
	}, nil
}

// MaintenanceInput is the body of maintenance create and update requests.
// The service company is never accepted from the caller.
type MaintenanceInput struct {
	Machine            int64  `json:"machine" binding:"required,gt=0"`
	Type               int64  `json:"type" binding:"required,gt=0"`
	MaintenanceDate    string `json:"maintenance_date" binding:"required"`
	OperatingTime      *int   `json:"operating_time" binding:"required"`
	OrderNumber        string `json:"order_number" binding:"required,max=255"`
	OrderDate          string `json:"order_date" binding:"required"`
	MaintenanceCompany int64  `json:"maintenance_company" binding:"required,gt=0"`
}

// Validate checks the record and restricts the machine to fc's choices.
func (in MaintenanceInput) Validate(ctx context.Context, lookup Lookup, fc Context) (model.Maintenance, error) {
	c := &checker{ctx: ctx, lookup: lookup}

	performed := c.date("maintenance_date", in.MaintenanceDate)
	ordered := c.date("order_date", in.OrderDate)
	hours := c.nonNegative("operating_time", in.OperatingTime)
	c.machine("machine", fc, in.Machine)
	c.exists("type", "maintenance_types", in.Type)
	c.exists("maintenance_company", "maintenance_companies", in.MaintenanceCompany)
	if err := c.result(); err != nil {
		return model.Maintenance{}, err
	}

	return model.Maintenance{
		MaintenanceTypeID:    in.Type,
		MaintenanceDate:      performed,
		OperatingTime:        hours,
		OrderNumber:          in.OrderNumber,
		OrderDate:            ordered,
		MaintenanceCompanyID: in.MaintenanceCompany,
		MachineID:            in.Machine,
	}, nil
}

// ClaimInput is the body of claim create and update requests. Downtime and
// the service company are derived on save.
type ClaimInput struct {
	Machine            int64  `json:"machine" binding:"required,gt=0"`
	RefusalDate        string `json:"refusal_date" binding:"required"`
	OperatingTime      *int   `json:"operating_time" binding:"required"`
	RefusalNode        int64  `json:"refusal_node" binding:"required,gt=0"`
	RefusalDescription string `json:"refusal_description" binding:"required,max=1000"`
	RecoveryMethod     int64  `json:"recovery_method" binding:"required,gt=0"`
	RepairParts        string `json:"repair_parts" binding:"max=1000"`
	RecoveryDate       string `json:"recovery_date" binding:"required"`
}

// Validate checks the record and restricts the machine to fc's choices.
func (in ClaimInput) Validate(ctx context.Context, lookup Lookup, fc Context) (model.Claim, error) {
	c := &checker{ctx: ctx, lookup: lookup}

	refused := c.date("refusal_date", in.RefusalDate)
	recovered := c.date("recovery_date", in.RecoveryDate)
	if !refused.IsZero() && !recovered.IsZero() && recovered.Before(refused) {
		c.errs.Add("recovery_date", msgDateOrder)
	}
	hours := c.nonNegative("operating_time", in.OperatingTime)
	c.machine("machine", fc, in.Machine)
	c.exists("refusal_node", "refusal_nodes", in.RefusalNode)
	c.exists("recovery_method", "recovery_methods", in.RecoveryMethod)
	if err := c.result(); err != nil {
		return model.Claim{}, err
	}

	return model.Claim{
		RefusalDate:        refused,
		OperatingTime:      hours,
		RefusalNodeID:      in.RefusalNode,
		RefusalDescription: in.RefusalDescription,
		RecoveryMethodID:   in.RecoveryMethod,
		RepairParts:        in.RepairParts,
		RecoveryDate:       recovered,
		MachineID:          in.Machine,
	}, nil
}
