package model

// All returns every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Equipment{},
		&Engine{},
		&Transmission{},
		&DrivingAxle{},
		&SteeringAxle{},
		&MaintenanceCompany{},
		&MaintenanceType{},
		&RefusalNode{},
		&RecoveryMethod{},
		&Client{},
		&ServiceCompany{},
		&Machine{},
		&Maintenance{},
		&Claim{},
		&PushSubscription{},
	}
}
