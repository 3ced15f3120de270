package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Role{},
		&User{},
		&Category{},
		&Treatment{},
		&Product{},
		&Appointment{},
		&UserAppointment{},
		&Currency{},
		&Invoice{},
		&Cart{},
		&CartItem{},
		&OTPCode{},
		&ReminderLog{},
	}
}
