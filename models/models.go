package models

// All lists every table migrated at startup.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&LoginToken{},
		&Category{},
		&MenuItem{},
		&CartLine{},
		&Order{},
		&OrderItem{},
	}
}
