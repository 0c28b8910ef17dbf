package models

// ModelTypeRegistry lists every persisted model by name.
var ModelTypeRegistry = map[string]interface{}{
	"Room":               Room{},
	"Tenant":             Tenant{},
	"Bill":               Bill{},
	"Payment":            Payment{},
	"ElectricityReading": ElectricityReading{},
}

// All returns pointers to every model in dependency order (referenced tables first).
func All() []interface{} {
	return []interface{}{
		&Room{},
		&Tenant{},
		&Bill{},
		&Payment{},
		&ElectricityReading{},
	}
}

// Registry serves ModelTypeRegistry to schema tooling.
type Registry struct{}

func (Registry) GetModels() map[string]interface{} {
	return ModelTypeRegistry
}
