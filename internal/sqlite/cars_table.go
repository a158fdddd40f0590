package sqlite

import "github.com/braude/garage/pkg/types"

var carsDef = &entityDef{
	resource: types.TableCars,
	table:    "cars",
	file:     "cars.jsonl",
	fields: []field{
		{json: "id", column: "id", kind: kindInt},
		{json: "licensePlate", column: "license_plate"},
		{json: "make", column: "make"},
		{json: "model", column: "model"},
		{json: "year", column: "year", kind: kindInt},
		{json: "clientId", column: "client_id", kind: kindInt},
	},
	search:    []string{"license_plate", "make", "model"},
	parents:   map[string]string{"client_id": types.TableClients},
	children:  []childRef{{resource: types.TableCarServices, column: "car_id"}},
	newEntity: func() any { return &types.Car{} },
	accepts: func(v any) bool {
		_, ok := v.(*types.Car)
		return ok
	},
}
