package sqlite

import "github.com/braude/garage/pkg/types"

var carServicesDef = &entityDef{
	resource: types.TableCarServices,
	table:    "car_services",
	file:     "car_services.jsonl",
	fields: []field{
		{json: "id", column: "id", kind: kindInt},
		{json: "date", column: "date", kind: kindDate},
		{json: "description", column: "description"},
		{json: "totalCost", column: "total_cost", kind: kindMoney},
		{json: "carId", column: "car_id", kind: kindInt},
	},
	search:    []string{"description", "date"},
	parents:   map[string]string{"car_id": types.TableCars},
	newEntity: func() any { return &types.CarService{} },
	accepts: func(v any) bool {
		_, ok := v.(*types.CarService)
		return ok
	},
}
