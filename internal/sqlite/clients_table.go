package sqlite

import "github.com/braude/garage/pkg/types"

var clientsDef = &entityDef{
	resource: types.TableClients,
	table:    "clients",
	file:     "clients.jsonl",
	fields: []field{
		{json: "id", column: "id", kind: kindInt},
		{json: "firstName", column: "first_name"},
		{json: "lastName", column: "last_name"},
		{json: "mail", column: "mail"},
		{json: "phoneNum", column: "phone_num"},
	},
	search:    []string{"first_name", "last_name", "mail", "phone_num"},
	children:  []childRef{{resource: types.TableCars, column: "client_id"}},
	newEntity: func() any { return &types.Client{} },
	accepts: func(v any) bool {
		_, ok := v.(*types.Client)
		return ok
	},
}
