package types

// Standard resource names. Each name is both the REST path segment under
// /api and the table name passed to Backend.GetTable.
const (
	TableClients     = "clients"
	TableCars        = "cars"
	TableCarServices = "car-services"
)

// StandardTableNames lists all standard resource names for enumeration.
var StandardTableNames = []string{
	TableClients,
	TableCars,
	TableCarServices,
}

// Client is a customer of the garage. A client owns zero or more cars by
// back-reference (Car.ClientID).
type Client struct {
	ID        *int64 `json:"id,omitempty"` // Server-assigned; nil until persisted.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mail      string `json:"mail"`
	PhoneNum  string `json:"phoneNum"`
}

// Car is a vehicle registered to an optional client.
type Car struct {
	ID           *int64 `json:"id,omitempty"`
	LicensePlate string `json:"licensePlate"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         *int   `json:"year,omitempty"`
	ClientID     *int64 `json:"clientId,omitempty"` // Nullable reference to Client.
}

// CarService is a single service visit performed on a car.
type CarService struct {
	ID          *int64 `json:"id,omitempty"`
	Date        *Date  `json:"date,omitempty"`
	Description string `json:"description"`
	TotalCost   *Money `json:"totalCost,omitempty"`
	CarID       *int64 `json:"carId,omitempty"` // Nullable reference to Car.
}

// ClientID returns the identifier of c and whether it has been assigned.
func ClientID(c Client) (int64, bool) { return idOf(c.ID) }

// CarID returns the identifier of c and whether it has been assigned.
func CarID(c Car) (int64, bool) { return idOf(c.ID) }

// CarServiceID returns the identifier of s and whether it has been assigned.
func CarServiceID(s CarService) (int64, bool) { return idOf(s.ID) }

func idOf(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

// Int64 returns a pointer to v. Convenient for optional IDs and references.
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// EntityFields lists the JSON field names of each resource, in declaration
// order. They are the names accepted in criteria, sort orders and form edits.
var EntityFields = map[string][]string{
	TableClients:     {"id", "firstName", "lastName", "mail", "phoneNum"},
	TableCars:        {"id", "licensePlate", "make", "model", "year", "clientId"},
	TableCarServices: {"id", "date", "description", "totalCost", "carId"},
}

// EntityNames maps each resource to the singular name used in problem
// bodies and messages.
var EntityNames = map[string]string{
	TableClients:     "client",
	TableCars:        "car",
	TableCarServices: "carService",
}
