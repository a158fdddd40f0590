package sqlite

import (
	"fmt"
	"time"

	"github.com/braude/garage/pkg/types"
)

// demoClient is one seeded client with its cars and their services.
type demoClient struct {
	client types.Client
	cars   []demoCar
}

type demoCar struct {
	car      types.Car
	services []types.CarService
}

var demoData = []demoClient{
	{
		client: types.Client{FirstName: "Ana", LastName: "Kovač", Mail: "ana.kovac@example.com", PhoneNum: "+385 91 555 0101"},
		cars: []demoCar{
			{
				car: types.Car{LicensePlate: "ZG-1234-AB", Make: "Škoda", Model: "Octavia", Year: types.Int(2017)},
				services: []types.CarService{
					{Date: datePtr(2024, time.March, 5), Description: "Oil and filter change", TotalCost: types.MustMoney("89.90")},
					{Date: datePtr(2024, time.September, 18), Description: "Front brake pads", TotalCost: types.MustMoney("164.50")},
				},
			},
		},
	},
	{
		client: types.Client{FirstName: "Marko", LastName: "Horvat", Mail: "marko.horvat@example.com", PhoneNum: "+385 98 555 0202"},
		cars: []demoCar{
			{
				car: types.Car{LicensePlate: "ST-778-KL", Make: "Volkswagen", Model: "Golf", Year: types.Int(2012)},
				services: []types.CarService{
					{Date: datePtr(2023, time.November, 2), Description: "Timing belt replacement", TotalCost: types.MustMoney("420.00")},
				},
			},
			{car: types.Car{LicensePlate: "ST-902-MM", Make: "Fiat", Model: "Panda", Year: types.Int(2009)}},
		},
	},
	{
		client: types.Client{FirstName: "Ivana", LastName: "Babić", Mail: "ivana.babic@example.com"},
	},
}

func datePtr(y int, m time.Month, d int) *types.Date {
	date := types.NewDate(y, m, d)
	return &date
}

// Seed fills an empty backend with demo clients, cars and services. It
// reports whether anything was written; a backend that already holds
// clients is left untouched.
func Seed(b types.Backend) (bool, error) {
	clients, err := b.GetTable(types.TableClients)
	if err != nil {
		return false, err
	}
	cars, err := b.GetTable(types.TableCars)
	if err != nil {
		return false, err
	}
	services, err := b.GetTable(types.TableCarServices)
	if err != nil {
		return false, err
	}

	n, err := clients.Count(types.Query{})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for _, dc := range demoData {
		c := dc.client
		clientID, err := clients.Set(0, &c)
		if err != nil {
			return false, fmt.Errorf("seed client %s: %w", c.LastName, err)
		}
		for _, dcar := range dc.cars {
			car := dcar.car
			car.ClientID = types.Int64(clientID)
			carID, err := cars.Set(0, &car)
			if err != nil {
				return false, fmt.Errorf("seed car %s: %w", car.LicensePlate, err)
			}
			for _, s := range dcar.services {
				s.CarID = types.Int64(carID)
				if _, err := services.Set(0, &s); err != nil {
					return false, fmt.Errorf("seed service %q: %w", s.Description, err)
				}
			}
		}
	}
	return true, nil
}
