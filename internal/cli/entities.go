package cli

import (
	"github.com/spf13/cobra"

	"github.com/braude/garage/pkg/container"
	"github.com/braude/garage/pkg/garage"
	"github.com/braude/garage/pkg/types"
)

func clientsCmd(a *app) *cobra.Command {
	ec := &entityCmd[types.Client]{
		a:      a,
		name:   types.TableClients,
		entity: "client",
		pick:   func(s *garage.Store) *container.Container[types.Client, int64] { return s.Clients },
		columns: []column[types.Client]{
			{"ID", func(c types.Client) string { return optInt64(c.ID) }},
			{"FIRST NAME", func(c types.Client) string { return c.FirstName }},
			{"LAST NAME", func(c types.Client) string { return c.LastName }},
			{"MAIL", func(c types.Client) string { return c.Mail }},
			{"PHONE", func(c types.Client) string { return c.PhoneNum }},
		},
	}
	return ec.command("Manage clients")
}

func carsCmd(a *app) *cobra.Command {
	ec := &entityCmd[types.Car]{
		a:      a,
		name:   types.TableCars,
		entity: "car",
		pick:   func(s *garage.Store) *container.Container[types.Car, int64] { return s.Cars },
		columns: []column[types.Car]{
			{"ID", func(c types.Car) string { return optInt64(c.ID) }},
			{"PLATE", func(c types.Car) string { return c.LicensePlate }},
			{"MAKE", func(c types.Car) string { return c.Make }},
			{"MODEL", func(c types.Car) string { return c.Model }},
			{"YEAR", func(c types.Car) string { return optInt(c.Year) }},
			{"CLIENT", func(c types.Car) string { return optInt64(c.ClientID) }},
		},
	}
	return ec.command("Manage cars")
}

func carServicesCmd(a *app) *cobra.Command {
	ec := &entityCmd[types.CarService]{
		a:      a,
		name:   types.TableCarServices,
		entity: "car service",
		pick:   func(s *garage.Store) *container.Container[types.CarService, int64] { return s.CarServices },
		columns: []column[types.CarService]{
			{"ID", func(s types.CarService) string { return optInt64(s.ID) }},
			{"DATE", func(s types.CarService) string { return optDate(s.Date) }},
			{"DESCRIPTION", func(s types.CarService) string { return s.Description }},
			{"TOTAL", func(s types.CarService) string { return optMoney(s.TotalCost) }},
			{"CAR", func(s types.CarService) string { return optInt64(s.CarID) }},
		},
	}
	return ec.command("Manage car service records")
}
