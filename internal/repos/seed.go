package repos

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/jmoiron/sqlx"

	"autosalon/internal/domain"
)

const demoRows = 100

var (
	demoFuel         = []string{"Petrol", "Diesel", "Electric"}
	demoTransmission = []string{"Automatic", "Manual"}
	demoColor        = []string{"Red", "Blue", "Black", "White"}
	demoStatus       = []string{"Available", "Sold"}
)

// SeedResult reports how many rows SeedDemo inserted per table.
type SeedResult struct {
	Cars      int
	Customers int
}

// SeedDemo fills cars and customers with demo rows. A table that already has
// rows is left alone, so running it on every start is harmless.
func SeedDemo(ctx context.Context, db *sqlx.DB, rng *rand.Rand) (SeedResult, error) {
	var res SeedResult
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return res, storeErr("seed.begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	empty, err := tableEmpty(ctx, tx, "cars")
	if err != nil {
		return res, err
	}
	if empty {
		cars := demoCars(rng)
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO cars (name, price, description, image, year, mileage, fuel_type, transmission, color, status)
			VALUES (:name, :price, :description, :image, :year, :mileage, :fuel_type, :transmission, :color, :status)
		`, cars); err != nil {
			return SeedResult{}, storeErr("seed.cars", err)
		}
		res.Cars = len(cars)
	}

	empty, err = tableEmpty(ctx, tx, "customers")
	if err != nil {
		return SeedResult{}, err
	}
	if empty {
		customers := demoCustomers()
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO customers (first_name, last_name, email, phone, address, city, state, zip_code, country, avatar)
			VALUES (:first_name, :last_name, :email, :phone, :address, :city, :state, :zip_code, :country, :avatar)
		`, customers); err != nil {
			return SeedResult{}, storeErr("seed.customers", err)
		}
		res.Customers = len(customers)
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, storeErr("seed.commit", err)
	}
	return res, nil
}

func tableEmpty(ctx context.Context, tx *sqlx.Tx, table string) (bool, error) {
	var n int
	// table is one of two constants, never user input.
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table); err != nil {
		return false, storeErr("seed.count_"+table, err)
	}
	return n == 0, nil
}

func pick(rng *rand.Rand, from []string) string { return from[rng.IntN(len(from))] }

func demoCars(rng *rand.Rand) []domain.Car {
	out := make([]domain.Car, 0, demoRows)
	for i := 1; i <= demoRows; i++ {
		out = append(out, domain.Car{
			Name:         fmt.Sprintf("Car %d", i),
			Price:        domain.Ptr(float64(rng.IntN(100000) + 10000)),
			Description:  fmt.Sprintf("Description for Car %d", i),
			Image:        fmt.Sprintf("car%d.jpg", i),
			Year:         2010 + rng.IntN(10),
			Mileage:      domain.Ptr(rng.IntN(100000)),
			FuelType:     pick(rng, demoFuel),
			Transmission: pick(rng, demoTransmission),
			Color:        pick(rng, demoColor),
			Status:       pick(rng, demoStatus),
		})
	}
	return out
}

func demoCustomers() []domain.Customer {
	out := make([]domain.Customer, 0, demoRows)
	for i := 1; i <= demoRows; i++ {
		out = append(out, domain.Customer{
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
			Email:     fmt.Sprintf("email%d@example.com", i),
			Phone:     fmt.Sprintf("+123456789%d", i),
			Address:   fmt.Sprintf("Address %d", i),
			City:      fmt.Sprintf("City %d", i),
			State:     fmt.Sprintf("State %d", i),
			ZipCode:   fmt.Sprintf("Zip%d", i),
			Country:   fmt.Sprintf("Country %d", i),
			Avatar:    fmt.Sprintf("avatar%d.jpg", i),
		})
	}
	return out
}
