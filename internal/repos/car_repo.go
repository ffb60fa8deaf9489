package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"autosalon/internal/domain"
)

const carColumns = `id, name, price, description, image, year, mileage, fuel_type, transmission, color, status`

type CarRepo struct{ db *sqlx.DB }

func NewCarRepo(db *sqlx.DB) *CarRepo { return &CarRepo{db: db} }

func (r *CarRepo) List(ctx context.Context) ([]domain.Car, error) {
	out := []domain.Car{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+carColumns+` FROM cars ORDER BY id`); err != nil {
		return nil, storeErr("cars.list", err)
	}
	return out, nil
}

func (r *CarRepo) Get(ctx context.Context, id int64) (domain.Car, error) {
	var c domain.Car
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+carColumns+` FROM cars WHERE id = ?`), id)
	if err != nil {
		return domain.Car{}, storeErr("cars.get", err)
	}
	return c, nil
}

func (r *CarRepo) Create(ctx context.Context, c domain.Car) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO cars (name, price, description, image, year, mileage, fuel_type, transmission, color, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), c.Name, c.Price, c.Description, c.Image, c.Year, c.Mileage, c.FuelType, c.Transmission, c.Color, c.Status).Scan(&id)
	if err != nil {
		return 0, storeErr("cars.create", err)
	}
	return id, nil
}

// Update replaces every field of car id. domain.ErrNotFound if no such row.
func (r *CarRepo) Update(ctx context.Context, id int64, c domain.Car) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE cars
		SET name = ?, price = ?, description = ?, image = ?, year = ?, mileage = ?,
		    fuel_type = ?, transmission = ?, color = ?, status = ?
		WHERE id = ?
	`), c.Name, c.Price, c.Description, c.Image, c.Year, c.Mileage, c.FuelType, c.Transmission, c.Color, c.Status, id)
	if err != nil {
		return storeErr("cars.update", err)
	}
	return rowsAffected("cars.update", res)
}

func (r *CarRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cars WHERE id = ?`), id)
	if err != nil {
		return storeErr("cars.delete", err)
	}
	return rowsAffected("cars.delete", res)
}

