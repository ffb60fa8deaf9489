package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"autosalon/internal/domain"
)

const customerColumns = `id, first_name, last_name, email, phone, address, city, state, zip_code, country, avatar`

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	out := []domain.Customer{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+customerColumns+` FROM customers ORDER BY id`); err != nil {
		return nil, storeErr("customers.list", err)
	}
	return out, nil
}

func (r *CustomerRepo) Get(ctx context.Context, id int64) (domain.Customer, error) {
	var c domain.Customer
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+customerColumns+` FROM customers WHERE id = ?`), id)
	if err != nil {
		return domain.Customer{}, storeErr("customers.get", err)
	}
	return c, nil
}

func (r *CustomerRepo) Create(ctx context.Context, c domain.Customer) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO customers (first_name, last_name, email, phone, address, city, state, zip_code, country, avatar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.Country, c.Avatar).Scan(&id)
	if err != nil {
		return 0, storeErr("customers.create", err)
	}
	return id, nil
}

func (r *CustomerRepo) Update(ctx context.Context, id int64, c domain.Customer) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE customers
		SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?,
		    city = ?, state = ?, zip_code = ?, country = ?, avatar = ?
		WHERE id = ?
	`), c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.Country, c.Avatar, id)
	if err != nil {
		return storeErr("customers.update", err)
	}
	return rowsAffected("customers.update", res)
}

func (r *CustomerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM customers WHERE id = ?`), id)
	if err != nil {
		return storeErr("customers.delete", err)
	}
	return rowsAffected("customers.delete", res)
}

