package domain

// Car is an inventory record. Price and Mileage are pointers so that an
// absent key is distinguishable from a zero value.
type Car struct {
	ID           int64    `db:"id" json:"id"`
	Name         string   `db:"name" json:"name" validate:"required"`
	Price        *float64 `db:"price" json:"price" validate:"required"`
	Description  string   `db:"description" json:"description" validate:"required"`
	Image        string   `db:"image" json:"image" validate:"required"`
	Year         int      `db:"year" json:"year" validate:"required"`
	Mileage      *int     `db:"mileage" json:"mileage" validate:"required"`
	FuelType     string   `db:"fuel_type" json:"fuelType" validate:"required"`
	Transmission string   `db:"transmission" json:"transmission" validate:"required"`
	Color        string   `db:"color" json:"color" validate:"required"`
	Status       string   `db:"status" json:"status" validate:"required"`
}

type Customer struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName" validate:"required"`
	LastName  string `db:"last_name" json:"lastName" validate:"required"`
	Email     string `db:"email" json:"email" validate:"required"`
	Phone     string `db:"phone" json:"phone" validate:"required"`
	Address   string `db:"address" json:"address" validate:"required"`
	City      string `db:"city" json:"city" validate:"required"`
	State     string `db:"state" json:"state" validate:"required"`
	ZipCode   string `db:"zip_code" json:"zipCode" validate:"required"`
	Country   string `db:"country" json:"country" validate:"required"`
	Avatar    string `db:"avatar" json:"avatar" validate:"required"`
}
