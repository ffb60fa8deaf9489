package services

import (
	"context"

	"autosalon/internal/domain"
	"autosalon/internal/validate"
)

// RecordStore is the persistence contract shared by the car and customer
// repositories.
type RecordStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, rec T) (int64, error)
	Update(ctx context.Context, id int64, rec T) error
	Delete(ctx context.Context, id int64) error
}

// RecordService checks required fields before handing records to the store.
type RecordService[T any] struct {
	Store RecordStore[T]
}

type (
	CarService      = RecordService[domain.Car]
	CustomerService = RecordService[domain.Customer]
)

func NewCarService(store RecordStore[domain.Car]) *CarService {
	return &CarService{Store: store}
}

func NewCustomerService(store RecordStore[domain.Customer]) *CustomerService {
	return &CustomerService{Store: store}
}

func (s *RecordService[T]) List(ctx context.Context) ([]T, error) { return s.Store.List(ctx) }

func (s *RecordService[T]) Get(ctx context.Context, id int64) (T, error) {
	return s.Store.Get(ctx, id)
}

func (s *RecordService[T]) Create(ctx context.Context, rec T) (int64, error) {
	if err := validate.Struct(rec); err != nil {
		return 0, err
	}
	return s.Store.Create(ctx, rec)
}

func (s *RecordService[T]) Update(ctx context.Context, id int64, rec T) error {
	if err := validate.Struct(rec); err != nil {
		return err
	}
	return s.Store.Update(ctx, id, rec)
}

func (s *RecordService[T]) Delete(ctx context.Context, id int64) error {
	return s.Store.Delete(ctx, id)
}
