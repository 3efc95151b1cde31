package customer

import (
	"context"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID uuid.UUID) (*Customer, error)

	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)
}
