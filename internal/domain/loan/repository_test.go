package loan

import (
	"context"
	"time"

	"credit-engine/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateLoan(ctx context.Context, newLoan *Loan) (*Loan, error) {
	ret := _m.Called(ctx, newLoan)

	var r0 *Loan
	if rf, ok := ret.Get(0).(func(context.Context, *Loan) *Loan); ok {
		r0 = rf(ctx, newLoan)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Loan)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *Loan) error); ok {
		r1 = rf(ctx, newLoan)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, loanID)

	var r0 *Loan
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Loan); ok {
		r0 = rf(ctx, loanID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Loan)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, loanID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) GetLoanWithCustomer(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error) {
	ret := _m.Called(ctx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}

	var r1 *customer.Customer
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(*customer.Customer)
	}

	return r0, r1, ret.Error(2)
}

func (_m *MockRepository) GetLoansByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*Loan, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*Loan
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []*Loan); ok {
		r0 = rf(ctx, customerID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Loan)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, customerID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindMaturedLoans(ctx context.Context, asOf time.Time) ([]int64, error) {
	ret := _m.Called(ctx, asOf)

	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateLoanStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status LoanStatus) error {
	ret := _m.Called(ctx, tx, loanID, status)
	return ret.Error(0)
}

func (_m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	ret := _m.Called(ctx)

	var r0 pgx.Tx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(pgx.Tx)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

func (_m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}
