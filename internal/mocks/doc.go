// Package mocks provides testify mock implementations of the store interfaces
// and a transaction runner for service and handler tests.
//
// Store mocks return themselves from WithTx, so expectations set on a mock
// also cover calls made inside a transaction:
//
//	bookings := new(mocks.MockBookingStore)
//	bookings.On("FindActive", mock.Anything, userID, scheduleID).
//	    Return(nil, store.ErrBookingNotFound)
//
//	svc := service.NewBookingService(mocks.NewTxRunner(), ...)
package mocks
