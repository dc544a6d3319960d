// internal/app/system/txn/txn_test.go
package txn

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"unrelated error", errors.New("connection refused"), false},
		{"transaction word alone", errors.New("transaction failed"), false},
		{"transaction numbers require replica set", errors.New("Transaction numbers are only allowed on a replica set member or mongos"), true},
		{"sessions not supported", errors.New("session operations are not supported by this server"), true},
		{"transaction in session state", errors.New("cannot start transaction in current session state"), true},
		{"command error illegal operation", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"command error command not supported", mongo.CommandError{Code: 51, Message: "command not supported"}, true},
		{"command error operation not supported", mongo.CommandError{Code: 263, Message: "operation not supported in transaction"}, true},
		{"command error other code", mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotSupported(tc.err); got != tc.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
