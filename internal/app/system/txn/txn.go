// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a multi-document transaction when the connected
// deployment supports one. Standalone servers do not support transactions;
// in that case fn runs once against the plain context, which degrades to
// the sequential per-document write protocol.
//
// fn must be written so that both modes are acceptable: inside a
// transaction a partial failure is rolled back, outside one it leaves
// whatever writes already succeeded (callers surface the error and
// reload state rather than attempting compensation).
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions not supported by deployment; using sequential writes")
		}
		return fn(ctx)
	}
	return err
}

// Error codes returned when transactions are attempted against a
// deployment that cannot run them (standalone server, old wire version).
const (
	codeIllegalOperation      = 20
	codeCommandNotSupported   = 51
	codeOperationNotSupported = 263
)

// IsNotSupported reports whether err indicates the deployment does not
// support sessions/transactions (as opposed to a transaction that failed
// for a transient or application reason).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if ce, ok := err.(mongo.CommandError); ok {
		switch ce.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupported:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set") {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "session") {
		return true
	}
	return false
}
