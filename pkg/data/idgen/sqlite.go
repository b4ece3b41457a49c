package idgen

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterSQLiteUUID adds a UUID() scalar function to the modernc sqlite
// driver so the Database generator and DDL defaults work on sqlite as they do
// on MySQL. Safe to call more than once.
func RegisterSQLiteUUID() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterScalarFunction("UUID", 0, func(_ *sqlite.FunctionContext, _ []driver.Value) (driver.Value, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return nil, err
			}
			return id.String(), nil
		})
		if registerErr != nil {
			registerErr = fmt.Errorf("idgen: register sqlite UUID(): %w", registerErr)
		}
	})
	return registerErr
}
