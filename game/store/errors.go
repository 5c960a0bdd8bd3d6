// game/store/errors.go
package store

import "fmt"

// ErrNotFound is returned by lookups when no document matches. Stores map
// mongo.ErrNoDocuments to this so the service layer never depends on driver
// error types.
var ErrNotFound = fmt.Errorf("document not found")
