package classifier

import "github.com/dtnitsch/sweep-schedules/models"

// Valid reports whether a record carries an address. Records without one
// are kept, unaltered, in the invalid partition.
func Valid(rec models.Record) bool {
	return rec.Activity().Address != ""
}
