// Package model defines the record types every data provider returns and the
// views consume: Model (a single record), Collection (an ordered list of
// records) and ModelID, the (provider, id) pair that crosses URL and
// clipboard boundaries as a single opaque token. Models never carry render
// annotations; views keep those in their own row context values.
package model
