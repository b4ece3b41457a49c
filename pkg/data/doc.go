// Package data defines the data provider contract the views query and the
// Config value used to express id lookups, filters, sorting and paging.
// Concrete providers live in the memory and sqlprovider sub-packages.
package data
