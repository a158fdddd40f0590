// Package types defines the garage entity records (Client, Car, CarService),
// the value types they carry, the pagination and criteria vocabulary shared by
// the REST transport and the development server, and the standard errors.
//
// The Backend and Table interfaces describe the storage contract the
// development server is written against; entity state containers live in
// pkg/container and talk to the REST API through internal/rest.
package types
