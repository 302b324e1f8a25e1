// Package schedule publishes scheduled posts once they fall due.
//
// Worker polls the store for pending posts whose scheduled time has passed,
// hands each to a Publisher and records the outcome as published or failed.
// Delivery to real networks sits behind the Publisher interface; LogPublisher
// is the default.
package schedule
