package domain

import "time"

// DriverLocation is the current position of the driver carrying an
// order. One logical record per in-flight order; each new observation
// supersedes the previous one wholesale. ObservedAt is the ordering
// signal for last-writer-wins merging.
type DriverLocation struct {
	OrderID    string    `json:"orderId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DriverName string    `json:"driverName"`
	ObservedAt time.Time `json:"observedAt"`
}
