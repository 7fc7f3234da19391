package models

// Task represents a customer address record that still lacks a geographic location.
type Task struct {
	ID         int    // ID is the unique identifier of the address record.
	PostalCode string // PostalCode is the CEP entered by the customer.
}
