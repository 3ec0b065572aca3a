package entity

// Customer cliente registrado en MegaMart (GET /api/clientes).
// CustomerID es la cédula del cliente.
type Customer struct {
	CustomerID   string   `json:"customer_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	RegisteredAt FlexTime `json:"registered_at"`
}
