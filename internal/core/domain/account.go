package domain

import "time"

type Account struct {
	ID            string    `json:"_id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Name          string    `json:"name" db:"name"`
	WarehouseName string    `json:"warehouseName" db:"warehouse_name"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
