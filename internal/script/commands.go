package script

import "github.com/wardstockhq/wardstock-backend/pkg/enums"

// ProductPayload carries the catalog fields for add/update commands. Field
// names follow the command endpoint's contract.
type ProductPayload struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	Unit               string `json:"unit"`
	Quantity           int    `json:"quantity"`
	LowStockThreshold  int    `json:"lowStockThreshold"`
	Category           string `json:"category"`
	Returnable         bool   `json:"returnable"`
	RequireRoom        bool   `json:"requireRoom"`
	RequirePatientType bool   `json:"requirePatientType"`
}

// StockPayload carries a quantity movement against one product. Note holds
// free-form context such as the room or patient type for a withdrawal.
type StockPayload struct {
	ProductCode string `json:"productCode"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"note,omitempty"`
}

type productCommand struct {
	Action   enums.CommandAction `json:"action"`
	UserName string              `json:"userName"`
	ProductPayload
}

type stockCommand struct {
	Action   enums.CommandAction `json:"action"`
	UserName string              `json:"userName"`
	StockPayload
}

type deleteCommand struct {
	Action      enums.CommandAction `json:"action"`
	UserName    string              `json:"userName"`
	ProductCode string              `json:"productCode"`
}
