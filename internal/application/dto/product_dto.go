package dto

// ProductResponse produto consultado na Sankhya (proxy de leitura).
type ProductResponse struct {
	Code              string `json:"code"`
	Description       string `json:"description"`
	Brand             string `json:"brand,omitempty"`
	SupplierReference string `json:"supplier_reference,omitempty"`
	Location          string `json:"location,omitempty"`
	BasePrice         string `json:"base_price,omitempty"`
	Stock             string `json:"stock,omitempty"`
	Unit              string `json:"unit,omitempty"`
}
