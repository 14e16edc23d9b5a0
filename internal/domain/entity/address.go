package entity

// Address dirección postal (particular, fiscal o de obra).
type Address struct {
	Street   string `json:"street"`
	Number   *int   `json:"number"`
	Postal   *int   `json:"postal"`
	City     string `json:"city"`
	Province string `json:"province"`
}
