package models

// The JSON keys below are the contract the dealer directory client was built
// against, so they deliberately keep the legacy column-style casing.

// DealerSummary is one row of the dealer list
type DealerSummary struct {
	DealerNumber   string `json:"DealerNumber" db:"dealer_number"`
	DealershipName string `json:"DealershipName" db:"dealership_name"`
	DBA            string `json:"DBA" db:"dba"`
	SalesmanCode   string `json:"SalesmanCode" db:"salesman_code"`
}

// Address is the single mailing/street address of a dealer
type Address struct {
	StreetAddress string `json:"StreetAddress" db:"street_address"`
	BoxNumber     string `json:"BoxNumber" db:"box_number"`
	City          string `json:"City" db:"city"`
	State         string `json:"State" db:"state"`
	ZipCode       string `json:"ZipCode" db:"zip_code"`
	County        string `json:"County" db:"county"`
}

// Contact holds the main phone, fax and email of a dealer
type Contact struct {
	MainPhone string `json:"MainPhone" db:"main_phone"`
	FaxNumber string `json:"FaxNumber" db:"fax_number"`
	MainEmail string `json:"MainEmail" db:"main_email"`
}

// ProductLine is a manufacturer line carried by a dealer
type ProductLine struct {
	LineName      string `json:"LineName" db:"line_name" validate:"required"`
	AccountNumber string `json:"AccountNumber" db:"account_number"`
}

// Salesman is an entry of the salesman lookup table
type Salesman struct {
	SalesmanCode string `json:"SalesmanCode" db:"salesman_code"`
	SalesmanName string `json:"SalesmanName" db:"salesman_name"`
}

// DealerDetail is the fully assembled dealer record. Address, Contact and
// Salesman are values, never pointers, so every key is always present.
// Only structural rules are validated: anything the spreadsheet import can
// store must be accepted back by an update.
type DealerDetail struct {
	DealerNumber   string        `json:"DealerNumber"`
	DealershipName string        `json:"DealershipName"`
	DBA            string        `json:"DBA"`
	SalesmanCode   string        `json:"SalesmanCode"`
	Address        Address       `json:"address"`
	Contact        Contact       `json:"contact"`
	Lines          []ProductLine `json:"lines" validate:"dive"`
	Salesman       Salesman      `json:"salesman"`
}

// DealerLocation is a dealer joined with its address for the map view
type DealerLocation struct {
	DealerNumber   string `json:"DealerNumber" db:"dealer_number"`
	DealershipName string `json:"DealershipName" db:"dealership_name"`
	DBA            string `json:"DBA" db:"dba"`
	StreetAddress  string `json:"StreetAddress" db:"street_address"`
	City           string `json:"City" db:"city"`
	State          string `json:"State" db:"state"`
	ZipCode        string `json:"ZipCode" db:"zip_code"`
	County         string `json:"County" db:"county"`
}

// DealerListFilter narrows the dealer list. Zero value returns everything.
type DealerListFilter struct {
	Query        string `query:"q"`
	SalesmanCode string `query:"salesman"`
}
