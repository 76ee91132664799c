package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SupplierPart is one row returned by the external parts-supplier lookup
type SupplierPart struct {
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Article  string          `json:"article"`
	Price    decimal.Decimal `json:"price"`
	InStock  bool            `json:"in_stock"`
	Supplier string          `json:"supplier"`
}

// SupplierInterface is the external parts-supplier lookup. The real
// integration is not wired yet; StubSupplierService stands in for it.
type SupplierInterface interface {
	SearchByVIN(vin string) ([]SupplierPart, error)
}

var supplierServiceInstance SupplierInterface

// InitSupplierService initializes the supplier lookup with the stub backend
func InitSupplierService() SupplierInterface {
	supplierServiceInstance = &StubSupplierService{}
	return supplierServiceInstance
}

// GetSupplierService returns the initialized supplier service instance
func GetSupplierService() SupplierInterface {
	return supplierServiceInstance
}

// SetSupplierService sets the supplier service instance (primarily for testing)
func SetSupplierService(service SupplierInterface) {
	supplierServiceInstance = service
}

// StubSupplierService returns a deterministic canned catalog so the parts
// selection UI can be exercised without the supplier integration.
type StubSupplierService struct{}

// SearchByVIN returns the canned part list for a VIN. European-market VINs
// (W prefix) get a slightly different set so the UI has variety to render.
func (s *StubSupplierService) SearchByVIN(vin string) ([]SupplierPart, error) {
	base := []SupplierPart{
		{Name: "Oil filter", Brand: "MANN", Article: "W 914/2", Price: decimal.RequireFromString("12.50"), InStock: true, Supplier: "AutoDoc"},
		{Name: "Air filter", Brand: "Bosch", Article: "F 026 400 374", Price: decimal.RequireFromString("18.90"), InStock: true, Supplier: "AutoDoc"},
		{Name: "Brake pads front", Brand: "TRW", Article: "GDB1330", Price: decimal.RequireFromString("44.00"), InStock: false, Supplier: "Exist"},
	}
	if strings.HasPrefix(strings.ToUpper(vin), "W") {
		base = append(base, SupplierPart{
			Name: "Cabin filter", Brand: "MAHLE", Article: "LAK 181", Price: decimal.RequireFromString("21.30"), InStock: true, Supplier: "Exist",
		})
	}
	return base, nil
}
