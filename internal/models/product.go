package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductCategory groups catalog entries.
type ProductCategory string

const (
	CategoryPrescription ProductCategory = "prescription"
	CategoryOTC          ProductCategory = "otc"
	CategoryHealthcare   ProductCategory = "healthcare"
	CategorySupplies     ProductCategory = "supplies"
)

// Product is a catalog entity. Stock is mutated by order confirmation
// and cancellation; everything else is plain CRUD.
type Product struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Description          string             `bson:"description" json:"description"`
	Price                float64            `bson:"price" json:"price"`
	Category             ProductCategory    `bson:"category" json:"category"`
	Manufacturer         string             `bson:"manufacturer" json:"manufacturer"`
	ActiveIngredients    []string           `bson:"activeIngredients,omitempty" json:"activeIngredients,omitempty"`
	StockQuantity        int                `bson:"stockQuantity" json:"stockQuantity"`
	ImageURLs            []string           `bson:"imageUrls,omitempty" json:"imageUrls,omitempty"`
	DosageForm           string             `bson:"dosageForm,omitempty" json:"dosageForm,omitempty"`
	RequiresPrescription bool               `bson:"requiresPrescription" json:"requiresPrescription"`
	SideEffects          []string           `bson:"sideEffects,omitempty" json:"sideEffects,omitempty"`
	Contraindications    []string           `bson:"contraindications,omitempty" json:"contraindications,omitempty"`
	ExpiryDate           time.Time          `bson:"expiryDate" json:"expiryDate"`
	BatchNumber          string             `bson:"batchNumber" json:"batchNumber"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Expired reports whether the product is past its expiry date.
func (p *Product) Expired(now time.Time) bool {
	return !p.ExpiryDate.IsZero() && p.ExpiryDate.Before(now)
}
