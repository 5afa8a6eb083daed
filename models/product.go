package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHomeKitchen Category = "Home & Kitchen"
	CategorySports      Category = "Sports"
	CategoryToys        Category = "Toys"
	CategoryBeauty      Category = "Beauty"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHomeKitchen,
	CategorySports,
	CategoryToys,
	CategoryBeauty,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    Category           `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []string           `bson:"images" json:"images"`
	Rating      float64            `bson:"rating" json:"rating"`
	NumReviews  int                `bson:"numReviews" json:"numReviews"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PrimaryImage is the image frozen into cart lines and order items.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductInput is the admin create/update payload. Pointers distinguish a
// missing price or stock from an explicit zero.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    Category `json:"category" validate:"required,category"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Images      []string `json:"images"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	NumReviews  int      `json:"numReviews" validate:"gte=0"`
}

type ProductSort string

const (
	SortLatest    ProductSort = "latest"
	SortPriceAsc  ProductSort = "price-asc"
	SortPriceDesc ProductSort = "price-desc"
)

type ProductFilter struct {
	Search   string
	Category Category
	MinPrice *float64
	MaxPrice *float64
	Sort     ProductSort
}
