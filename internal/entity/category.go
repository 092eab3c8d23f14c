package entity

// Category is pre-seeded reference data; the service resolves codes to rows
// but never creates or mutates them.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryCode is the stable key for a book subject category. The set is
// fixed at deploy time and mirrored by the categories table seed.
type CategoryCode string

const (
	CategoryLiterature         CategoryCode = "literature"
	CategoryEconomicManagement CategoryCode = "economic_management"
	CategoryHumanity           CategoryCode = "humanity"
	CategoryIT                 CategoryCode = "it"
	CategoryScience            CategoryCode = "science"
	CategoryCook               CategoryCode = "cook"
	CategoryCookGeneral        CategoryCode = "cook_general"
)

// CategoryCodes lists every known code, in seed order.
var CategoryCodes = []CategoryCode{
	CategoryLiterature,
	CategoryEconomicManagement,
	CategoryHumanity,
	CategoryIT,
	CategoryScience,
	CategoryCook,
	CategoryCookGeneral,
}

func (c CategoryCode) Valid() bool {
	for _, known := range CategoryCodes {
		if c == known {
			return true
		}
	}
	return false
}

// BookCategory is one link row between a book and a category. The pair
// (BookID, CategoryID) is unique.
type BookCategory struct {
	ID         int64 `json:"id"`
	BookID     int64 `json:"book_id"`
	CategoryID int64 `json:"category_id"`
}
