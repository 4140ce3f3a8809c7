package entity

// Category - закрытый набор тегов объявления
// Значения должны совпадать побайтно с уже сохраненными документами
type Category string

const (
	CategoryMountains    Category = "Mountains"
	CategoryTrending     Category = "Trending"
	CategoryIconicCity   Category = "Iconic City"
	CategoryCastle       Category = "Castle"
	CategoryAmazingPools Category = "Amazing pools"
	CategoryCamping      Category = "Camping"
	CategoryFarms        Category = "Farms"
	CategoryArctics      Category = "Arctics"
)

// Categories в порядке отображения в фильтре
var Categories = []Category{
	CategoryMountains,
	CategoryTrending,
	CategoryIconicCity,
	CategoryCastle,
	CategoryAmazingPools,
	CategoryCamping,
	CategoryFarms,
	CategoryArctics,
}

// Valid сообщает, входит ли значение в набор
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
