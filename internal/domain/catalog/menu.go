package catalog

// Default returns the canteen menu.
func Default() *Catalog {
	return MustNew(
		Item{ID: "m1", Name: "貓爪咖哩飯", Price: 120, Category: CategoryMains},
		Item{ID: "m2", Name: "鮭魚親子丼", Price: 150, Category: CategoryMains},
		Item{ID: "m3", Name: "喵喵義大利麵", Price: 130, Category: CategoryMains},
		Item{ID: "m4", Name: "貓掌漢堡排", Price: 140, Category: CategoryMains},

		Item{ID: "s1", Name: "貓咪味噌湯", Price: 30, Category: CategorySoups},
		Item{ID: "s2", Name: "奶油南瓜濃湯", Price: 40, Category: CategorySoups},
		Item{ID: "s3", Name: "海鮮巧達湯", Price: 50, Category: CategorySoups},

		Item{ID: "d1", Name: "貓掌布丁", Price: 60, Category: CategoryDesserts},
		Item{ID: "d2", Name: "鮮奶雪花冰", Price: 70, Category: CategoryDesserts},
		Item{ID: "d3", Name: "焦糖烤布蕾", Price: 65, Category: CategoryDesserts},
		Item{ID: "d4", Name: "貓咪銅鑼燒", Price: 55, Category: CategoryDesserts},

		Item{ID: "dr1", Name: "貓爪拿鐵", Price: 80, Category: CategoryDrinks},
		Item{ID: "dr2", Name: "焦糖瑪奇朵", Price: 90, Category: CategoryDrinks},
		Item{ID: "dr3", Name: "抹茶拿鐵", Price: 85, Category: CategoryDrinks},
		Item{ID: "dr4", Name: "水果茶", Price: 70, Category: CategoryDrinks},
		Item{ID: "dr5", Name: "檸檬冰茶", Price: 60, Category: CategoryDrinks},
	)
}
