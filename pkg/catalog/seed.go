package catalog

// Seed returns the built-in demo catalog used when no catalog file is
// configured. IDs are stable: analytics and shown-listing history refer
// to them across a session.
func Seed() []Listing {
	return []Listing{
		{
			ID:          "apt-001",
			District:    "Центральный",
			Area:        54,
			Floor:       7,
			Price:       1850000,
			Description: "Двухкомнатная квартира с ремонтом рядом с набережной.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-001/1.jpg"},
			Bedrooms:    2,
			Bathrooms:   1,
			Features:    []string{"балкон", "ремонт"},
		},
		{
			ID:          "apt-002",
			District:    "Ленинский",
			Area:        38,
			Floor:       3,
			Price:       1200000,
			Description: "Уютная однокомнатная квартира, тихий двор.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-002/1.jpg"},
			Bedrooms:    1,
			Bathrooms:   1,
		},
		{
			ID:          "apt-003",
			District:    "Центральный",
			Area:        72,
			Floor:       12,
			Price:       2600000,
			Description: "Просторная трёхкомнатная квартира с видом на парк.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-003/1.jpg"},
			Bedrooms:    3,
			Bathrooms:   2,
			Features:    []string{"вид на парк", "паркинг"},
		},
		{
			ID:          "apt-004",
			District:    "Октябрьский",
			Area:        45,
			Floor:       5,
			Price:       1550000,
			Description: "Однокомнатная квартира в новом доме, закрытая территория.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-004/1.jpg"},
			Bedrooms:    1,
			Bathrooms:   1,
			Features:    []string{"новостройка"},
		},
		{
			ID:          "apt-005",
			District:    "Ленинский",
			Area:        61,
			Floor:       9,
			Price:       1990000,
			Description: "Двухкомнатная квартира с кухней-гостиной и гардеробной.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-005/1.jpg"},
			Bedrooms:    2,
			Bathrooms:   1,
		},
		{
			ID:          "apt-006",
			District:    "Советский",
			Area:        83,
			Floor:       2,
			Price:       3100000,
			Description: "Четырёхкомнатная квартира для большой семьи, два санузла.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-006/1.jpg"},
			Bedrooms:    4,
			Bathrooms:   2,
			Features:    []string{"два санузла"},
		},
		{
			ID:          "apt-007",
			District:    "Октябрьский",
			Area:        33,
			Floor:       14,
			Price:       980000,
			Description: "Компактная студия с панорамным остеклением.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-007/1.jpg"},
			Bedrooms:    1,
			Bathrooms:   1,
			Features:    []string{"студия", "панорамные окна"},
		},
		{
			ID:          "apt-008",
			District:    "Центральный",
			Area:        58,
			Floor:       4,
			Price:       2150000,
			Description: "Двухкомнатная квартира в историческом центре, высокие потолки.",
			Images:      []string{"https://cdn.flatvoice.ru/apt-008/1.jpg"},
			Bedrooms:    2,
			Bathrooms:   1,
			Features:    []string{"высокие потолки"},
		},
	}
}
