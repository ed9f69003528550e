package tour

import "strings"

// fixtures are hand-authored tours bundled with the service, keyed by the
// lowercase city token they match.
var fixtures = map[string][]Tour{
	"madrid": {
		{
			ID:          "fixture-madrid-austrias",
			City:        "Madrid",
			Title:       "El Madrid de los Austrias",
			Description: "Plazas, conventos y tabernas del Madrid más antiguo.",
			Duration:    "2h 30min",
			Difficulty:  "easy",
			Theme:       "history",
			Stops: []Stop{
				{
					ID:          "fixture-madrid-austrias-1",
					Name:        "Puerta del Sol",
					Description: "El kilómetro cero de las carreteras radiales de España.",
					Narrative: Narrative{
						Hook:   "Todo empieza aquí, literalmente.",
						Story:  "La placa del kilómetro cero marca el origen de las carreteras nacionales.",
						Secret: "El reloj de la Real Casa de Correos fue un regalo de un relojero leonés.",
					},
					Latitude:  40.416775,
					Longitude: -3.703790,
					Category:  CategoryHistorical,
				},
				{
					ID:          "fixture-madrid-austrias-2",
					Name:        "Plaza Mayor",
					Description: "Plaza porticada del siglo XVII, escenario de mercados y autos de fe.",
					Narrative: Narrative{
						Hook:  "Doscientos treinta y siete balcones miran a esta plaza.",
						Story: "Reconstruida tres veces tras incendios, hoy es el salón de la ciudad.",
					},
					Latitude:  40.415363,
					Longitude: -3.707398,
					Category:  CategoryArchitecture,
					PhotoSpot: &PhotoSpot{Angle: "Desde el Arco de Cuchilleros", BestTime: "Atardecer", Caption: "Madrid de los Austrias"},
				},
				{
					ID:          "fixture-madrid-austrias-3",
					Name:        "Mercado de San Miguel",
					Description: "Mercado de hierro de 1916 convertido en templo del tapeo.",
					Latitude:    40.415443,
					Longitude:   -3.708943,
					Category:    CategoryFood,
				},
				{
					ID:          "fixture-madrid-austrias-4",
					Name:        "Palacio Real",
					Description: "La mayor residencia real de Europa occidental por superficie.",
					Latitude:    40.417955,
					Longitude:   -3.714312,
					Category:    CategoryArchitecture,
				},
			},
		},
	},
	"sevilla": {
		{
			ID:          "fixture-sevilla-santacruz",
			City:        "Sevilla",
			Title:       "Barrio de Santa Cruz",
			Description: "Callejones, patios y leyendas de la antigua judería.",
			Duration:    "2h",
			Difficulty:  "easy",
			Theme:       "culture",
			Stops: []Stop{
				{
					ID:          "fixture-sevilla-santacruz-1",
					Name:        "Catedral y Giralda",
					Description: "La mayor catedral gótica del mundo y su alminar almohade.",
					Latitude:    37.385807,
					Longitude:   -5.993162,
					Category:    CategoryArchitecture,
				},
				{
					ID:          "fixture-sevilla-santacruz-2",
					Name:        "Real Alcázar",
					Description: "Palacio mudéjar aún en uso por la familia real.",
					Latitude:    37.383957,
					Longitude:   -5.990185,
					Category:    CategoryHistorical,
				},
				{
					ID:          "fixture-sevilla-santacruz-3",
					Name:        "Plaza de Doña Elvira",
					Description: "Plaza de naranjos y azulejos en el corazón del barrio.",
					Latitude:    37.385095,
					Longitude:   -5.991084,
					Category:    CategoryPhoto,
				},
			},
		},
	},
}

func init() {
	for city, tours := range fixtures {
		for i := range tours {
			tours[i].DistanceKM = RouteDistanceKM(tours[i].Stops, tours[i].DistanceKM)
		}
		fixtures[city] = tours
	}
}

// MatchFixture returns a copy of the bundled tours whose city token is a
// case-insensitive substring of city.
func MatchFixture(city string) ([]Tour, bool) {
	c := strings.ToLower(city)
	if strings.TrimSpace(c) == "" {
		return nil, false
	}
	for token, tours := range fixtures {
		if strings.Contains(c, token) {
			return cloneTours(tours), true
		}
	}
	return nil, false
}

func cloneTours(in []Tour) []Tour {
	out := make([]Tour, len(in))
	for i, t := range in {
		t.Stops = append([]Stop(nil), t.Stops...)
		out[i] = t
	}
	return out
}
