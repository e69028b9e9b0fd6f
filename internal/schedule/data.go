package schedule

import "github.com/algiers-transit/arrivals-backend-go/internal/models"

// routePaths returns the endpoint waypoints for each ETUSA route
func routePaths() map[string][]models.Waypoint {
	return map[string][]models.Waypoint{
		"04": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7800, Lon: 3.0900, Name: "Ben Omar"},
		},
		"05": {
			{Lat: 36.7700, Lon: 3.0553, Name: "Place Audin"},
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
		},
		"07": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.7400, Lon: 3.1100, Name: "El Harrach"},
		},
		"10": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7900, Lon: 3.0350, Name: "Bouzareah"},
		},
		"16": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7400, Lon: 3.0800, Name: "Kouba"},
		},
		"31": {
			{Lat: 36.7692, Lon: 3.0549, Name: "Place Audin"},
			{Lat: 36.7435, Lon: 3.0421, Name: "Hydra"},
		},
		"33": {
			{Lat: 36.7700, Lon: 3.0553, Name: "Place Audin"},
			{Lat: 36.7400, Lon: 3.0800, Name: "Kouba"},
		},
		"34": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7200, Lon: 3.0350, Name: "Birkhadem"},
		},
		"45": {
			{Lat: 36.7472, Lon: 3.0403, Name: "Hydra"},
			{Lat: 36.7800, Lon: 3.0200, Name: "Ben Aknoun"},
		},
		"48": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7800, Lon: 3.0200, Name: "Ben Aknoun"},
		},
		"54": {
			{Lat: 36.7692, Lon: 3.0549, Name: "Place Audin"},
			{Lat: 36.7482, Lon: 3.0511, Name: "El Mouradia"},
		},
		"58": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.7300, Lon: 3.1200, Name: "Chevalley"},
		},
		"65": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7450, Lon: 3.0450, Name: "El Madania"},
		},
		"67": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.7400, Lon: 3.0400, Name: "Ben Aknoun"},
		},
		"88": {
			{Lat: 36.7472, Lon: 3.0403, Name: "Hydra"},
			{Lat: 36.7300, Lon: 3.0300, Name: "Bir Mourad Raïs"},
		},
		"89": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.7450, Lon: 3.0850, Name: "Vieux Kouba"},
		},
		"90": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.7100, Lon: 2.9800, Name: "Birtouta"},
		},
		"91": {
			{Lat: 36.7700, Lon: 3.0553, Name: "Place Audin"},
			{Lat: 36.7300, Lon: 3.1200, Name: "Chevalley"},
		},
		"99": {
			{Lat: 36.7606, Lon: 3.0553, Name: "1er Mai"},
			{Lat: 36.8100, Lon: 3.0000, Name: "Aïn Benian"},
		},
		"100": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.6910, Lon: 3.2154, Name: "Aéroport"},
		},
		"101": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.7100, Lon: 2.9800, Name: "Birtouta"},
		},
		"113": {
			{Lat: 36.7847, Lon: 3.0625, Name: "Place des Martyrs"},
			{Lat: 36.7550, Lon: 3.0800, Name: "Gare Routière Caroubier"},
		},
	}
}

// stations returns the served stations and their timetables
func stations() []models.Station {
	return []models.Station{
		{
			ID:      "martyrs",
			Name:    "Place des Martyrs",
			Lat:     36.78646243864091,
			Lon:     3.0624237631875166,
			Address: "Casbah, Algiers",
			Routes: []models.Route{
				{Number: "100", Destination: "Aéroport", IntervalMin: 40, StartTime: "06:00", EndTime: "05:00", TotalDistance: 18.5},
				{Number: "101", Destination: "Birtouta", IntervalMin: 35, StartTime: "06:00", EndTime: "05:00", TotalDistance: 15.0},
				{Number: "99", Destination: "Aéroport", IntervalMin: 40, StartTime: "06:00", EndTime: "05:00", TotalDistance: 18.5},
				{Number: "58", Destination: "Chevalley", IntervalMin: 30, StartTime: "06:00", EndTime: "05:00", TotalDistance: 12.0},
				{Number: "67", Destination: "Ben Aknoun", IntervalMin: 25, StartTime: "06:00", EndTime: "05:00", TotalDistance: 8.5},
				{Number: "07", Destination: "El Harrach", IntervalMin: 25, StartTime: "06:00", EndTime: "05:00", TotalDistance: 10.0},
				{Number: "90", Destination: "Birtouta", IntervalMin: 35, StartTime: "06:00", EndTime: "05:00", TotalDistance: 15.0},
				{Number: "113", Destination: "Gare Routière Caroubier", IntervalMin: 30, StartTime: "06:00", EndTime: "05:00", TotalDistance: 7.0},
			},
		},
		{
			ID:      "audin",
			Name:    "Place Maurice Audin",
			Lat:     36.7692411,
			Lon:     3.0549448,
			Address: "Alger Centre",
			Routes: []models.Route{
				{Number: "31", Destination: "Hydra", IntervalMin: 25, StartTime: "06:00", EndTime: "18:30", TotalDistance: 4.2},
				{Number: "33", Destination: "Kouba", IntervalMin: 30, StartTime: "06:00", EndTime: "18:30", TotalDistance: 6.5},
				{Number: "67", Destination: "Ben Aknoun", IntervalMin: 30, StartTime: "06:00", EndTime: "18:30", TotalDistance: 7.0},
				{Number: "91", Destination: "Chevalley", IntervalMin: 35, StartTime: "06:00", EndTime: "18:30", TotalDistance: 11.0},
				{Number: "54", Destination: "El Mouradia", IntervalMin: 20, StartTime: "06:00", EndTime: "18:30", TotalDistance: 3.5},
				{Number: "05", Destination: "Place des Martyrs", IntervalMin: 20, StartTime: "06:00", EndTime: "18:30", TotalDistance: 2.0},
			},
		},
		{
			ID:      "1mai",
			Name:    "1er Mai",
			Lat:     36.76021973877917,
			Lon:     3.0566802899233463,
			Address: "Sidi M'Hamed",
			Routes: []models.Route{
				{Number: "04", Destination: "Ben Omar", IntervalMin: 35, StartTime: "06:00", EndTime: "18:30", TotalDistance: 9.0},
				{Number: "10", Destination: "Bouzareah", IntervalMin: 30, StartTime: "06:00", EndTime: "18:30", TotalDistance: 8.5},
				{Number: "12", Destination: "Dély Ibrahim", IntervalMin: 35, StartTime: "06:00", EndTime: "18:30", TotalDistance: 10.0},
				{Number: "07", Destination: "El Harrach", IntervalMin: 25, StartTime: "06:00", EndTime: "18:30", TotalDistance: 8.0},
				{Number: "16", Destination: "Kouba", IntervalMin: 25, StartTime: "06:00", EndTime: "18:30", TotalDistance: 5.5},
			},
		},
		{
			ID:      "hydra",
			Name:    "Hydra",
			Lat:     36.743512017412236,
			Lon:     3.0420763246892846,
			Address: "Hydra Centre",
			Routes: []models.Route{
				{Number: "31", Destination: "Place Audin", IntervalMin: 25, StartTime: "06:00", EndTime: "18:30", TotalDistance: 4.2},
				{Number: "88", Destination: "Bir Mourad Raïs", IntervalMin: 35, StartTime: "06:00", EndTime: "18:30", TotalDistance: 6.0},
				{Number: "45", Destination: "Ben Aknoun", IntervalMin: 30, StartTime: "06:00", EndTime: "18:30", TotalDistance: 5.5},
			},
		},
		{
			ID:      "mouradia",
			Name:    "El Mouradia",
			Lat:     36.74820388941202,
			Lon:     3.051086539207291,
			Address: "El Mouradia",
			Routes: []models.Route{
				{Number: "54", Destination: "Place Audin", IntervalMin: 20, StartTime: "06:00", EndTime: "18:30", TotalDistance: 3.5},
				{Number: "34", Destination: "1er Mai", IntervalMin: 30, StartTime: "06:00", EndTime: "18:30", TotalDistance: 4.0},
				{Number: "45", Destination: "Ben Aknoun", IntervalMin: 30, StartTime: "06:00", EndTime: "18:30", TotalDistance: 6.5},
			},
		},
	}
}
