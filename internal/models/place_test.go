package models

import "testing"

func TestPlaceFilterEffective(t *testing.T) {
	yes := true
	city, country, priority := "Nice", "France", "High"

	tests := []struct {
		name   string
		filter PlaceFilter
		want   PlaceFilter
	}{
		{"empty", PlaceFilter{}, PlaceFilter{}},
		{"all set keeps visited", PlaceFilter{&yes, &city, &country, &priority}, PlaceFilter{Visited: &yes}},
		{"city over country", PlaceFilter{City: &city, Country: &country}, PlaceFilter{City: &city}},
		{"country over priority", PlaceFilter{Country: &country, Priority: &priority}, PlaceFilter{Country: &country}},
		{"priority alone", PlaceFilter{Priority: &priority}, PlaceFilter{Priority: &priority}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Effective()
			if got != tt.want {
				t.Errorf("Effective() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
