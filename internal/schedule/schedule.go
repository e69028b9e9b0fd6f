// Package schedule holds the static timetable: stations, the routes serving
// them, and the route path waypoints. The dataset is immutable after load.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
)

// Schedule is the loaded timetable
type Schedule struct {
	stations []models.Station
	byID     map[string]*models.Station
	paths    map[string][]models.Waypoint
	loc      *time.Location
}

// New builds the schedule from the built-in dataset, resolving each route's
// path waypoints
func New(loc *time.Location) *Schedule {
	s := &Schedule{
		stations: stations(),
		byID:     make(map[string]*models.Station),
		paths:    routePaths(),
		loc:      loc,
	}
	for i := range s.stations {
		st := &s.stations[i]
		for j := range st.Routes {
			r := &st.Routes[j]
			if path, ok := s.paths[r.Number]; ok {
				r.Path = path
			}
		}
		s.byID[st.ID] = st
	}
	return s
}

// Stations returns all stations
func (s *Schedule) Stations() []models.Station { return s.stations }

// Station returns the station with the given id
func (s *Schedule) Station(id string) (*models.Station, bool) {
	st, ok := s.byID[id]
	return st, ok
}

// Path returns the waypoints for a route number
func (s *Schedule) Path(routeNumber string) []models.Waypoint {
	return s.paths[routeNumber]
}

// Location returns the timezone timetable math is evaluated in
func (s *Schedule) Location() *time.Location { return s.loc }

// NowMinutes converts t to minutes past midnight in the schedule's timezone
func (s *Schedule) NowMinutes(t time.Time) int {
	local := t.In(s.loc)
	return local.Hour()*60 + local.Minute()
}

// TimeToMinutes parses "HH:MM" into minutes past midnight
func TimeToMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return h*60 + m, nil
}

// WindowActive reports whether nowMins falls inside a service window.
// Windows where end < start wrap past midnight: 06:00-05:00 is active at
// 23:30 and at 04:30, inactive at 05:30.
func WindowActive(startMins, endMins, nowMins int) bool {
	if endMins < startMins {
		return nowMins >= startMins || nowMins <= endMins
	}
	return nowMins >= startMins && nowMins <= endMins
}
