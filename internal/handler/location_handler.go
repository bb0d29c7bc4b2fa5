package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"votedesk/internal/location"
)

// locationNames are the form field names of one address cascade
type locationNames struct {
	State, District, Taluka, Place string
}

var (
	profileLocation   = locationNames{State: "state", District: "district", Taluka: "taluka", Place: "city"}
	electionLocation  = locationNames{State: "state", District: "district", Taluka: "taluka", Place: "villageCity"}
	candidateLocation = locationNames{State: "state", District: "district", Taluka: "taluka", Place: "village"}
)

// locationField is the data of the "location" template
type locationField struct {
	Names   locationNames
	Cascade location.Cascade
	Options location.Options
}

func (h *Handler) locationField(names locationNames, c location.Cascade) locationField {
	return locationField{Names: names, Cascade: c, Options: c.Options(h.c.Locations)}
}

// cascadeFromForm replays the posted dropdowns onto the previously rendered
// selection, so changing a level clears the levels below it
func cascadeFromForm(r *http.Request, names locationNames) location.Cascade {
	c := location.Cascade{
		State:    r.PostFormValue("prev_state"),
		District: r.PostFormValue("prev_district"),
		Taluka:   r.PostFormValue("prev_taluka"),
	}
	state := strings.TrimSpace(r.PostFormValue(names.State))
	district := strings.TrimSpace(r.PostFormValue(names.District))
	taluka := strings.TrimSpace(r.PostFormValue(names.Taluka))
	place := strings.TrimSpace(r.PostFormValue(names.Place))

	switch {
	case state != c.State:
		c.SetState(state)
	case district != c.District:
		c.SetDistrict(district)
	case taluka != c.Taluka:
		c.SetTaluka(taluka)
	default:
		c.SetPlace(place)
	}
	return c
}

// LocationsResponse is the answer of GET /locations
type LocationsResponse struct {
	Success bool     `json:"success"`
	Level   string   `json:"level"`
	Options []string `json:"options"`
}

// Locations handles GET /locations?state=&district=&taluka= and returns the
// options of the first level left empty
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, options := h.c.Locations.Next(q.Get("state"), q.Get("district"), q.Get("taluka"))
	if options == nil {
		options = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, LocationsResponse{Success: true, Level: level, Options: options})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log(r).WithError(err).Error("Failed to encode response")
	}
}
