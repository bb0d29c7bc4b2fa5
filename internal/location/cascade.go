package location

// Cascade is the selection of the four address dropdowns. Changing a level
// clears every level below it.
type Cascade struct {
	State    string
	District string
	Taluka   string
	Place    string
}

func (c *Cascade) SetState(state string) {
	c.State = state
	c.District, c.Taluka, c.Place = "", "", ""
}

func (c *Cascade) SetDistrict(district string) {
	c.District = district
	c.Taluka, c.Place = "", ""
}

func (c *Cascade) SetTaluka(taluka string) {
	c.Taluka = taluka
	c.Place = ""
}

func (c *Cascade) SetPlace(place string) {
	c.Place = place
}

// Options lists what each dropdown currently offers
type Options struct {
	States    []string `json:"states"`
	Districts []string `json:"districts"`
	Talukas   []string `json:"talukas"`
	Places    []string `json:"places"`
}

// Options populates every dropdown whose parent is chosen
func (c Cascade) Options(t *Table) Options {
	opts := Options{States: t.States(), Districts: []string{}, Talukas: []string{}, Places: []string{}}
	if c.State == "" {
		return opts
	}
	opts.Districts = t.Districts(c.State)
	if c.District == "" {
		return opts
	}
	opts.Talukas = t.Talukas(c.State, c.District)
	if c.Taluka == "" {
		return opts
	}
	opts.Places = t.Places(c.State, c.District, c.Taluka)
	return opts
}
