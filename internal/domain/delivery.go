package domain

// DeliveryInfo is advisory only; no field is validated.
type DeliveryInfo struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Location is a reverse-geocoded position.
type Location struct {
	County   string `json:"county"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Prefill fills the empty address fields of d from loc. Fields the user
// already entered are kept.
func (d DeliveryInfo) Prefill(loc Location) DeliveryInfo {
	if d.Address == "" {
		d.Address = loc.County
	}
	if d.State == "" {
		d.State = loc.State
	}
	if d.Postcode == "" {
		d.Postcode = loc.Postcode
	}
	if d.Country == "" {
		d.Country = loc.Country
	}
	return d
}
