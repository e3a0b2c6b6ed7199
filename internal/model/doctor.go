package model

// Unknown is the explicit marker for fields the extractor could not
// resolve. Records always carry all five keys; absence is never encoded
// by omission.
const Unknown = "Unknown"

// PractitionerRecord is one practitioner extracted from a page.
type PractitionerRecord struct {
	Name           string `json:"Name"`
	Designation    string `json:"Designation"`
	Specialization string `json:"Specialization"`
	Contact        string `json:"Contact"`
	DoctorImage    string `json:"Doctor_Image"`
}

// Normalize fills empty fields with the Unknown marker.
func (r *PractitionerRecord) Normalize() {
	for _, f := range []*string{&r.Name, &r.Designation, &r.Specialization, &r.Contact, &r.DoctorImage} {
		if *f == "" {
			*f = Unknown
		}
	}
}

// PlaceReport is the per-place output of the doctor finder.
type PlaceReport struct {
	Name    string               `json:"name"`
	Website string               `json:"website,omitempty"`
	Pages   []string             `json:"pages"`
	Doctors []PractitionerRecord `json:"doctor_info"`
	Error   string               `json:"error,omitempty"`
}

// AggregateReport maps place IDs to their reports for one request.
type AggregateReport map[string]*PlaceReport
