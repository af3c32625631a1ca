package submission

import "fmt"

// Form holds the patient intake fields. Everything is a string at rest;
// numeric coercion happens only when the request payload is built.
type Form struct {
	Age           string `json:"age"`
	Gender        string `json:"gender"`
	Allergies     string `json:"allergies"`
	Insurance     string `json:"insurance"`
	Ethnicity     string `json:"ethnicity"`
	Symptoms      string `json:"symptoms"`
	Treatments    string `json:"treatments"`
	Conditions    string `json:"conditions"`
	Language      string `json:"language"`
	MaritalStatus string `json:"maritalStatus"`
}

// Set assigns one named field. Field values are never validated (the
// prediction service owns required-ness); an unknown field name is a
// client programming error.
func (f *Form) Set(name, value string) error {
	switch name {
	case "age":
		f.Age = value
	case "gender":
		f.Gender = value
	case "allergies":
		f.Allergies = value
	case "insurance":
		f.Insurance = value
	case "ethnicity":
		f.Ethnicity = value
	case "symptoms":
		f.Symptoms = value
	case "treatments":
		f.Treatments = value
	case "conditions":
		f.Conditions = value
	case "language":
		f.Language = value
	case "maritalStatus":
		f.MaritalStatus = value
	default:
		return fmt.Errorf("unknown form field %q", name)
	}
	return nil
}
