package models

import (
	"strings"
	"time"
)

type Biodata struct {
	BiodataID             int       `json:"biodataId" bson:"biodataId"`
	BiodataType           string    `json:"biodataType" bson:"biodataType"`
	Name                  string    `json:"name" bson:"name"`
	DateOfBirth           string    `json:"dateOfBirth" bson:"dateOfBirth"`
	Age                   int       `json:"age" bson:"age"`
	Height                string    `json:"height" bson:"height"`
	Weight                string    `json:"weight" bson:"weight"`
	Race                  string    `json:"race" bson:"race"`
	Occupation            string    `json:"occupation" bson:"occupation"`
	PermanentDivision     string    `json:"permanentDivision" bson:"permanentDivision"`
	PresentDivision       string    `json:"presentDivision" bson:"presentDivision"`
	FathersName           string    `json:"fathersName" bson:"fathersName"`
	MothersName           string    `json:"mothersName" bson:"mothersName"`
	ContactEmail          string    `json:"contactEmail,omitempty" bson:"contactEmail"`
	MobileNumber          string    `json:"mobileNumber,omitempty" bson:"mobileNumber"`
	ProfileImage          string    `json:"profileImage" bson:"profileImage"`
	ExpectedPartnerAge    int       `json:"expectedPartnerAge" bson:"expectedPartnerAge"`
	ExpectedPartnerHeight string    `json:"expectedPartnerHeight" bson:"expectedPartnerHeight"`
	ExpectedPartnerWeight string    `json:"expectedPartnerWeight" bson:"expectedPartnerWeight"`
	Premium               BoolFlag  `json:"premium" bson:"premium"`
	ContactLocked         bool      `json:"contactLocked,omitempty" bson:"-"`
	CreatedAt             time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Redacted returns a copy with the contact sub-record removed.
func (b *Biodata) Redacted() *Biodata {
	c := *b
	c.ContactEmail = ""
	c.MobileNumber = ""
	c.ContactLocked = true
	return &c
}

var (
	BiodataTypes = []string{"Male", "Female"}
	Divisions    = []string{"Dhaka", "Chattagra", "Rangpur", "Barisal", "Khulna", "Mymensingh", "Sylhet"}
)

// BiodataInput carries the writable biodata fields. Nil fields are left
// untouched on update. ContactEmail is never client-writable.
type BiodataInput struct {
	BiodataType           *string `json:"biodataType"`
	Name                  *string `json:"name"`
	DateOfBirth           *string `json:"dateOfBirth"`
	Age                   *int    `json:"age"`
	Height                *string `json:"height"`
	Weight                *string `json:"weight"`
	Race                  *string `json:"race"`
	Occupation            *string `json:"occupation"`
	PermanentDivision     *string `json:"permanentDivision"`
	PresentDivision       *string `json:"presentDivision"`
	FathersName           *string `json:"fathersName"`
	MothersName           *string `json:"mothersName"`
	MobileNumber          *string `json:"mobileNumber"`
	ProfileImage          *string `json:"profileImage"`
	ExpectedPartnerAge    *int    `json:"expectedPartnerAge"`
	ExpectedPartnerHeight *string `json:"expectedPartnerHeight"`
	ExpectedPartnerWeight *string `json:"expectedPartnerWeight"`
}

// Validate checks the input. Required fields are only enforced on create.
func (in *BiodataInput) Validate(create bool) map[string]string {
	errors := make(map[string]string)

	if create {
		required := map[string]*string{
			"biodataType": in.BiodataType,
			"name":        in.Name,
			"dateOfBirth": in.DateOfBirth,
			"occupation":  in.Occupation,
		}
		for field, v := range required {
			if v == nil || strings.TrimSpace(*v) == "" {
				errors[field] = "This field is required"
			}
		}
		if in.Age == nil {
			errors["age"] = "Age is required"
		}
	}

	if in.BiodataType != nil && *in.BiodataType != "" && !oneOf(*in.BiodataType, BiodataTypes) {
		errors["biodataType"] = "Biodata type must be Male or Female"
	}
	if in.Age != nil && (*in.Age < 18 || *in.Age > 100) {
		errors["age"] = "Age must be between 18 and 100"
	}
	if in.ExpectedPartnerAge != nil && *in.ExpectedPartnerAge != 0 && (*in.ExpectedPartnerAge < 18 || *in.ExpectedPartnerAge > 100) {
		errors["expectedPartnerAge"] = "Expected partner age must be between 18 and 100"
	}
	if in.PermanentDivision != nil && *in.PermanentDivision != "" && !oneOf(*in.PermanentDivision, Divisions) {
		errors["permanentDivision"] = "Unknown division"
	}
	if in.PresentDivision != nil && *in.PresentDivision != "" && !oneOf(*in.PresentDivision, Divisions) {
		errors["presentDivision"] = "Unknown division"
	}
	if in.DateOfBirth != nil && *in.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", *in.DateOfBirth); err != nil {
			errors["dateOfBirth"] = "Date of birth must be YYYY-MM-DD"
		}
	}

	return errors
}

// PremiumFieldsChanged reports the premium-only fields this input would set
// to a value different from current. current may be nil on create.
func (in *BiodataInput) PremiumFieldsChanged(current *Biodata) []string {
	var cur Biodata
	if current != nil {
		cur = *current
	}
	var changed []string
	if in.MobileNumber != nil && deref(in.MobileNumber) != cur.MobileNumber {
		changed = append(changed, "mobileNumber")
	}
	if in.ProfileImage != nil && deref(in.ProfileImage) != cur.ProfileImage {
		changed = append(changed, "profileImage")
	}
	if in.ExpectedPartnerAge != nil && *in.ExpectedPartnerAge != cur.ExpectedPartnerAge {
		changed = append(changed, "expectedPartnerAge")
	}
	if in.ExpectedPartnerHeight != nil && deref(in.ExpectedPartnerHeight) != cur.ExpectedPartnerHeight {
		changed = append(changed, "expectedPartnerHeight")
	}
	if in.ExpectedPartnerWeight != nil && deref(in.ExpectedPartnerWeight) != cur.ExpectedPartnerWeight {
		changed = append(changed, "expectedPartnerWeight")
	}
	return changed
}

// ApplyTo merges the provided fields into b.
func (in *BiodataInput) ApplyTo(b *Biodata) {
	setString(&b.BiodataType, in.BiodataType)
	setString(&b.Name, in.Name)
	setString(&b.DateOfBirth, in.DateOfBirth)
	setInt(&b.Age, in.Age)
	setString(&b.Height, in.Height)
	setString(&b.Weight, in.Weight)
	setString(&b.Race, in.Race)
	setString(&b.Occupation, in.Occupation)
	setString(&b.PermanentDivision, in.PermanentDivision)
	setString(&b.PresentDivision, in.PresentDivision)
	setString(&b.FathersName, in.FathersName)
	setString(&b.MothersName, in.MothersName)
	setString(&b.MobileNumber, in.MobileNumber)
	setString(&b.ProfileImage, in.ProfileImage)
	setInt(&b.ExpectedPartnerAge, in.ExpectedPartnerAge)
	setString(&b.ExpectedPartnerHeight, in.ExpectedPartnerHeight)
	setString(&b.ExpectedPartnerWeight, in.ExpectedPartnerWeight)
}

// SetFields returns the bson field names and values for a $set update.
func (in *BiodataInput) SetFields() map[string]interface{} {
	set := make(map[string]interface{})
	put := func(key string, v interface{}, ok bool) {
		if ok {
			set[key] = v
		}
	}
	put("biodataType", deref(in.BiodataType), in.BiodataType != nil)
	put("name", deref(in.Name), in.Name != nil)
	put("dateOfBirth", deref(in.DateOfBirth), in.DateOfBirth != nil)
	put("age", derefInt(in.Age), in.Age != nil)
	put("height", deref(in.Height), in.Height != nil)
	put("weight", deref(in.Weight), in.Weight != nil)
	put("race", deref(in.Race), in.Race != nil)
	put("occupation", deref(in.Occupation), in.Occupation != nil)
	put("permanentDivision", deref(in.PermanentDivision), in.PermanentDivision != nil)
	put("presentDivision", deref(in.PresentDivision), in.PresentDivision != nil)
	put("fathersName", deref(in.FathersName), in.FathersName != nil)
	put("mothersName", deref(in.MothersName), in.MothersName != nil)
	put("mobileNumber", deref(in.MobileNumber), in.MobileNumber != nil)
	put("profileImage", deref(in.ProfileImage), in.ProfileImage != nil)
	put("expectedPartnerAge", derefInt(in.ExpectedPartnerAge), in.ExpectedPartnerAge != nil)
	put("expectedPartnerHeight", deref(in.ExpectedPartnerHeight), in.ExpectedPartnerHeight != nil)
	put("expectedPartnerWeight", deref(in.ExpectedPartnerWeight), in.ExpectedPartnerWeight != nil)
	return set
}

type BiodataStats struct {
	Total   int `json:"total"`
	Male    int `json:"male"`
	Female  int `json:"female"`
	Premium int `json:"premium"`
	Stories int `json:"stories"`
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
