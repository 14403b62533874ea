package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBoolFlagDecodesLegacyStrings(t *testing.T) {
	for _, tt := range []struct {
		doc  bson.M
		want bool
	}{
		{bson.M{"premium": true}, true},
		{bson.M{"premium": "true"}, true},
		{bson.M{"premium": "false"}, false},
		{bson.M{"premium": nil}, false},
		{bson.M{}, false},
	} {
		raw, err := bson.Marshal(tt.doc)
		require.NoError(t, err)

		var b Biodata
		require.NoError(t, bson.Unmarshal(raw, &b))
		assert.Equal(t, tt.want, bool(b.Premium), "%v", tt.doc)
	}

	raw, err := bson.Marshal(bson.M{"premium": "maybe"})
	require.NoError(t, err)
	var b Biodata
	assert.Error(t, bson.Unmarshal(raw, &b))
}

func TestBoolFlagEncodesBoolean(t *testing.T) {
	raw, err := bson.Marshal(User{Email: "u@example.com", Premium: true})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, true, doc["premium"])

	out, err := json.Marshal(User{Premium: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"premium":true`)
}

func TestSetPremiumRequestAcceptsStrings(t *testing.T) {
	var req SetPremiumRequest
	require.NoError(t, json.Unmarshal([]byte(`{"premium":"true"}`), &req))
	assert.True(t, bool(req.Premium))
	require.NoError(t, json.Unmarshal([]byte(`{"premium":false}`), &req))
	assert.False(t, bool(req.Premium))
}

func TestBiodataInputValidate(t *testing.T) {
	s := func(v string) *string { return &v }
	n := func(v int) *int { return &v }

	errs := (&BiodataInput{}).Validate(true)
	for _, field := range []string{"biodataType", "name", "dateOfBirth", "occupation", "age"} {
		assert.Contains(t, errs, field)
	}

	assert.Empty(t, (&BiodataInput{}).Validate(false))

	errs = (&BiodataInput{
		BiodataType:     s("Other"),
		Age:             n(12),
		PresentDivision: s("Atlantis"),
		DateOfBirth:     s("12/04/1998"),
	}).Validate(false)
	assert.Len(t, errs, 4)
}

func TestPremiumFieldsChanged(t *testing.T) {
	s := func(v string) *string { return &v }
	current := &Biodata{MobileNumber: "017", ProfileImage: "https://cdn/a.jpg"}

	in := &BiodataInput{Name: s("New name"), MobileNumber: s("017"), ProfileImage: s(" https://cdn/a.jpg ")}
	assert.Empty(t, in.PremiumFieldsChanged(current))

	in.MobileNumber = s("018")
	assert.Equal(t, []string{"mobileNumber"}, in.PremiumFieldsChanged(current))

	assert.Empty(t, (&BiodataInput{MobileNumber: s("")}).PremiumFieldsChanged(nil))
	assert.Equal(t, []string{"profileImage"}, (&BiodataInput{ProfileImage: s("x.jpg")}).PremiumFieldsChanged(nil))
}

func TestBiodataRedacted(t *testing.T) {
	b := &Biodata{BiodataID: 3, Name: "Rina", ContactEmail: "r@example.com", MobileNumber: "017"}
	r := b.Redacted()

	assert.Equal(t, "Rina", r.Name)
	assert.True(t, r.ContactLocked)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "contactEmail")
	assert.NotContains(t, string(out), "mobileNumber")
	assert.Equal(t, "017", b.MobileNumber)
}
