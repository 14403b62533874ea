package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// BoolFlag is a boolean that also decodes the legacy "true"/"false" strings
// written by the previous server. It is always encoded as a real boolean.
type BoolFlag bool

func (f BoolFlag) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(bool(f))
}

func (f *BoolFlag) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Boolean:
		*f = BoolFlag(rv.Boolean())
	case bsontype.String:
		v, err := parseFlag(rv.StringValue())
		if err != nil {
			return err
		}
		*f = v
	case bsontype.Null, bsontype.Undefined:
		*f = false
	default:
		return fmt.Errorf("flag: unsupported bson type %s", t)
	}
	return nil
}

func (f *BoolFlag) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = false
		return nil
	}
	v, err := parseFlag(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func parseFlag(s string) (BoolFlag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false", "":
		return false, nil
	}
	return false, fmt.Errorf("flag: invalid value %q", s)
}

// PremiumFilterValues matches both encodings in queries.
var PremiumFilterValues = []interface{}{true, "true"}
