package table

import (
	"bytes"
	"errors"
	"reflect"

	"github.com/jpipkit/jpip-base/kvdb"
)

// MigrateTables sets the fields of s tagged `table:"prefix"` to tables of db.
// A nil db resets them. Clashing prefixes are an error.
func MigrateTables(s interface{}, db kvdb.Store) error {
	value := reflect.ValueOf(s).Elem()

	var keys uniqKeys
	for i := 0; i < value.NumField(); i++ {
		if prefix := value.Type().Field(i).Tag.Get("table"); prefix != "" && prefix != "-" {
			field := value.Field(i)
			var val reflect.Value
			if db != nil {
				keys.Add(prefix)
				val = reflect.ValueOf(New(db, []byte(prefix)))
			} else {
				val = reflect.Zero(field.Type())
			}
			field.Set(val)
		}
	}
	return keys.Check()
}

type uniqKeys struct {
	keys [][]byte
}

func (u *uniqKeys) Add(s string) {
	u.keys = append(u.keys, []byte(s))
}

// Check fails if a prefix is a prefix of another one, their keys would mix.
func (u *uniqKeys) Check() error {
	for i := 0; i < len(u.keys); i++ {
		for j := 0; j < len(u.keys); j++ {
			if i != j && bytes.HasPrefix(u.keys[j], u.keys[i]) {
				return errors.New("prefixes '" + string(u.keys[i]) + "' and '" + string(u.keys[j]) + "' overlap")
			}
		}
	}
	return nil
}
