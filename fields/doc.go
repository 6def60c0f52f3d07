// Package fields holds metadata about the fields a filter can reference:
// their attribute types, display aliases, enumerations and visibility.
//
// Definitions are usually loaded from YAML:
//
//	reg, err := fields.LoadFile("fields.yaml")
//	if err != nil {
//	    return err
//	}
//	typ, ok := reg.Type("created") // fields.Date, true
//
// A Registry can also be packed into a binary snapshot with MarshalSnapshot
// and restored with UnmarshalSnapshot.
package fields
