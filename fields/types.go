package fields

import "slices"

// AttributeType is the declared type of a searchable field.
type AttributeType string

const (
	Binary   AttributeType = "BINARY"
	Date     AttributeType = "DATE"
	Location AttributeType = "LOCATION"
	Geometry AttributeType = "GEOMETRY"
	Long     AttributeType = "LONG"
	Double   AttributeType = "DOUBLE"
	Float    AttributeType = "FLOAT"
	Integer  AttributeType = "INTEGER"
	Short    AttributeType = "SHORT"
	String   AttributeType = "STRING"
	Boolean  AttributeType = "BOOLEAN"
	XML      AttributeType = "XML"
)

// AttributeTypes lists every attribute type.
var AttributeTypes = []AttributeType{
	Binary, Date, Location, Geometry, Long, Double, Float, Integer, Short, String, Boolean, XML,
}

// Valid reports whether t is a known attribute type.
func (t AttributeType) Valid() bool {
	return slices.Contains(AttributeTypes, t)
}

// IsNumeric reports whether values of t are numbers.
func (t AttributeType) IsNumeric() bool {
	switch t {
	case Long, Double, Float, Integer, Short:
		return true
	}
	return false
}

// IsIntegral reports whether values of t are whole numbers.
func (t AttributeType) IsIntegral() bool {
	return t == Long || t == Integer || t == Short
}

// IsSpatial reports whether values of t are geometries.
func (t AttributeType) IsSpatial() bool {
	return t == Location || t == Geometry
}

// IsTemporal reports whether values of t are timestamps.
func (t AttributeType) IsTemporal() bool {
	return t == Date
}

// IsTextual reports whether values of t are strings.
func (t AttributeType) IsTextual() bool {
	return t == String || t == XML
}

// IsHidden reports whether fields of type t are normally kept out of
// field pickers.
func (t AttributeType) IsHidden() bool {
	return t == Binary || t == XML
}

func (t AttributeType) String() string {
	return string(t)
}
