package domain

// Field identifies one writable field of an Event.
type Field uint16

const (
	FieldTitle Field = 1 << iota
	FieldDescription
	FieldOverview
	FieldImage
	FieldVenue
	FieldLocation
	FieldDate
	FieldTime
	FieldMode
	FieldAudience
	FieldAgenda
	FieldOrganizer
	FieldTags
)

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldTitle, "title"},
	{FieldDescription, "description"},
	{FieldOverview, "overview"},
	{FieldImage, "image"},
	{FieldVenue, "venue"},
	{FieldLocation, "location"},
	{FieldDate, "date"},
	{FieldTime, "time"},
	{FieldMode, "mode"},
	{FieldAudience, "audience"},
	{FieldAgenda, "agenda"},
	{FieldOrganizer, "organizer"},
	{FieldTags, "tags"},
}

// String returns the JSON name of the field.
func (f Field) String() string {
	for _, fn := range fieldNames {
		if fn.f == f {
			return fn.name
		}
	}
	return "unknown"
}

// FieldSet is the set of fields changed since the last persisted version.
// A new record is saved with AllFields.
type FieldSet uint16

// AllFields marks every field as changed.
const AllFields = FieldSet(FieldTitle | FieldDescription | FieldOverview | FieldImage | FieldVenue |
	FieldLocation | FieldDate | FieldTime | FieldMode | FieldAudience | FieldAgenda | FieldOrganizer | FieldTags)

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) != 0
}

// With returns the set with f added.
func (s FieldSet) With(f Field) FieldSet {
	return s | FieldSet(f)
}

// Empty reports whether no field is marked.
func (s FieldSet) Empty() bool {
	return s == 0
}

// Fields returns the marked fields in declaration order.
func (s FieldSet) Fields() []Field {
	var out []Field
	for _, fn := range fieldNames {
		if s.Has(fn.f) {
			out = append(out, fn.f)
		}
	}
	return out
}
