package diagnosis

// NumAttributes is the number of attributes recorded per patient.
const NumAttributes = 9

// Class codes used by the source data.
const (
	ClassBenign    = 2
	ClassMalignant = 4
)

// UnknownAttribute replaces attribute values that are not integers.
const UnknownAttribute = -1

// Patient is one labeled record.
type Patient struct {
	ID         int
	Attributes [NumAttributes]int
	Condition  int
}

// Dataset is an ordered sequence of patients.
type Dataset []Patient

// Bind writes the patient's attributes into b.
func (p Patient) Bind(b []float64) {
	for i, v := range p.Attributes {
		b[i] = float64(v)
	}
}

// Counts returns the number of benign and malignant records.
func (d Dataset) Counts() (benign, malignant int) {
	for _, p := range d {
		switch p.Condition {
		case ClassBenign:
			benign++
		case ClassMalignant:
			malignant++
		}
	}
	return benign, malignant
}
