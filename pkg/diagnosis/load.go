package diagnosis

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RecordFields is the number of comma-separated fields per record: id, the
// attributes, then the class label.
const RecordFields = NumAttributes + 2

var (
	ErrBadRecord = errors.New("malformed patient record")
	ErrBadNames  = errors.New("malformed variable name list")
)

// parseField converts one field, mapping anything that is not an integer to
// UnknownAttribute.
func parseField(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return UnknownAttribute
	}
	return v
}

// ParsePatient builds a patient from one record's fields.
func ParsePatient(fields []string) (Patient, error) {
	if len(fields) != RecordFields {
		return Patient{}, fmt.Errorf("%w: %d fields, want %d", ErrBadRecord, len(fields), RecordFields)
	}
	var p Patient
	p.ID = parseField(fields[0])
	for i := 0; i < NumAttributes; i++ {
		p.Attributes[i] = parseField(fields[i+1])
	}
	p.Condition = parseField(fields[RecordFields-1])
	return p, nil
}

// ReadPatients parses every non-blank record from r.
func ReadPatients(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var data Dataset
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read patients: %w", err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		p, err := ParsePatient(fields)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		data = append(data, p)
	}
	return data, nil
}

// LoadPatients reads a dataset file.
func LoadPatients(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ReadPatients(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// ReadVariableNames reads exactly NumAttributes names, one per line. Blank
// lines are skipped.
func ReadVariableNames(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var names []string
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if len(names) == NumAttributes {
			return nil, fmt.Errorf("%w: more than %d names", ErrBadNames, NumAttributes)
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	if err := ValidateVariableNames(names); err != nil {
		return nil, err
	}
	return names, nil
}

// ValidateVariableNames checks that names can label the attributes in printed
// programs and be read back unambiguously: exactly NumAttributes distinct,
// non-blank names that contain no parenthesis or spaced operator and do not
// read as a number.
func ValidateVariableNames(names []string) error {
	if len(names) != NumAttributes {
		return fmt.Errorf("%w: got %d names, want %d", ErrBadNames, len(names), NumAttributes)
	}
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: name %d is blank", ErrBadNames, i+1)
		}
		if strings.ContainsAny(name, "()") {
			return fmt.Errorf("%w: name %q contains a parenthesis", ErrBadNames, name)
		}
		for _, op := range []string{" + ", " - ", " * ", " / "} {
			if strings.Contains(name, op) {
				return fmt.Errorf("%w: name %q contains the operator %q", ErrBadNames, name, strings.TrimSpace(op))
			}
		}
		if _, err := strconv.ParseFloat(name, 64); err == nil {
			return fmt.Errorf("%w: name %q reads as a number", ErrBadNames, name)
		}
		if j, dup := seen[name]; dup {
			return fmt.Errorf("%w: name %q repeated on lines %d and %d", ErrBadNames, name, j+1, i+1)
		}
		seen[name] = i
	}
	return nil
}

// LoadVariableNames reads a name file.
func LoadVariableNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := ReadVariableNames(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}
