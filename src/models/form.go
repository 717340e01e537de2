package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// SubmissionForm is the raw multipart payload of the public welfare form.
// The form tag is the multipart field name; validate tags hold the rules.
type SubmissionForm struct {
	Name             string `form:"name" validate:"required"`
	Designation      string `form:"designation" validate:"required"`
	Gender           string `form:"gender" validate:"required,oneof=Male Female"`
	EmployeeCode     string `form:"employeeCode" validate:"required"`
	Mobile           string `form:"mobile" validate:"required"`
	AlternateMobile  string `form:"alternateMobile"`
	Landline         string `form:"landline"`
	OfficialEmail    string `form:"officialEmail" validate:"required,email"`
	PersonalEmail    string `form:"personalEmail" validate:"omitempty,email"`
	OtherEmail       string `form:"otherEmail" validate:"omitempty,email"`
	JoiningDate      string `form:"joiningDate"`
	RetirementDate   string `form:"retirementDate" validate:"required"`
	BloodGroup       string `form:"bloodGroup" validate:"required"`
	PresentAddress   string `form:"presentAddress" validate:"required"`
	PermanentAddress string `form:"permanentAddress" validate:"required"`

	SpouseName                 string `form:"spouseName" validate:"required"`
	SpouseWorking              string `form:"spouseWorking" validate:"required,oneof=Yes No"`
	SpouseMedicalFacility      string `form:"spouseMedicalFacility" validate:"required,oneof=Yes No"`
	SpouseMedicalThroughOffice string `form:"spouseMedicalThroughOffice"`

	NumberOfChildren        string `form:"numberOfChildren" validate:"required,number"`
	ChildrenMedicalFacility string `form:"childrenMedicalFacility" validate:"omitempty,oneof=Yes No"`
	PwdCategory             string `form:"pwdCategory" validate:"omitempty,oneof=Yes No"`
	PwdName                 string `form:"pwdName" validate:"required_if=PwdCategory Yes"`

	MotherName        string `form:"motherName"`
	MotherDOB         string `form:"motherDOB"`
	MotherBeneficiary string `form:"motherBeneficiary" validate:"omitempty,oneof=Yes No"`
	FatherName        string `form:"fatherName"`
	FatherDOB         string `form:"fatherDOB"`
	FatherBeneficiary string `form:"fatherBeneficiary" validate:"omitempty,oneof=Yes No"`

	AdditionalInfo string `form:"additionalInfo"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return fld.Tag.Get("form")
		})
	})
	return validate
}

// DecodeSubmissionForm copies values from a flat key/value map (as produced
// by a multipart parser) into a SubmissionForm, trimming whitespace.
func DecodeSubmissionForm(fields map[string]string) SubmissionForm {
	var form SubmissionForm
	v := reflect.ValueOf(&form).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("form")
		if raw, ok := fields[key]; ok {
			v.Field(i).SetString(strings.TrimSpace(raw))
		}
	}
	return form
}

// Validate checks every rule at once and reports all problems together.
func (f SubmissionForm) Validate() error {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	verr := NewValidationError()
	for _, fe := range fieldErrs {
		verr.Add(problemFor(fe))
	}
	return verr
}

func problemFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return field + " must be a valid email address"
	case "number":
		return field + " must be a non-negative integer"
	case "required_if":
		parts := strings.Fields(fe.Param())
		if len(parts) == 2 {
			return fmt.Sprintf("%s is required when %s is %s", field, lowerFirst(parts[0]), parts[1])
		}
		return field + " is required"
	}
	return field + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// NewSubmissionFromForm validates the raw form fields and builds a typed
// Submission with enum defaults applied. It does not touch children,
// photoPath or dates; the caller owns those.
func NewSubmissionFromForm(fields map[string]string) (*Submission, error) {
	form := DecodeSubmissionForm(fields)
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return form.toSubmission(), nil
}

func (f SubmissionForm) toSubmission() *Submission {
	count, _ := strconv.Atoi(f.NumberOfChildren)
	gender, _ := ParseGender(f.Gender)

	s := &Submission{SubmissionFields: SubmissionFields{
		Name:             f.Name,
		Designation:      f.Designation,
		Gender:           gender,
		EmployeeCode:     f.EmployeeCode,
		Mobile:           f.Mobile,
		AlternateMobile:  f.AlternateMobile,
		Landline:         f.Landline,
		OfficialEmail:    f.OfficialEmail,
		PersonalEmail:    f.PersonalEmail,
		OtherEmail:       f.OtherEmail,
		JoiningDate:      f.JoiningDate,
		RetirementDate:   f.RetirementDate,
		BloodGroup:       f.BloodGroup,
		PresentAddress:   f.PresentAddress,
		PermanentAddress: f.PermanentAddress,

		SpouseName:            f.SpouseName,
		SpouseWorking:         yesNoOr(f.SpouseWorking, No),
		SpouseMedicalFacility: yesNoOr(f.SpouseMedicalFacility, No),

		NumberOfChildren:        count,
		ChildrenMedicalFacility: yesNoOr(f.ChildrenMedicalFacility, No),
		PwdCategory:             yesNoOr(f.PwdCategory, No),

		MotherName:        f.MotherName,
		MotherDOB:         f.MotherDOB,
		MotherBeneficiary: yesNoOr(f.MotherBeneficiary, No),
		FatherName:        f.FatherName,
		FatherDOB:         f.FatherDOB,
		FatherBeneficiary: yesNoOr(f.FatherBeneficiary, No),

		AdditionalInfo: f.AdditionalInfo,
	}}

	// only meaningful when the spouse avails the medical facility
	s.SpouseMedicalThroughOffice = s.SpouseMedicalFacility.Bool() && parseCheckbox(f.SpouseMedicalThroughOffice)
	if s.PwdCategory.Bool() {
		s.PwdName = f.PwdName
	}
	return s
}

func yesNoOr(raw string, def YesNo) YesNo {
	switch YesNo(raw) {
	case Yes, No:
		return YesNo(raw)
	}
	return def
}

// parseCheckbox accepts what browsers and the form client send for a ticked box.
func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ChildrenFormatError means the children JSON could not be decoded at all,
// as opposed to decoding into entries that fail validation.
type ChildrenFormatError struct {
	Err error
}

func (e *ChildrenFormatError) Error() string {
	return "childrenDetails is not valid JSON: " + e.Err.Error()
}

func (e *ChildrenFormatError) Unwrap() error { return e.Err }

// ParseChildren decodes the JSON-encoded childrenDetails field. Blank input
// and JSON null mean no children. A blank child gender defaults to Male,
// matching the form's initial selection.
func ParseChildren(raw string) ([]Child, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Child{}, nil
	}

	var entries []struct {
		Name   string `json:"name"`
		DOB    string `json:"dob"`
		Gender string `json:"gender"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, &ChildrenFormatError{Err: err}
	}

	children := make([]Child, 0, len(entries))
	verr := NewValidationError()
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		dob := strings.TrimSpace(e.DOB)
		if name == "" {
			verr.Add(fmt.Sprintf("children[%d].name is required", i))
		}
		if dob == "" {
			verr.Add(fmt.Sprintf("children[%d].dob is required", i))
		}
		gender := Male
		if strings.TrimSpace(e.Gender) != "" {
			g, ok := ParseGender(e.Gender)
			if !ok {
				verr.Add(fmt.Sprintf("children[%d].gender must be one of: Male, Female", i))
			}
			gender = g
		}
		children = append(children, Child{Name: name, DOB: dob, Gender: gender})
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return children, nil
}
