package models

import (
	"strings"
	"time"
)

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// YesNo is the two-valued answer used by every enum question on the form.
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

func (v YesNo) Bool() bool { return v == Yes }

// ParseGender matches case-insensitively; ok is false for anything else.
func ParseGender(raw string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male":
		return Male, true
	case "female":
		return Female, true
	}
	return "", false
}

// SubmissionFields are the persisted scalar fields of a Submission. Both
// storage backends embed this struct, so a field added here reaches the
// document and the relational schema together.
type SubmissionFields struct {
	Name             string `json:"name" bson:"name"`
	Designation      string `json:"designation" bson:"designation"`
	Gender           Gender `json:"gender" bson:"gender" gorm:"index"`
	EmployeeCode     string `json:"employeeCode" bson:"employeeCode" gorm:"index"`
	Mobile           string `json:"mobile" bson:"mobile"`
	AlternateMobile  string `json:"alternateMobile,omitempty" bson:"alternateMobile,omitempty"`
	Landline         string `json:"landline,omitempty" bson:"landline,omitempty"`
	OfficialEmail    string `json:"officialEmail" bson:"officialEmail"`
	PersonalEmail    string `json:"personalEmail,omitempty" bson:"personalEmail,omitempty"`
	OtherEmail       string `json:"otherEmail,omitempty" bson:"otherEmail,omitempty"`
	JoiningDate      string `json:"joiningDate,omitempty" bson:"joiningDate,omitempty"`
	RetirementDate   string `json:"retirementDate" bson:"retirementDate"`
	BloodGroup       string `json:"bloodGroup" bson:"bloodGroup"`
	PresentAddress   string `json:"presentAddress" bson:"presentAddress"`
	PermanentAddress string `json:"permanentAddress" bson:"permanentAddress"`
	PhotoPath        string `json:"photoPath" bson:"photoPath"`

	SpouseName                 string `json:"spouseName" bson:"spouseName"`
	SpouseWorking              YesNo  `json:"spouseWorking" bson:"spouseWorking"`
	SpouseMedicalFacility      YesNo  `json:"spouseMedicalFacility" bson:"spouseMedicalFacility"`
	SpouseMedicalThroughOffice bool   `json:"spouseMedicalThroughOffice" bson:"spouseMedicalThroughOffice"`

	NumberOfChildren        int    `json:"numberOfChildren" bson:"numberOfChildren"`
	ChildrenMedicalFacility YesNo  `json:"childrenMedicalFacility" bson:"childrenMedicalFacility"`
	PwdCategory             YesNo  `json:"pwdCategory" bson:"pwdCategory"`
	PwdName                 string `json:"pwdName,omitempty" bson:"pwdName,omitempty"`

	MotherName        string `json:"motherName,omitempty" bson:"motherName,omitempty"`
	MotherDOB         string `json:"motherDOB,omitempty" bson:"motherDOB,omitempty" gorm:"column:mother_dob"`
	MotherBeneficiary YesNo  `json:"motherBeneficiary" bson:"motherBeneficiary"`
	FatherName        string `json:"fatherName,omitempty" bson:"fatherName,omitempty"`
	FatherDOB         string `json:"fatherDOB,omitempty" bson:"fatherDOB,omitempty" gorm:"column:father_dob"`
	FatherBeneficiary YesNo  `json:"fatherBeneficiary" bson:"fatherBeneficiary"`

	AdditionalInfo string `json:"additionalInfo,omitempty" bson:"additionalInfo,omitempty"`

	SubmissionDate time.Time `json:"submissionDate" bson:"submissionDate" gorm:"index"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Submission is one employee's welfare form. ID is opaque: an ObjectID hex
// string or a decimal row id depending on the backend that created it.
type Submission struct {
	ID string `json:"id" bson:"-"`
	SubmissionFields
	Children []Child `json:"children,omitempty" bson:"-"`
}

// Child is a dependent listed under a Submission, in form entry order.
type Child struct {
	Name   string `json:"name" bson:"name"`
	DOB    string `json:"dob" bson:"dob" gorm:"column:dob"`
	Gender Gender `json:"gender" bson:"gender"`
}

// SubmissionDetail is the detail response shape: children are always
// present, as an empty array when there are none.
type SubmissionDetail struct {
	*Submission
	Children []Child `json:"children"`
}

func NewSubmissionDetail(sub *Submission) SubmissionDetail {
	children := sub.Children
	if children == nil {
		children = []Child{}
	}
	return SubmissionDetail{Submission: sub, Children: children}
}

// SetChildren replaces the children and keeps NumberOfChildren in step.
func (s *Submission) SetChildren(children []Child) {
	if children == nil {
		children = []Child{}
	}
	s.Children = children
	s.NumberOfChildren = len(children)
}
