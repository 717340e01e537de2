package export

import (
	"strconv"

	"welfare-committee-backend/src/models"
)

const (
	SubmissionsSheet = "Submissions"
	ChildrenSheet    = "Children"

	// DateLayout formats the submission date column.
	DateLayout = "2006-01-02 15:04:05"
)

type Column struct {
	Header string
	Width  float64
}

// Sheet is one tab of the workbook, rows in column order.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]string
}

func (s Sheet) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}

type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the named sheet, or false when absent.
func (w Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

var submissionColumns = []Column{
	{"ID", 10},
	{"Name", 30},
	{"Designation", 20},
	{"Gender", 10},
	{"Employee Code", 15},
	{"Mobile", 15},
	{"Alternate Mobile", 15},
	{"Landline", 15},
	{"Official Email", 30},
	{"Personal Email", 30},
	{"Joining Date", 15},
	{"Retirement Date", 15},
	{"Blood Group", 10},
	{"Present Address", 40},
	{"Permanent Address", 40},
	{"Spouse Name", 30},
	{"Spouse Working", 15},
	{"Spouse Medical Facility", 20},
	{"Number of Children", 15},
	{"Children Medical Facility", 20},
	{"PWD Category", 15},
	{"PWD Name", 30},
	{"Mother Name", 30},
	{"Mother DOB", 15},
	{"Mother Beneficiary", 15},
	{"Father Name", 30},
	{"Father DOB", 15},
	{"Father Beneficiary", 15},
	{"Additional Info", 40},
	{"Submission Date", 20},
}

var childColumns = []Column{
	{"Submission ID", 15},
	{"Parent Name", 30},
	{"Child Name", 30},
	{"Date of Birth", 15},
	{"Gender", 10},
}

// Project flattens submissions into the Submissions and Children sheets,
// keeping the input order. Every child of every submission gets a row.
func Project(subs []models.Submission) Workbook {
	submissions := Sheet{Name: SubmissionsSheet, Columns: submissionColumns, Rows: make([][]string, 0, len(subs))}
	children := Sheet{Name: ChildrenSheet, Columns: childColumns, Rows: [][]string{}}

	for _, s := range subs {
		submissions.Rows = append(submissions.Rows, submissionRow(s))
		for _, c := range s.Children {
			children.Rows = append(children.Rows, []string{s.ID, s.Name, c.Name, c.DOB, string(c.Gender)})
		}
	}
	return Workbook{Sheets: []Sheet{submissions, children}}
}

func submissionRow(s models.Submission) []string {
	date := ""
	if !s.SubmissionDate.IsZero() {
		date = s.SubmissionDate.Format(DateLayout)
	}
	pwdName := ""
	if s.PwdCategory.Bool() {
		pwdName = s.PwdName
	}
	return []string{
		s.ID,
		s.Name,
		s.Designation,
		string(s.Gender),
		s.EmployeeCode,
		s.Mobile,
		s.AlternateMobile,
		s.Landline,
		s.OfficialEmail,
		s.PersonalEmail,
		s.JoiningDate,
		s.RetirementDate,
		s.BloodGroup,
		s.PresentAddress,
		s.PermanentAddress,
		s.SpouseName,
		label(s.SpouseWorking, "Working", "Non-Working"),
		label(s.SpouseMedicalFacility, "Availed", "Not Availed"),
		strconv.Itoa(s.NumberOfChildren),
		label(s.ChildrenMedicalFacility, "Availed", "Not Availed"),
		label(s.PwdCategory, "Yes", "No"),
		pwdName,
		s.MotherName,
		s.MotherDOB,
		string(s.MotherBeneficiary),
		s.FatherName,
		s.FatherDOB,
		string(s.FatherBeneficiary),
		s.AdditionalInfo,
		date,
	}
}

func label(v models.YesNo, yes, no string) string {
	if v.Bool() {
		return yes
	}
	return no
}
