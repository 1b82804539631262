package forms

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/models"
)

// Row is one entry of a dependent collection.
type Row interface {
	RowID() uint64
	Deleted() bool
	Blank() bool
}

type ManagerRow struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name" validate:"required,max=20"`
	Surname  string `json:"surname" validate:"required,max=50"`
	Position string `json:"position" validate:"required,max=100"`
	Delete   bool   `json:"delete"`
}

func (r ManagerRow) RowID() uint64 { return r.ID }
func (r ManagerRow) Deleted() bool { return r.Delete }
func (r ManagerRow) Blank() bool {
	return r.Name == "" && r.Surname == "" && r.Position == ""
}

type PhoneRow struct {
	ID     uint64 `json:"id"`
	Phone  string `json:"phone" validate:"required,len=10,numeric"`
	Delete bool   `json:"delete"`
}

func (r PhoneRow) RowID() uint64 { return r.ID }
func (r PhoneRow) Deleted() bool { return r.Delete }
func (r PhoneRow) Blank() bool   { return r.Phone == "" }

type EmailRow struct {
	ID     uint64 `json:"id"`
	Email  string `json:"email" validate:"required,email,max=100"`
	Delete bool   `json:"delete"`
}

func (r EmailRow) RowID() uint64 { return r.ID }
func (r EmailRow) Deleted() bool { return r.Delete }
func (r EmailRow) Blank() bool   { return r.Email == "" }

// CompanyForm is the company together with its managers, phones and emails.
//
// A nil collection was not submitted and stays untouched on update; a non-nil
// collection replaces the stored one.
type CompanyForm struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description"`
	Address     string       `json:"address" validate:"required,max=200"`
	Managers    []ManagerRow `json:"managers"`
	Phones      []PhoneRow   `json:"phones"`
	Emails      []EmailRow   `json:"emails"`
}

const (
	PrefixManagers = "managers"
	PrefixPhones   = "phones"
	PrefixEmails   = "emails"
)

// NewCompanyForm returns the editor state for company, which may be nil when
// creating. Every collection gets ExtraFormRows blank rows appended.
func NewCompanyForm(company *models.Company) CompanyForm {
	form := CompanyForm{
		Managers: []ManagerRow{},
		Phones:   []PhoneRow{},
		Emails:   []EmailRow{},
	}

	if company != nil {
		form.Name = company.Name
		form.Description = company.Description
		form.Address = company.Address
		for _, m := range company.Managers {
			form.Managers = append(form.Managers, ManagerRow{ID: m.ID, Name: m.Name, Surname: m.Surname, Position: m.Position})
		}
		for _, p := range company.Phones {
			form.Phones = append(form.Phones, PhoneRow{ID: p.ID, Phone: p.Phone})
		}
		for _, e := range company.Emails {
			form.Emails = append(form.Emails, EmailRow{ID: e.ID, Email: e.Email})
		}
	}

	for i := 0; i < constants.ExtraFormRows; i++ {
		form.Managers = append(form.Managers, ManagerRow{})
		form.Phones = append(form.Phones, PhoneRow{})
		form.Emails = append(form.Emails, EmailRow{})
	}
	return form
}

var descriptionPolicy = bluemonday.UGCPolicy()

// Clean normalizes the submission and runs the schema pass: the company
// fields and every live row are checked without reference to a company id.
func (f *CompanyForm) Clean() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Address = strings.TrimSpace(f.Address)
	f.Description = strings.TrimSpace(descriptionPolicy.Sanitize(f.Description))

	errs := Struct(f)

	for i := range f.Managers {
		f.Managers[i].Name = titleCase(f.Managers[i].Name)
		f.Managers[i].Surname = titleCase(f.Managers[i].Surname)
		f.Managers[i].Position = strings.TrimSpace(f.Managers[i].Position)
	}
	for i := range f.Phones {
		f.Phones[i].Phone = strings.TrimSpace(f.Phones[i].Phone)
	}
	for i := range f.Emails {
		f.Emails[i].Email = strings.TrimSpace(f.Emails[i].Email)
	}

	cleanRows(errs, PrefixManagers, f.Managers)
	cleanRows(errs, PrefixPhones, f.Phones)
	cleanRows(errs, PrefixEmails, f.Emails)

	return errs.Err()
}

func cleanRows[R Row](errs Errors, prefix string, rows []R) {
	seen := make(map[uint64]struct{}, len(rows))
	for i, row := range rows {
		if id := row.RowID(); id != 0 {
			if _, dup := seen[id]; dup {
				errs.Add(rowKey(prefix, i, "id"), "Please correct the duplicate data.")
				continue
			}
			seen[id] = struct{}{}
		}
		if !Live(row) {
			continue
		}
		errs.Merge(rowKey(prefix, i, ""), Struct(row))
	}
}

// Live reports whether a row should be persisted.
func Live[R Row](row R) bool {
	if row.Deleted() {
		return false
	}
	return row.RowID() != 0 || !row.Blank()
}

// CheckOwnership is the referential pass. It runs once the company id is
// known and requires every submitted row id to be one of existing.
func CheckOwnership[R Row](prefix string, rows []R, existing map[uint64]struct{}) Errors {
	errs := Errors{}
	for i, row := range rows {
		id := row.RowID()
		if id == 0 {
			continue
		}
		if _, ok := existing[id]; !ok {
			errs.Add(rowKey(prefix, i, "id"), "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	return errs
}

func rowKey(prefix string, index int, field string) string {
	key := fmt.Sprintf("%s[%d]", prefix, index)
	if field != "" {
		key += "." + field
	}
	return key
}

func titleCase(s string) string {
	// cases.Caser keeps state, so one is built per call.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// CompanyModel copies the cleaned company fields onto company.
func (f *CompanyForm) CompanyModel(company *models.Company) {
	company.Name = f.Name
	company.Description = f.Description
	company.Address = f.Address
}

// ManagerModels returns the live managers, or nil if not submitted.
func (f *CompanyForm) ManagerModels() []models.CompanyManager {
	if f.Managers == nil {
		return nil
	}
	out := []models.CompanyManager{}
	for _, r := range f.Managers {
		if Live(r) {
			out = append(out, models.CompanyManager{ID: r.ID, Name: r.Name, Surname: r.Surname, Position: r.Position})
		}
	}
	return out
}

// PhoneModels returns the live phones, or nil if not submitted.
func (f *CompanyForm) PhoneModels() []models.Phone {
	if f.Phones == nil {
		return nil
	}
	out := []models.Phone{}
	for _, r := range f.Phones {
		if Live(r) {
			out = append(out, models.Phone{ID: r.ID, Phone: r.Phone})
		}
	}
	return out
}

// EmailModels returns the live emails, or nil if not submitted.
func (f *CompanyForm) EmailModels() []models.CompanyEmail {
	if f.Emails == nil {
		return nil
	}
	out := []models.CompanyEmail{}
	for _, r := range f.Emails {
		if Live(r) {
			out = append(out, models.CompanyEmail{ID: r.ID, Email: r.Email})
		}
	}
	return out
}
