package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.SQLiteDialector(":memory:"), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func validationFields(t *testing.T, err error) forms.Errors {
	t.Helper()
	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestParseCompanySort(t *testing.T) {
	assert.Equal(t, repository.OrderNameAsc, ParseCompanySort(""))
	assert.Equal(t, repository.OrderNameAsc, ParseCompanySort("address"))
	assert.Equal(t, repository.OrderNameDesc, ParseCompanySort("-name"))
	assert.Equal(t, repository.OrderDateCreateAsc, ParseCompanySort("date_create"))
	assert.Equal(t, repository.OrderDateCreateDesc, ParseCompanySort("-date_create"))
}

func TestCompanyService_CreateCompany_Normalizes(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db))

	form := forms.NewCompanyForm(nil)
	form.Name = "  Acme  "
	form.Address = "Kyiv"
	form.Description = `<p>Hello</p><script>alert(1)</script>`
	form.Managers[0] = forms.ManagerRow{Name: "john", Surname: "doe", Position: "CEO"}
	form.Phones[0] = forms.PhoneRow{Phone: "0501234567"}

	company, err := svc.CreateCompany(&form)
	require.NoError(t, err)

	stored, err := svc.GetCompany(company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)
	assert.Equal(t, "<p>Hello</p>", stored.Description)
	require.Len(t, stored.Managers, 1)
	assert.Equal(t, "John", stored.Managers[0].Name)
	assert.Equal(t, "Doe", stored.Managers[0].Surname)
	require.Len(t, stored.Phones, 1)
	assert.Equal(t, "+380501234567", stored.Phones[0].Display())
	// the blank extra email rows were ignored
	assert.Empty(t, stored.Emails)
}

func TestCompanyService_CreateCompany_InvalidRowWritesNothing(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db))

	form := forms.NewCompanyForm(nil)
	form.Name = "Acme"
	form.Address = "Kyiv"
	form.Managers[0] = forms.ManagerRow{Name: "John", Surname: "Doe", Position: "CEO"}
	form.Phones[1] = forms.PhoneRow{Phone: "12345"}

	_, err := svc.CreateCompany(&form)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "phones[1].phone")

	for _, model := range []interface{}{&models.Company{}, &models.CompanyManager{}, &models.Phone{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestCompanyService_CreateCompany_RejectsExistingRowIDs(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db))

	first := forms.NewCompanyForm(nil)
	first.Name = "First"
	first.Address = "Kyiv"
	first.Phones[0] = forms.PhoneRow{Phone: "0500000001"}
	company, err := svc.CreateCompany(&first)
	require.NoError(t, err)

	second := forms.CompanyForm{
		Name:    "Second",
		Address: "Lviv",
		Phones:  []forms.PhoneRow{{ID: company.Phones[0].ID, Phone: "0500000002"}},
	}
	_, err = svc.CreateCompany(&second)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "phones[0].id")

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompanyService_UpdateCompany(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db))

	form := forms.NewCompanyForm(nil)
	form.Name = "Acme"
	form.Address = "Kyiv"
	form.Phones[0] = forms.PhoneRow{Phone: "0500000001"}
	form.Phones[1] = forms.PhoneRow{Phone: "0500000002"}
	form.Emails[0] = forms.EmailRow{Email: "a@acme.test"}
	company, err := svc.CreateCompany(&form)
	require.NoError(t, err)

	edit, err := svc.EditForm(&company.ID)
	require.NoError(t, err)
	require.Len(t, edit.Phones, 2+3)
	edit.Phones[0].Delete = true
	edit.Phones[2] = forms.PhoneRow{Phone: "0500000003"}
	edit.Emails = nil

	updated, err := svc.UpdateCompany(company.ID, &edit)
	require.NoError(t, err)

	phones := make([]string, len(updated.Phones))
	for i, p := range updated.Phones {
		phones[i] = p.Phone
	}
	assert.Equal(t, []string{"0500000002", "0500000003"}, phones)
	require.Len(t, updated.Emails, 1)
}

func TestCompanyService_UpdateCompany_ForeignRowRollsBack(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db))

	mk := func(name, phone string) *models.Company {
		f := forms.NewCompanyForm(nil)
		f.Name = name
		f.Address = "Kyiv"
		f.Phones[0] = forms.PhoneRow{Phone: phone}
		c, err := svc.CreateCompany(&f)
		require.NoError(t, err)
		return c
	}
	acme := mk("Acme", "0500000001")
	other := mk("Other", "0500000002")

	edit, err := svc.EditForm(&acme.ID)
	require.NoError(t, err)
	edit.Name = "Renamed"
	edit.Phones = append(edit.Phones, forms.PhoneRow{ID: other.Phones[0].ID, Phone: "0509999999"})

	_, err = svc.UpdateCompany(acme.ID, &edit)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "phones[4].id")

	stored, err := svc.GetCompany(acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)

	otherStored, err := svc.GetCompany(other.ID)
	require.NoError(t, err)
	require.Len(t, otherStored.Phones, 1)
	assert.Equal(t, "0500000002", otherStored.Phones[0].Phone)
}

func TestCompanyService_ListAndDelete(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewCompanyService(repository.NewCompanyRepository(db))

	f := forms.CompanyForm{Name: "Acme", Address: "Kyiv"}
	company, err := svc.CreateCompany(&f)
	require.NoError(t, err)

	companies, total, err := svc.ListCompanies(ParseCompanySort("nope"), utils.NewPaginationParams(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, companies, 1)

	require.NoError(t, svc.DeleteCompany(company.ID))
	assert.ErrorIs(t, svc.DeleteCompany(company.ID), ErrCompanyNotFound)

	_, err = svc.GetCompany(company.ID)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}
