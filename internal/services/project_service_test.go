package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/forms"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/utils"
)

func TestProjectService(t *testing.T) {
	db := setupServiceDB(t)
	companyRepo := repository.NewCompanyRepository(db)
	svc := NewProjectService(repository.NewProjectRepository(db), companyRepo)

	company := &models.Company{Name: "Acme", Address: "Kyiv"}
	require.NoError(t, db.Create(company).Error)

	start := forms.NewDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	final := forms.NewDate(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	price := int64(1500)
	missing := company.ID + 10

	_, err := svc.CreateProject(ProjectInput{
		Title:       "Website",
		CompanyID:   &missing,
		Description: "Redesign",
		StartDate:   &start,
		FinalDate:   &final,
		Price:       &price,
	})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "company_id")

	negative := int64(-1)
	_, err = svc.CreateProject(ProjectInput{Title: "Website", CompanyID: &company.ID, Price: &negative})
	fields = validationFields(t, err)
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "start_date")
	assert.Contains(t, fields, "description")

	// a final date before the start date is accepted
	project, err := svc.CreateProject(ProjectInput{
		Title:       "Website",
		CompanyID:   &company.ID,
		Description: "Redesign",
		StartDate:   &start,
		FinalDate:   &final,
		Price:       &price,
	})
	require.NoError(t, err)
	require.NotNil(t, project.Company)
	assert.Equal(t, "Acme", project.Company.Name)
	assert.EqualValues(t, 1500, project.Price)

	input := ProjectForm(project)
	input.Title = "Website v2"
	updated, err := svc.UpdateProject(project.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Website v2", updated.Title)
	assert.Equal(t, "2024-05-01", updated.StartDate.Format(forms.DateLayout))

	projects, total, err := svc.ListProjects(utils.NewPaginationParams(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, projects, 1)

	companyID, err := svc.DeleteProject(project.ID)
	require.NoError(t, err)
	require.NotNil(t, companyID)
	assert.Equal(t, company.ID, *companyID)

	_, err = svc.GetProject(project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
