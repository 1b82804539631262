package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
	"gorm.io/gorm"
)

type RouterSuite struct {
	suite.Suite

	db     *gorm.DB
	router *gin.Engine
	auth   *services.AuthService
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterSuite) SetupTest() {
	s.db = openTestDB(s.T())

	companyRepo := repository.NewCompanyRepository(s.db)
	projectRepo := repository.NewProjectRepository(s.db)
	interactionRepo := repository.NewInteractionRepository(s.db)
	keywordRepo := repository.NewKeywordRepository(s.db)
	s.auth = services.NewAuthService(repository.NewUserRepository(s.db))

	s.router = NewRouter(RouterConfig{
		AuthService:        s.auth,
		CompanyService:     services.NewCompanyService(companyRepo),
		ProjectService:     services.NewProjectService(projectRepo, companyRepo),
		InteractionService: services.NewInteractionService(interactionRepo, projectRepo, companyRepo),
		KeywordService:     services.NewKeywordService(keywordRepo, interactionRepo, nil),
		FilterOptions:      services.NewFilterOptionsQuery(keywordRepo, interactionRepo),
		SessionStore:       cookie.NewStore([]byte("test-secret")),
	})
}

// login creates a user holding caps and returns its session cookies.
func (s *RouterSuite) login(username string, caps ...string) []*http.Cookie {
	_, err := s.auth.CreateUser(services.CreateUserInput{Username: username, Password: "password123"})
	s.Require().NoError(err)
	if len(caps) > 0 {
		s.Require().NoError(s.auth.Grant(username, caps))
	}

	w := s.do(http.MethodPost, "/auth/login", map[string]string{"username": username, "password": "password123"}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func (s *RouterSuite) do(method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) seedCompanyAndProject() (*models.Company, *models.Project) {
	company := &models.Company{Name: "Acme", Address: "Kyiv"}
	s.Require().NoError(s.db.Create(company).Error)
	project := &models.Project{
		Title:       "Website",
		CompanyID:   &company.ID,
		Description: "Redesign",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FinalDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Price:       100,
	}
	s.Require().NoError(s.db.Create(project).Error)
	return company, project
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestRequiresLogin() {
	w := s.do(http.MethodGet, "/", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	var apiErr apierrors.APIError
	s.decode(w, &apiErr)
	s.Equal(apierrors.ErrCodeUnauthorized, apiErr.Code)
}

func (s *RouterSuite) TestMissingCapabilityIsForbidden() {
	cookies := s.login("viewer")

	w := s.do(http.MethodGet, "/", nil, cookies)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/create", map[string]string{"name": "Acme", "address": "Kyiv"}, cookies)
	s.Equal(http.StatusForbidden, w.Code)

	var apiErr apierrors.APIError
	s.decode(w, &apiErr)
	s.Equal(apierrors.ErrCodeForbidden, apiErr.Code)

	w = s.do(http.MethodGet, "/interaction_list/", nil, cookies)
	s.Equal(http.StatusForbidden, w.Code)

	var count int64
	s.Require().NoError(s.db.Model(&models.Company{}).Count(&count).Error)
	s.Zero(count)
}

func (s *RouterSuite) TestCompanyCreateFlow() {
	cookies := s.login("editor", "company.add_company", "company.change_company")

	w := s.do(http.MethodGet, "/create", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var blank map[string]interface{}
	s.decode(w, &blank)
	s.Len(blank["phones"], 3)

	payload := map[string]interface{}{
		"name":     "Acme",
		"address":  "Kyiv",
		"managers": []map[string]interface{}{{"name": "john", "surname": "doe", "position": "CEO"}, {}},
		"phones":   []map[string]interface{}{{"phone": "0501234567"}},
		"emails":   []map[string]interface{}{{"email": "info@acme.test"}},
	}
	w = s.do(http.MethodPost, "/create", payload, cookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var detail dto.CompanyDetailDTO
	s.decode(w, &detail)
	s.Require().Len(detail.Managers, 1)
	s.Equal("John", detail.Managers[0].Name)
	s.Equal("Doe", detail.Managers[0].Surname)
	s.Equal("+380501234567", detail.Phones[0].Display)

	// an invalid email rejects the whole save
	payload["emails"] = []map[string]interface{}{{"email": "not-an-email"}}
	w = s.do(http.MethodPost, fmt.Sprintf("/%d/update", detail.ID), payload, cookies)
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var apiErr struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	s.decode(w, &apiErr)
	s.Equal(apierrors.ErrCodeInvalidInput, apiErr.Code)
	s.Contains(apiErr.Details, "emails[0].email")

	w = s.do(http.MethodGet, fmt.Sprintf("/%d", detail.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var stored dto.CompanyDetailDTO
	s.decode(w, &stored)
	s.Len(stored.Managers, 1)
	s.Equal("info@acme.test", stored.Emails[0].Email)

	w = s.do(http.MethodGet, "/999", nil, cookies)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/%d/delete", detail.ID), nil, cookies)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/%d", detail.ID), nil, cookies)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestCompanyListSort() {
	cookies := s.login("viewer")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Beta", "Alpha", "Gamma"} {
		s.Require().NoError(s.db.Create(&models.Company{Name: name, Address: "x", CreatedAt: base.Add(time.Duration(i) * time.Hour)}).Error)
	}

	names := func(query string) (string, []string) {
		w := s.do(http.MethodGet, "/"+query, nil, cookies)
		s.Require().Equal(http.StatusOK, w.Code)
		var resp dto.CompanyListResponse
		s.decode(w, &resp)
		out := make([]string, len(resp.Companies))
		for i, c := range resp.Companies {
			out[i] = c.Name
		}
		return resp.CurrentOrder, out
	}

	order, got := names("?sort=-date_create")
	s.Equal("-date_create", order)
	s.Equal([]string{"Gamma", "Alpha", "Beta"}, got)

	order, got = names("?sort=bogus")
	s.Equal("name", order)
	s.Equal([]string{"Alpha", "Beta", "Gamma"}, got)
}

func (s *RouterSuite) TestInteractionOwnershipGate() {
	company, project := s.seedCompanyAndProject()
	caps := []string{
		"management.view_interaction", "management.add_interaction",
		"management.change_interaction", "management.delete_interaction",
	}
	ownerCookies := s.login("owner", caps...)
	otherCookies := s.login("other", caps...)

	w := s.do(http.MethodPost, "/interaction/create", map[string]interface{}{
		"project_id":  project.ID,
		"company_id":  company.ID,
		"channel":     "call",
		"description": "Intro call",
		"grade":       3,
	}, ownerCookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.InteractionDTO
	s.decode(w, &created)

	update := map[string]interface{}{
		"project_id":  project.ID,
		"company_id":  company.ID,
		"channel":     "email",
		"description": "Hijacked",
		"grade":       1,
	}
	for _, path := range []string{"/interaction/%d/update", "/interaction/%d/delete"} {
		w = s.do(http.MethodPost, fmt.Sprintf(path, created.ID), update, otherCookies)
		s.Equal(http.StatusForbidden, w.Code)
	}

	var stored models.Interaction
	s.Require().NoError(s.db.First(&stored, created.ID).Error)
	s.Equal("Intro call", stored.Description)
	s.Equal(3, stored.Grade)

	w = s.do(http.MethodPost, "/interaction/999/update", update, ownerCookies)
	s.Equal(http.StatusNotFound, w.Code)

	update["description"] = "Follow-up"
	w = s.do(http.MethodPost, fmt.Sprintf("/interaction/%d/update", created.ID), update, ownerCookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.InteractionDTO
	s.decode(w, &updated)
	s.Equal("Follow-up", updated.Description)
	s.Require().NotNil(updated.Manager)
	s.Equal("owner", updated.Manager.Username)

	w = s.do(http.MethodPost, fmt.Sprintf("/interaction/%d/delete", created.ID), nil, ownerCookies)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestCompanyInteractionsAggregate() {
	company, project := s.seedCompanyAndProject()
	cookies := s.login("analyst", "management.view_interaction")

	path := fmt.Sprintf("/%d/company_interactions", company.ID)
	w := s.do(http.MethodGet, path, nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var empty dto.CompanyInteractionsResponse
	s.decode(w, &empty)
	s.False(empty.HasData)
	s.Nil(empty.AverageGrade)
	s.Empty(empty.Rows)

	for _, grade := range []int{4, 5, 3} {
		s.Require().NoError(s.db.Create(&models.Interaction{
			ProjectID: project.ID, CompanyID: company.ID, Channel: models.ChannelLetter, Description: "note", Grade: grade,
		}).Error)
	}

	w = s.do(http.MethodGet, path, nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.CompanyInteractionsResponse
	s.decode(w, &resp)
	s.True(resp.HasData)
	s.Require().NotNil(resp.AverageGrade)
	s.Equal(4.0, *resp.AverageGrade)
	s.Require().Len(resp.Rows, 3)
	for _, row := range resp.Rows {
		s.Equal(4.0, row.AverageGrade)
		s.Equal("Acme", row.CompanyName)
		s.Equal("Website", row.Project.Title)
	}

	w = s.do(http.MethodGet, fmt.Sprintf("/%d/project_interactions", project.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var projectResp dto.ProjectInteractionsResponse
	s.decode(w, &projectResp)
	s.Len(projectResp.Rows, 3)
	s.Equal("Acme", projectResp.Rows[0].CompanyName)

	w = s.do(http.MethodGet, "/999/company_interactions", nil, cookies)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestInteractionListFilterAndPagination() {
	company, project := s.seedCompanyAndProject()
	cookies := s.login("analyst", "management.view_interaction")

	for i := 0; i < 25; i++ {
		s.Require().NoError(s.db.Create(&models.Interaction{
			ProjectID: project.ID, CompanyID: company.ID, Channel: models.ChannelSite,
			Description: fmt.Sprintf("visit %d", i), Grade: i%5 + 1,
		}).Error)
	}
	s.Require().NoError(s.db.Create(&models.Interaction{
		ProjectID: project.ID, CompanyID: company.ID, Channel: models.ChannelCall, Description: "Pricing question", Grade: 2,
	}).Error)
	s.Require().NoError(s.db.Create(&models.Keyword{Keyword: "pricing"}).Error)

	var sizes []int
	for page := 1; page <= 3; page++ {
		w := s.do(http.MethodGet, fmt.Sprintf("/interaction_list/?q=visit&page=%d", page), nil, cookies)
		s.Require().Equal(http.StatusOK, w.Code)
		var resp dto.InteractionListResponse
		s.decode(w, &resp)
		s.EqualValues(25, resp.Pagination.Total)
		sizes = append(sizes, len(resp.Interactions))
	}
	s.Equal([]int{10, 10, 5}, sizes)

	w := s.do(http.MethodGet, "/interaction_list/?q=PRICING&q=nothing-matches", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.InteractionListResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Interactions, 1)
	s.Equal("Pricing question", resp.Interactions[0].Description)
	s.Equal([]string{"PRICING", "nothing-matches"}, resp.Query)
	s.Equal([]string{"pricing"}, resp.Keywords)
	s.ElementsMatch([]models.Channel{models.ChannelCall, models.ChannelSite}, resp.Channels)
}

func (s *RouterSuite) TestKeywordAndManagerProfile() {
	cookies := s.login("manager", "management.view_interaction")

	w := s.do(http.MethodPost, "/new_keyword", map[string]string{"keyword": "contract"}, cookies)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/new_keyword", map[string]string{"keyword": "contract"}, cookies)
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var apiErr struct {
		Details map[string]string `json:"details"`
	}
	s.decode(w, &apiErr)
	s.Contains(apiErr.Details, "keyword")

	w = s.do(http.MethodPost, "/new_keyword/suggest", nil, cookies)
	s.Equal(http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodPost, "/manager/update", map[string]string{"first_name": "Ann", "bio": "Sales"}, cookies)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/manager/detail/", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var profile dto.ProfileDTO
	s.decode(w, &profile)
	s.Equal("Ann", profile.FirstName)
	s.Equal("Sales", profile.Bio)
	s.Equal([]string{"management.view_interaction"}, profile.Capabilities)
}

func (s *RouterSuite) TestProjectLifecycle() {
	company, _ := s.seedCompanyAndProject()
	cookies := s.login("pm", "company.add_project", "company.change_project", "company.delete_project")

	w := s.do(http.MethodPost, "/project/create", map[string]interface{}{
		"title":       "CRM rollout",
		"company_id":  company.ID,
		"description": "Phase one",
		"start_date":  "2024-03-01",
		"final_date":  "2024-06-30",
		"price":       2500,
	}, cookies)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.ProjectDTO
	s.decode(w, &created)
	s.Equal("2024-03-01", created.StartDate.Format("2006-01-02"))
	s.Require().NotNil(created.Company)
	s.Equal("Acme", created.Company.Name)

	w = s.do(http.MethodPost, "/project/create", map[string]interface{}{"title": "x", "start_date": "03/01/2024"}, cookies)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/projects", nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ProjectListResponse
	s.decode(w, &list)
	s.EqualValues(2, list.Pagination.Total)

	w = s.do(http.MethodPost, fmt.Sprintf("/project/%d/delete", created.ID), nil, cookies)
	s.Require().Equal(http.StatusOK, w.Code)
	var deleted dto.ProjectDeletedResponse
	s.decode(w, &deleted)
	s.Require().NotNil(deleted.CompanyID)
	s.Equal(company.ID, *deleted.CompanyID)
}
