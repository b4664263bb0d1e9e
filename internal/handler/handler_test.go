package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/handler"
	"github.com/staff-portfolio-api/internal/repository"
	"github.com/staff-portfolio-api/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.Staff{},
		&domain.Project{},
		&domain.KeywordGroup{},
		&domain.Keyword{},
		&domain.ProjectKeyword{},
		&domain.StaffExperience{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	seed(t, db)

	staffRepo := repository.NewStaffRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	expRepo := repository.NewExperienceRepository(db)

	staffService := service.NewStaffService(staffRepo, projectRepo)
	projectService := service.NewProjectService(projectRepo, staffRepo, expRepo)
	keywordService := service.NewKeywordService(keywordRepo, staffRepo)

	uploadDir := t.TempDir()
	staffHandler := handler.NewStaffHandler(staffService, uploadDir, logger)
	projectHandler := handler.NewProjectHandler(projectService, keywordService, uploadDir, logger)
	keywordHandler := handler.NewKeywordHandler(keywordService, logger)

	router := handler.NewRouter(staffHandler, projectHandler, keywordHandler, logger)

	ts := &testServer{server: httptest.NewServer(router.Setup()), db: db}
	t.Cleanup(func() {
		ts.server.Close()
		sqlDB.Close()
	})
	return ts
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	staff := []domain.Staff{
		{StaffID: 37704, StaffName: "Alice Chen", Email: "alice.chen@example.com", LocationName: "Brisbane", StartDate: date(2015, 3, 1), JobTitle: "Senior Engineer", GradeLevel: 5, DisciplineName: "Civil"},
		{StaffID: 56876, StaffName: "Carol Diaz", Email: "carol.diaz@example.com", LocationName: "Brisbane", StartDate: date(2018, 9, 17), JobTitle: "Engineer", GradeLevel: 4, DisciplineName: "Structural"},
		{StaffID: 59754, StaffName: "Bob Singh", Email: "bob.singh@example.com", LocationName: "Sydney", StartDate: date(2012, 1, 9), JobTitle: "Project Manager", GradeLevel: 7, DisciplineName: "Civil"},
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}

	projects := []domain.Project{
		{
			ProjectCode: 22398800, JobNameLong: "RIVERSIDE EXPANSION",
			StartDate: date(2019, 1, 10), EndDate: date(2021, 5, 30),
			ClientName: "Acme", CountryName: "Australia", Town: "Brisbane", State: "QLD",
			BusinessName: "Infrastructure", PercentComplete: 80,
			ProjectManagerID: 59754, ProjectManagerName: "Bob Singh",
			Confidential: false,
		},
		{
			ProjectCode: 31220000, JobNameLong: "HARBOUR TUNNEL",
			StartDate: date(2022, 2, 1), EndDate: date(2025, 8, 1),
			ClientName: "Acme", CountryName: "Australia", Town: "Sydney", State: "NSW",
			BusinessName: "Infrastructure", PercentComplete: 35,
			ProjectManagerID: 37704, ProjectManagerName: "Alice Chen",
			Confidential: true,
		},
		{
			ProjectCode: 40010000, JobNameLong: "DESAL PLANT",
			StartDate: date(2020, 7, 15), EndDate: date(2023, 12, 1),
			ClientName: "Globex", CountryName: "Australia", Town: "Perth", State: "WA",
			BusinessName: "Water", PercentComplete: 40,
			ProjectManagerID: 59754, ProjectManagerName: "Bob Singh",
			Confidential: false,
		},
	}
	if err := db.Create(&projects).Error; err != nil {
		t.Fatalf("failed to seed projects: %v", err)
	}

	groups := []domain.KeywordGroup{
		{KeywordGroupCode: "G1", KeywordGroupName: "Disciplines"},
		{KeywordGroupCode: "G2", KeywordGroupName: "Sectors"},
	}
	if err := db.Create(&groups).Error; err != nil {
		t.Fatalf("failed to seed keyword groups: %v", err)
	}
	keywords := []domain.Keyword{
		{KeywordCode: "K100", Keyword: "Bridges", KeywordGroupCode: "G1"},
		{KeywordCode: "K200", Keyword: "Rail", KeywordGroupCode: "G2"},
		{KeywordCode: "K300", Keyword: "Water", KeywordGroupCode: "G1"},
	}
	if err := db.Create(&keywords).Error; err != nil {
		t.Fatalf("failed to seed keywords: %v", err)
	}
	links := []domain.ProjectKeyword{
		{ProjectCode: 22398800, KeywordCode: "K100"},
		{ProjectCode: 22398800, KeywordCode: "K200"},
		{ProjectCode: 31220000, KeywordCode: "K200"},
		{ProjectCode: 40010000, KeywordCode: "K300"},
	}
	if err := db.Create(&links).Error; err != nil {
		t.Fatalf("failed to seed project keywords: %v", err)
	}

	note := func(s string) *string { return &s }
	experience := []domain.StaffExperience{
		{ProjectCode: 22398800, StaffID: 37704, TotalHrs: 120, Experience: note("Bridge design lead")},
		{ProjectCode: 22398800, StaffID: 56876, TotalHrs: 80, Experience: note("Structural checks")},
		{ProjectCode: 31220000, StaffID: 37704, TotalHrs: 50, Experience: note("Tunnel alignment")},
		{ProjectCode: 40010000, StaffID: 59754, TotalHrs: 200, Experience: note("Delivery manager")},
		{ProjectCode: 40010000, StaffID: 37704, TotalHrs: 30, Experience: note("Intake design")},
	}
	for i := range experience {
		if err := db.Create(&experience[i]).Error; err != nil {
			t.Fatalf("failed to seed experience: %v", err)
		}
	}
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return decodeResponse(t, resp)
}

func sendJSON(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) (int, map[string]any) {
	t.Helper()
	defer resp.Body.Close()
	body := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func items(t *testing.T, body map[string]any, key string) []any {
	t.Helper()
	raw, ok := body[key]
	if !ok {
		t.Fatalf("response has no %q key: %v", key, body)
	}
	list, ok := raw.([]any)
	if !ok {
		t.Fatalf("%q is not a list: %T", key, raw)
	}
	return list
}

func object(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()
	raw, ok := body[key]
	if !ok {
		t.Fatalf("response has no %q key: %v", key, body)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("%q is not an object: %T", key, raw)
	}
	return obj
}

func TestAPIDirectory(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["GET /api"] != "Welcome to the staff portfolio API!" {
		t.Errorf(`expected a "GET /api" directory entry, got %v`, body)
	}
	for _, endpoint := range []string{
		"GET /api/staff/meta",
		"GET /api/projects/staff",
		"GET /api/keywords/groups/{id}",
	} {
		if _, ok := body[endpoint]; !ok {
			t.Errorf("directory is missing %q: %v", endpoint, body)
		}
	}
}

func TestPathNotFound(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/bogus")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if body["msg"] != "Path not found! :-(" {
		t.Errorf("unexpected message: %v", body["msg"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t)

	for _, url := range []string{
		ts.server.URL + "/api/staff/meta",
		ts.server.URL + "/api/projects",
		ts.server.URL + "/api/keywords",
	} {
		status, body := sendJSON(t, http.MethodDelete, url, nil)
		if status != http.StatusMethodNotAllowed {
			t.Errorf("DELETE %s: expected 405, got %d", url, status)
		}
		if body["msg"] != "method not allowed!!!" {
			t.Errorf("DELETE %s: unexpected message: %v", url, body["msg"])
		}
	}
}

func TestStaffList(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/staff/meta")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "staffMeta")); got != 3 {
		t.Errorf("expected 3 staff, got %d", got)
	}

	status, body = getJSON(t, ts.server.URL+"/api/staff/meta?LocationName=Brisbane")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "staffMeta")); got != 2 {
		t.Errorf("expected 2 staff in Brisbane, got %d", got)
	}

	status, body = getJSON(t, ts.server.URL+"/api/staff/meta?ShoeSize=42")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["msg"] != "bad request to db!!!" {
		t.Errorf("unexpected message: %v", body["msg"])
	}
}

func TestStaffGetByID(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/staff/meta/37704")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	staff := object(t, body, "staffMeta")
	if staff["StaffName"] != "Alice Chen" {
		t.Errorf("unexpected staff: %v", staff["StaffName"])
	}
	if staff["qualifications"] == nil {
		t.Errorf("expected empty list for qualifications, got null")
	}

	status, body = getJSON(t, ts.server.URL+"/api/staff/meta/99999")
	if status != http.StatusNotFound || body["msg"] != "StaffID not found" {
		t.Fatalf("expected 404 StaffID not found, got %d %v", status, body["msg"])
	}

	status, _ = getJSON(t, ts.server.URL+"/api/staff/meta/abc")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", status)
	}
}

func TestStaffPatch(t *testing.T) {
	ts := setupTestServer(t)

	status, body := sendJSON(t, http.MethodPatch, ts.server.URL+"/api/staff/meta/37704", map[string]any{
		"nationality":    "Australian",
		"qualifications": []string{"BEng", "CPEng"},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	staff := object(t, body, "staffMeta")
	if staff["nationality"] != "Australian" {
		t.Errorf("nationality not updated: %v", staff["nationality"])
	}

	// Один недопустимый ключ отклоняет патч целиком
	status, body = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/staff/meta/37704", map[string]any{
		"nationality": "British",
		"ShoeSize":    42,
	})
	if status != http.StatusBadRequest || body["msg"] != "bad request to db!!!" {
		t.Fatalf("expected 400 bad request, got %d %v", status, body["msg"])
	}
	_, body = getJSON(t, ts.server.URL+"/api/staff/meta/37704")
	if object(t, body, "staffMeta")["nationality"] != "Australian" {
		t.Errorf("rejected patch must not change the entity")
	}

	// Неизменяемый идентификатор
	status, _ = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/staff/meta/37704", map[string]any{
		"StaffID": 1,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for identifier patch, got %d", status)
	}

	status, body = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/staff/meta/99999", map[string]any{
		"nationality": "Australian",
	})
	if status != http.StatusNotFound || body["msg"] != "StaffID not found" {
		t.Fatalf("expected 404 for unknown staff, got %d %v", status, body["msg"])
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)

	status, body := sendJSON(t, http.MethodPost, ts.server.URL+"/api/staff/login", map[string]any{"StaffID": 59754})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	creds := object(t, body, "credentials")
	if creds["GradeLevel"] != float64(7) {
		t.Errorf("unexpected grade: %v", creds["GradeLevel"])
	}
	managed, _ := creds["ProjectManagerFor"].([]any)
	if len(managed) != 2 || managed[0] != float64(22398800) || managed[1] != float64(40010000) {
		t.Errorf("unexpected managed projects: %v", managed)
	}

	status, body = sendJSON(t, http.MethodPost, ts.server.URL+"/api/staff/login", map[string]any{})
	if status != http.StatusNotFound || body["msg"] != "No staff id provided!!!" {
		t.Fatalf("expected 404 no staff id, got %d %v", status, body["msg"])
	}

	status, _ = sendJSON(t, http.MethodPost, ts.server.URL+"/api/staff/login", map[string]any{"StaffID": "abc"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", status)
	}

	status, body = sendJSON(t, http.MethodPost, ts.server.URL+"/api/staff/login", map[string]any{"StaffID": 12345})
	if status != http.StatusNotFound || body["msg"] != "StaffID not found" {
		t.Fatalf("expected 404 for unknown staff, got %d %v", status, body["msg"])
	}
}

func TestProjectList(t *testing.T) {
	ts := setupTestServer(t)

	// Конфиденциальные проекты скрыты по умолчанию
	status, body := getJSON(t, ts.server.URL+"/api/projects")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	projects := items(t, body, "projects")
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	first := projects[0].(map[string]any)
	if first["ProjectCode"] != float64(22398800) {
		t.Errorf("unexpected order: %v", first["ProjectCode"])
	}
	if _, ok := first["Keywords"].([]any); !ok {
		t.Errorf("expected keyword list on project, got %T", first["Keywords"])
	}

	status, body = getJSON(t, ts.server.URL+"/api/projects?includeConfidential=true")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "projects")); got != 3 {
		t.Errorf("expected 3 projects with confidential, got %d", got)
	}

	status, body = getJSON(t, ts.server.URL+"/api/projects?ClientName=Acme")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "projects")); got != 1 {
		t.Errorf("expected 1 Acme project, got %d", got)
	}

	// Нижняя граница процента готовности
	status, body = getJSON(t, ts.server.URL+"/api/projects?PercentComplete=50")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	projects = items(t, body, "projects")
	if len(projects) != 1 || projects[0].(map[string]any)["ProjectCode"] != float64(22398800) {
		t.Errorf("unexpected PercentComplete filter result: %v", projects)
	}

	status, body = getJSON(t, ts.server.URL+"/api/projects?StartDateAfter=2020-01-01")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	projects = items(t, body, "projects")
	if len(projects) != 1 || projects[0].(map[string]any)["ProjectCode"] != float64(40010000) {
		t.Errorf("unexpected date filter result: %v", projects)
	}

	status, _ = getJSON(t, ts.server.URL+"/api/projects?Budget=1000000")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter, got %d", status)
	}
}

func TestProjectListKeywordMatching(t *testing.T) {
	ts := setupTestServer(t)

	// AND: набор проекта - надмножество списка
	status, body := getJSON(t, ts.server.URL+"/api/projects?Keywords=K100;K200")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	projects := items(t, body, "projects")
	if len(projects) != 1 || projects[0].(map[string]any)["ProjectCode"] != float64(22398800) {
		t.Errorf("unexpected AND result: %v", projects)
	}

	status, body = getJSON(t, ts.server.URL+"/api/projects?Keywords=K100;K300&KeywordQueryType=AND")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "projects")); got != 0 {
		t.Errorf("expected no project with both K100 and K300, got %d", got)
	}

	// OR: достаточно пересечения
	status, body = getJSON(t, ts.server.URL+"/api/projects?Keywords=K100;K300&KeywordQueryType=OR")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "projects")); got != 2 {
		t.Errorf("expected 2 projects for OR, got %d", got)
	}

	// Конфиденциальный проект не появляется даже при совпадении
	status, body = getJSON(t, ts.server.URL+"/api/projects?Keywords=K200&KeywordQueryType=OR")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	projects = items(t, body, "projects")
	if len(projects) != 1 || projects[0].(map[string]any)["ProjectCode"] != float64(22398800) {
		t.Errorf("confidential project leaked: %v", projects)
	}
}

func TestProjectGet(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/project/22398800")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	project := object(t, body, "project")
	if project["JobNameLong"] != "RIVERSIDE EXPANSION" {
		t.Errorf("unexpected project: %v", project["JobNameLong"])
	}
	keywords, _ := project["Keywords"].([]any)
	if len(keywords) != 2 || keywords[0] != "K100" || keywords[1] != "K200" {
		t.Errorf("unexpected keywords: %v", keywords)
	}

	status, body = getJSON(t, ts.server.URL+"/api/project/99999999")
	if status != http.StatusNotFound || body["msg"] != "ProjectCode not found" {
		t.Fatalf("expected 404 ProjectCode not found, got %d %v", status, body["msg"])
	}
}

func TestProjectGetWithExperience(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/project/22398800?StaffID=37704")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	project := object(t, body, "project")
	if project["TotalHrs"] != float64(120) {
		t.Errorf("unexpected hours: %v", project["TotalHrs"])
	}
	if project["experience"] != "Bridge design lead" {
		t.Errorf("unexpected experience: %v", project["experience"])
	}
	if project["StaffID"] != float64(37704) {
		t.Errorf("unexpected staff id: %v", project["StaffID"])
	}

	status, body = getJSON(t, ts.server.URL+"/api/project/22398800?StaffID=59754")
	if status != http.StatusNotFound || body["msg"] != "No staff time booked to project - use add experience instead!!!" {
		t.Fatalf("expected 404 no time booked, got %d %v", status, body["msg"])
	}
}

func TestProjectPatch(t *testing.T) {
	ts := setupTestServer(t)

	// Длинное имя проекта приводится к верхнему регистру
	status, body := sendJSON(t, http.MethodPatch, ts.server.URL+"/api/project/40010000", map[string]any{
		"JobNameLong": "Desal Plant Stage Two",
		"ClientName":  "Globex International",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	project := object(t, body, "project")
	if project["JobNameLong"] != "DESAL PLANT STAGE TWO" {
		t.Errorf("expected uppercased name, got %v", project["JobNameLong"])
	}
	if project["ClientName"] != "Globex International" {
		t.Errorf("client not updated: %v", project["ClientName"])
	}

	// Поля других подсистем молча отбрасываются
	status, body = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/project/40010000", map[string]any{
		"Town":     "Fremantle",
		"imgURL":   []string{"x.png"},
		"Keywords": "K100",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	project = object(t, body, "project")
	if project["Town"] != "Fremantle" {
		t.Errorf("town not updated: %v", project["Town"])
	}
	images, _ := project["imgURL"].([]any)
	if len(images) != 0 {
		t.Errorf("imgURL must be ignored by patch: %v", images)
	}

	status, _ = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/project/40010000", map[string]any{
		"ProjectCode": 1,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for identifier patch, got %d", status)
	}

	status, _ = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/project/40010000", map[string]any{
		"Budget": 10,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown attribute, got %d", status)
	}
}

func TestPortfolio(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/projects/staff")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	portfolio := object(t, body, "staffPortfolio")
	staffList := items(t, portfolio, "staffList")
	if len(staffList) != 3 {
		t.Fatalf("expected 3 staff, got %d", len(staffList))
	}

	// Порядок - по первой записи учёта времени
	first := staffList[0].(map[string]any)
	if first["StaffID"] != float64(37704) || first["TotalHrs"] != float64(150) || first["ProjectCount"] != float64(2) {
		t.Errorf("unexpected first aggregate: %v", first)
	}
	second := staffList[1].(map[string]any)
	if second["StaffID"] != float64(56876) || second["TotalHrs"] != float64(80) {
		t.Errorf("unexpected second aggregate: %v", second)
	}
	third := staffList[2].(map[string]any)
	if third["StaffID"] != float64(59754) || third["TotalHrs"] != float64(200) {
		t.Errorf("unexpected third aggregate: %v", third)
	}

	codes := items(t, portfolio, "projects")
	if len(codes) != 2 || codes[0] != float64(22398800) || codes[1] != float64(40010000) {
		t.Errorf("unexpected project codes: %v", codes)
	}

	// Конфиденциальный проект добавляет часы только по явному запросу
	status, body = getJSON(t, ts.server.URL+"/api/projects/staff?includeConfidential=true")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	portfolio = object(t, body, "staffPortfolio")
	first = items(t, portfolio, "staffList")[0].(map[string]any)
	if first["TotalHrs"] != float64(200) || first["ProjectCount"] != float64(3) {
		t.Errorf("unexpected confidential aggregate: %v", first)
	}

	// Фильтр по ключевым словам сужает агрегаты
	status, body = getJSON(t, ts.server.URL+"/api/projects/staff?Keywords=K100")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	portfolio = object(t, body, "staffPortfolio")
	staffList = items(t, portfolio, "staffList")
	if len(staffList) != 2 {
		t.Fatalf("expected 2 staff for K100, got %d", len(staffList))
	}
	codes = items(t, portfolio, "projects")
	if len(codes) != 1 || codes[0] != float64(22398800) {
		t.Errorf("unexpected filtered codes: %v", codes)
	}

	// Смешанный фильтр: штатный атрибут в агрегирующем запросе
	status, body = getJSON(t, ts.server.URL+"/api/projects/staff?GradeLevel=5")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	portfolio = object(t, body, "staffPortfolio")
	staffList = items(t, portfolio, "staffList")
	if len(staffList) != 1 || staffList[0].(map[string]any)["StaffID"] != float64(37704) {
		t.Errorf("unexpected grade filter result: %v", staffList)
	}
}

func TestPortfolioForProjectList(t *testing.T) {
	ts := setupTestServer(t)

	status, body := sendJSON(t, http.MethodPost, ts.server.URL+"/api/projects/staff", map[string]any{
		"Projects": []int64{22398800, 40010000},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	staffList := items(t, body, "staffList")
	if len(staffList) != 3 {
		t.Fatalf("expected 3 staff, got %d", len(staffList))
	}
	// Порядок - по возрастанию StaffID
	ids := []float64{
		staffList[0].(map[string]any)["StaffID"].(float64),
		staffList[1].(map[string]any)["StaffID"].(float64),
		staffList[2].(map[string]any)["StaffID"].(float64),
	}
	if ids[0] != 37704 || ids[1] != 56876 || ids[2] != 59754 {
		t.Errorf("unexpected order: %v", ids)
	}
	if staffList[0].(map[string]any)["TotalHrs"] != float64(150) {
		t.Errorf("unexpected hours: %v", staffList[0])
	}

	status, body = sendJSON(t, http.MethodPost, ts.server.URL+"/api/projects/staff", map[string]any{
		"Projects": []int64{},
	})
	if status != http.StatusBadRequest || body["msg"] != "No projects provided!!!" {
		t.Fatalf("expected 400 no projects, got %d %v", status, body["msg"])
	}
}

func TestStaffProjects(t *testing.T) {
	ts := setupTestServer(t)

	// По умолчанию - детализированные строки без конфиденциальных проектов
	status, body := getJSON(t, ts.server.URL+"/api/projects/staff/37704")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	rows := items(t, body, "projects")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["JobNameLong"] != "RIVERSIDE EXPANSION" {
		t.Errorf("expected detailed row, got %v", first)
	}
	if first["TotalHrs"] != float64(120) {
		t.Errorf("unexpected hours: %v", first["TotalHrs"])
	}

	// Базовая форма без атрибутов проекта
	status, body = getJSON(t, ts.server.URL+"/api/projects/staff/37704?showDetails=false")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	rows = items(t, body, "projects")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first = rows[0].(map[string]any)
	if _, ok := first["JobNameLong"]; ok {
		t.Errorf("basic row must not carry project attributes: %v", first)
	}
	if first["ProjectCode"] != float64(22398800) || first["TotalHrs"] != float64(120) {
		t.Errorf("unexpected basic row: %v", first)
	}

	// Действующий фильтр принудительно включает детализацию
	status, body = getJSON(t, ts.server.URL+"/api/projects/staff/37704?showDetails=false&ClientName=Acme")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	rows = items(t, body, "projects")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	first = rows[0].(map[string]any)
	if first["JobNameLong"] != "RIVERSIDE EXPANSION" {
		t.Errorf("filter must escalate to detailed rows: %v", first)
	}

	status, body = getJSON(t, ts.server.URL+"/api/projects/staff/99999")
	if status != http.StatusNotFound || body["msg"] != "StaffID not found" {
		t.Fatalf("expected 404, got %d %v", status, body["msg"])
	}
}

func TestStaffKeywordsGrouped(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/keywords/groups/37704")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	grouped := object(t, body, "keywords")
	g1 := object(t, grouped, "G1")
	if g1["KeywordGroupName"] != "Disciplines" {
		t.Errorf("unexpected group name: %v", g1["KeywordGroupName"])
	}
	codes, _ := g1["KeywordCodes"].([]any)
	if len(codes) != 2 || codes[0] != "K100" || codes[1] != "K300" {
		t.Errorf("unexpected G1 codes: %v", codes)
	}
	g2 := object(t, grouped, "G2")
	names, _ := g2["Keywords"].([]any)
	if len(names) != 1 || names[0] != "Rail" {
		t.Errorf("unexpected G2 keywords: %v", names)
	}

	// Несуществующий сотрудник и нечисловой идентификатор различаются
	status, body = getJSON(t, ts.server.URL+"/api/keywords/groups/99999")
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown staff, got %d", status)
	}
	if body["msg"] != "StaffID not found" {
		t.Errorf("unexpected message: %v", body["msg"])
	}
	status, _ = getJSON(t, ts.server.URL+"/api/keywords/groups/notanid")
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed staff id, got %d", status)
	}
}

func TestStaffKeywordCodes(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/projects/keywords/37704")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	codes := items(t, body, "keywords")
	if len(codes) != 3 || codes[0] != "K100" || codes[1] != "K200" || codes[2] != "K300" {
		t.Errorf("unexpected keyword codes: %v", codes)
	}

	// Фильтр по проектам сужает набор кодов
	status, body = getJSON(t, ts.server.URL+"/api/projects/keywords/37704?ClientName=Globex")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	codes = items(t, body, "keywords")
	if len(codes) != 1 || codes[0] != "K300" {
		t.Errorf("unexpected filtered codes: %v", codes)
	}

	status, body = getJSON(t, ts.server.URL+"/api/projects/keywords/99999")
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown staff, got %d", status)
	}
	if body["msg"] != "StaffID not found" {
		t.Errorf("unexpected message: %v", body["msg"])
	}
}

func TestProjectKeywords(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/project/keywords/22398800")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	codes := items(t, body, "keywords")
	if len(codes) != 2 || codes[0] != "K100" || codes[1] != "K200" {
		t.Errorf("unexpected keyword codes: %v", codes)
	}
}

func TestExperienceLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	base := ts.server.URL + "/api/project/staff/22398800"

	// Создание новой записи
	status, body := sendJSON(t, http.MethodPost, base+"?StaffID=59754", map[string]any{
		"TotalHrs":   10,
		"experience": "Site supervision",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	exp := object(t, body, "experience")
	if exp["TotalHrs"] != float64(10) || exp["experience"] != "Site supervision" {
		t.Errorf("unexpected created row: %v", exp)
	}

	// Повторное добавление по существующей паре работает как патч
	status, body = sendJSON(t, http.MethodPost, base+"?StaffID=59754", map[string]any{
		"TotalHrs": 15,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	exp = object(t, body, "experience")
	if exp["TotalHrs"] != float64(15) || exp["experience"] != "Site supervision" {
		t.Errorf("unexpected updated row: %v", exp)
	}

	status, body = sendJSON(t, http.MethodPatch, base+"?StaffID=59754", map[string]any{
		"experience": "Site supervision and handover",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	exp = object(t, body, "experience")
	if exp["experience"] != "Site supervision and handover" {
		t.Errorf("unexpected patched row: %v", exp)
	}
}

func TestExperienceErrors(t *testing.T) {
	ts := setupTestServer(t)

	// Порядок проверок: проект, наличие StaffID, сам сотрудник, тело
	status, body := sendJSON(t, http.MethodPost, ts.server.URL+"/api/project/staff/99999999?StaffID=37704", map[string]any{
		"TotalHrs": 1, "experience": "x",
	})
	if status != http.StatusNotFound || body["msg"] != "ProjectCode not found" {
		t.Fatalf("expected 404 project, got %d %v", status, body["msg"])
	}

	status, body = sendJSON(t, http.MethodPost, ts.server.URL+"/api/project/staff/22398800", map[string]any{
		"TotalHrs": 1, "experience": "x",
	})
	if status != http.StatusNotFound || body["msg"] != "No staff id provided!!!" {
		t.Fatalf("expected 404 no staff id, got %d %v", status, body["msg"])
	}

	status, _ = sendJSON(t, http.MethodPost, ts.server.URL+"/api/project/staff/22398800?StaffID=abc", map[string]any{
		"TotalHrs": 1, "experience": "x",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric staff id, got %d", status)
	}

	status, body = sendJSON(t, http.MethodPost, ts.server.URL+"/api/project/staff/22398800?StaffID=11111", map[string]any{
		"TotalHrs": 1, "experience": "x",
	})
	if status != http.StatusNotFound || body["msg"] != "StaffID not found" {
		t.Fatalf("expected 404 staff, got %d %v", status, body["msg"])
	}

	// Для новой записи обязательны оба атрибута
	status, body = sendJSON(t, http.MethodPost, ts.server.URL+"/api/project/staff/31220000?StaffID=56876", map[string]any{
		"TotalHrs": 5,
	})
	if status != http.StatusNotFound || body["msg"] != "Missing attributes!!!" {
		t.Fatalf("expected 404 missing attributes, got %d %v", status, body["msg"])
	}

	// Патч несуществующей пары
	status, body = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/project/staff/31220000?StaffID=56876", map[string]any{
		"TotalHrs": 5,
	})
	if status != http.StatusNotFound || body["msg"] != "No staff time booked to project - use add experience instead!!!" {
		t.Fatalf("expected 404 no time booked, got %d %v", status, body["msg"])
	}

	// Недопустимый ключ в теле
	status, _ = sendJSON(t, http.MethodPatch, ts.server.URL+"/api/project/staff/22398800?StaffID=37704", map[string]any{
		"Overtime": 5,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown attribute, got %d", status)
	}
}

func TestKeywordRoutes(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/keywords")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "keywords")); got != 3 {
		t.Errorf("expected 3 keywords, got %d", got)
	}

	status, body = getJSON(t, ts.server.URL+"/api/keywords/groups")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(items(t, body, "keywordGroups")); got != 2 {
		t.Errorf("expected 2 groups, got %d", got)
	}

	status, body = getJSON(t, ts.server.URL+"/api/keywords?KeywordGroupCode=G1")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	rows := items(t, body, "keywords")
	if len(rows) != 2 {
		t.Fatalf("expected 2 keywords in G1, got %d", len(rows))
	}
	first, _ := rows[0].(map[string]any)
	if first["KeywordCode"] != "K100" {
		t.Errorf("unexpected first G1 keyword: %v", rows[0])
	}

	status, body = getJSON(t, ts.server.URL+"/api/keywords/allgroups")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	grouped := object(t, body, "keywords")
	if len(grouped) != 2 {
		t.Errorf("expected 2 grouped entries, got %d", len(grouped))
	}
}

func TestInfo(t *testing.T) {
	ts := setupTestServer(t)

	status, body := getJSON(t, ts.server.URL+"/api/info")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	info := object(t, body, "dbInfo")
	if got := len(items(t, info, "ProjectCode")); got != 3 {
		t.Errorf("expected 3 project codes, got %d", got)
	}
	if got := len(items(t, info, "StaffID")); got != 3 {
		t.Errorf("expected 3 staff ids, got %d", got)
	}
	clients := items(t, info, "ClientName")
	if len(clients) != 2 || clients[0] != "Acme" || clients[1] != "Globex" {
		t.Errorf("unexpected clients: %v", clients)
	}
}

func TestImageUpload(t *testing.T) {
	ts := setupTestServer(t)

	upload := func(url string) (int, map[string]any) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("png-bytes"))
		mw.Close()

		req, err := http.NewRequest(http.MethodPost, url, &buf)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		return decodeResponse(t, resp)
	}

	status, body := upload(ts.server.URL + "/api/staff/meta/37704/image")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	staff := object(t, body, "staffMeta")
	if staff["imgURL"] != "/uploads/photo.png" {
		t.Errorf("unexpected staff image: %v", staff["imgURL"])
	}

	// Изображения проекта накапливаются и очищаются целиком
	status, body = upload(ts.server.URL + "/api/project/22398800/image")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	project := object(t, body, "project")
	images, _ := project["imgURL"].([]any)
	if len(images) != 1 || images[0] != "/uploads/photo.png" {
		t.Errorf("unexpected project images: %v", images)
	}

	status, body = sendJSON(t, http.MethodDelete, ts.server.URL+"/api/project/22398800/image", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	project = object(t, body, "project")
	images, _ = project["imgURL"].([]any)
	if len(images) != 0 {
		t.Errorf("expected cleared image list, got %v", images)
	}

	// Запрос без файла
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	mw.Close()
	req, _ := http.NewRequest(http.MethodPost, ts.server.URL+"/api/staff/meta/37704/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	status, body = decodeResponse(t, resp)
	if status != http.StatusBadRequest || body["msg"] != "no files provided" {
		t.Fatalf("expected 400 no files, got %d %v", status, body["msg"])
	}
}
