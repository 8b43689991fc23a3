package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gympoint/class-scheduler/internal/model"
	"github.com/gympoint/class-scheduler/internal/repository"
)

// newTestHandler builds a TemplateHandler over nil database handles. The
// cases below must all be rejected by static validation before any query
// runs, so the handles are never dereferenced.
func newTestHandler() *TemplateHandler {
	return NewTemplateHandler(
		repository.NewTemplateRepo(nil),
		repository.NewInstanceRepo(nil),
		repository.NewUserRepo(nil),
		time.Sunday,
	)
}

// invoke runs a handler against a synthetic request and resolves returned
// echo.HTTPErrors the way the framework would.
func invoke(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewRequestValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateTemplateValidation(t *testing.T) {
	h := newTestHandler()

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing capacity", `{"instructor_id":1,"name":"Yoga","weekday":"Tuesday","start_time":"18:00","end_time":"19:00"}`},
		{"zero capacity", `{"instructor_id":1,"name":"Yoga","weekday":"Tuesday","start_time":"18:00","end_time":"19:00","capacity":0}`},
		{"bad weekday", `{"instructor_id":1,"name":"Yoga","weekday":"Someday","start_time":"18:00","end_time":"19:00","capacity":10}`},
		{"rest day", `{"instructor_id":1,"name":"Yoga","weekday":"Sunday","start_time":"18:00","end_time":"19:00","capacity":10}`},
		{"bad start time", `{"instructor_id":1,"name":"Yoga","weekday":"Tuesday","start_time":"25:00","end_time":"19:00","capacity":10}`},
		{"start after end", `{"instructor_id":1,"name":"Yoga","weekday":"Tuesday","start_time":"19:00","end_time":"18:00","capacity":10}`},
		{"start equals end", `{"instructor_id":1,"name":"Yoga","weekday":"Tuesday","start_time":"18:00","end_time":"18:00","capacity":10}`},
	}
	for _, tc := range cases {
		rec := invoke(t, h.Create, http.MethodPost, "/v1/templates", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (body %s)", tc.name, rec.Code, rec.Body)
		}
	}
}

func TestUpdateTemplateBadID(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	e.Validator = NewRequestValidator()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"name":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := h.Update(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func storedTemplate() *model.ClassTemplate {
	return &model.ClassTemplate{
		ID:           3,
		InstructorID: 7,
		Name:         "Yoga",
		Weekday:      time.Tuesday,
		StartTime:    "18:00:00",
		EndTime:      "19:00:00",
		Capacity:     12,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestMergeTemplateUpdateNoChanges(t *testing.T) {
	cur := storedTemplate()

	// empty patch
	if _, changed, err := mergeTemplateUpdate(cur, &updateTemplateRequest{}); err != nil || changed {
		t.Fatalf("empty patch: changed = %v, err = %v", changed, err)
	}

	// every field restated with its current value, times without seconds
	id := cur.InstructorID
	req := &updateTemplateRequest{
		InstructorID: &id,
		Name:         strPtr("Yoga"),
		Weekday:      strPtr("Tuesday"),
		StartTime:    strPtr("18:00"),
		EndTime:      strPtr("19:00"),
		Capacity:     intPtr(12),
	}
	if _, changed, err := mergeTemplateUpdate(cur, req); err != nil || changed {
		t.Fatalf("identical values: changed = %v, err = %v", changed, err)
	}
}

func TestMergeTemplateUpdateAppliesFields(t *testing.T) {
	cur := storedTemplate()
	req := &updateTemplateRequest{
		Name:      strPtr("Power Yoga"),
		Weekday:   strPtr("Wednesday"),
		StartTime: strPtr("07:30"),
		Capacity:  intPtr(8),
	}
	next, changed, err := mergeTemplateUpdate(cur, req)
	if err != nil || !changed {
		t.Fatalf("changed = %v, err = %v", changed, err)
	}
	if next.Name != "Power Yoga" || next.Weekday != time.Wednesday ||
		next.StartTime != "07:30:00" || next.Capacity != 8 {
		t.Fatalf("merged template = %+v", next)
	}
	// untouched fields carry over
	if next.EndTime != cur.EndTime || next.InstructorID != cur.InstructorID {
		t.Fatalf("untouched fields changed: %+v", next)
	}
}

func TestMergeTemplateUpdateRejections(t *testing.T) {
	cur := storedTemplate()
	cases := []struct {
		name string
		req  *updateTemplateRequest
	}{
		{"empty name", &updateTemplateRequest{Name: strPtr("")}},
		{"bad weekday", &updateTemplateRequest{Weekday: strPtr("Someday")}},
		{"bad start time", &updateTemplateRequest{StartTime: strPtr("25:00")}},
		{"bad end time", &updateTemplateRequest{EndTime: strPtr("19:99")}},
	}
	for _, tc := range cases {
		if _, _, err := mergeTemplateUpdate(cur, tc.req); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestListTemplatesBadWeekdayFilter(t *testing.T) {
	h := newTestHandler()
	rec := invoke(t, h.List, http.MethodGet, "/v1/templates?weekday=Funday", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected an error message in the body")
	}
}
