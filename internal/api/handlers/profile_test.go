package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matiasleandrokruk/bookcompanion/internal/api/ctxkeys"
	domainaudit "github.com/matiasleandrokruk/bookcompanion/internal/domain/audit"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/advisory"
	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

type stubProfiles struct {
	user    *profile.User
	err     error
	changed []string
	patch   profile.Patch
}

func (s *stubProfiles) Get(context.Context, string) (*profile.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubProfiles) Update(_ context.Context, _ string, patch profile.Patch) (*profile.User, []string, error) {
	s.patch = patch
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, s.changed, nil
}

type recordingAudit struct {
	actions []string
	changes []string
}

func (r *recordingAudit) LogWithDetails(_ context.Context, _ string, _ domainaudit.ActorType, action string,
	_ *string, _ *string, details *domainaudit.EventDetails, _ domainaudit.Outcome) error {
	r.actions = append(r.actions, action)
	if details != nil {
		r.changes = append(r.changes, details.Changes...)
	}
	return nil
}

func withUser(r *http.Request, uid string) *http.Request {
	return r.WithContext(ctxkeys.WithValue(r.Context(), ctxkeys.UserID, uid))
}

// ===== Profile =====

func TestProfileGet(t *testing.T) {
	t.Parallel()

	profiles := &stubProfiles{user: &profile.User{ID: "u1", Email: "u1@example.com"}}
	h := NewProfileHandler(profiles, nil)
	rr := httptest.NewRecorder()
	h.Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/user/profile", nil), "u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp ProfileResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.User.Email != "u1@example.com" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestProfileUpdate_AuditsChangedFields(t *testing.T) {
	t.Parallel()

	profiles := &stubProfiles{user: &profile.User{ID: "u1"}, changed: []string{"rosExperience", "learningGoals"}}
	audit := &recordingAudit{}
	h := NewProfileHandler(profiles, audit)
	rr := httptest.NewRecorder()
	h.Update(rr, withUser(jsonRequest(t, http.MethodPatch, "/api/user/profile",
		`{"rosExperience":"basic","learningGoals":["Computer Vision"]}`), "u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rr.Code, rr.Body.String())
	}
	if profiles.patch.ROSExperience == nil || *profiles.patch.ROSExperience != profile.ExperienceBasic {
		t.Errorf("patch = %+v", profiles.patch)
	}
	if diff := cmp.Diff([]string{"profile.update"}, audit.actions); diff != "" {
		t.Errorf("audit actions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"rosExperience", "learningGoals"}, audit.changes); diff != "" {
		t.Errorf("audit changes mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileUpdate_NoChangesNotAudited(t *testing.T) {
	t.Parallel()

	audit := &recordingAudit{}
	h := NewProfileHandler(&stubProfiles{user: &profile.User{ID: "u1"}}, audit)
	rr := httptest.NewRecorder()
	h.Update(rr, withUser(jsonRequest(t, http.MethodPatch, "/", `{}`), "u1"))
	if rr.Code != http.StatusOK || len(audit.actions) != 0 {
		t.Errorf("status = %d, audit = %v", rr.Code, audit.actions)
	}
}

func TestProfile_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid background", profile.ErrInvalidBackground, http.StatusBadRequest},
		{"user gone", profile.ErrUserNotFound, http.StatusNotFound},
		{"db failure", errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		h := NewProfileHandler(&stubProfiles{err: tc.err}, nil)

		rr := httptest.NewRecorder()
		h.Update(rr, withUser(jsonRequest(t, http.MethodPatch, "/", `{"name":"x"}`), "u1"))
		if rr.Code != tc.want {
			t.Errorf("%s: update status = %d, want %d", tc.name, rr.Code, tc.want)
		}

		rr = httptest.NewRecorder()
		h.Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/", nil), "u1"))
		if rr.Code != tc.want {
			t.Errorf("%s: get status = %d, want %d", tc.name, rr.Code, tc.want)
		}
	}

	rr := httptest.NewRecorder()
	NewProfileHandler(&stubProfiles{}, nil).Update(rr, withUser(jsonRequest(t, http.MethodPatch, "/", `[`), "u1"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d", rr.Code)
	}
}

// ===== Personalize =====

func TestPersonalize_ComputesBundle(t *testing.T) {
	t.Parallel()

	bg := profile.Background{
		ProgrammingExperience: profile.ProgrammingBeginner,
		HasRoboticsHardware:   profile.Bool(true),
		HardwareDescription:   "Jetson Nano",
	}
	h := NewPersonalizeHandler(&stubProfiles{user: &profile.User{ID: "u1", Background: bg}})
	rr := httptest.NewRecorder()
	h.Personalize(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/personalize?topic=Sensors&chapter=module-2", nil), "u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp PersonalizeResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	want := advisory.Advise(&bg, "Sensors")
	if diff := cmp.Diff(want, resp.Bundle); diff != "" {
		t.Errorf("bundle mismatch (-want +got):\n%s", diff)
	}
	if resp.Chapter != "module-2" || resp.Topic != "Sensors" || resp.BasedOn.ProgrammingExperience != profile.ProgrammingBeginner {
		t.Errorf("response = %+v", resp)
	}
}

func TestPersonalize_UserNotFound(t *testing.T) {
	t.Parallel()

	h := NewPersonalizeHandler(&stubProfiles{err: profile.ErrUserNotFound})
	rr := httptest.NewRecorder()
	h.Personalize(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/personalize", nil), "gone"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
