package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/config"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type odooCall struct {
	Model  string
	Method string
}

// fakeOdoo is a minimal JSON-RPC endpoint speaking the subset the client
// uses.
type fakeOdoo struct {
	t            *testing.T
	authCount    int32
	calls        []odooCall
	failSessions int32 // first N call_kw requests answer with a session error
	users        []map[string]interface{}
	partners     []map[string]interface{}
}

func (f *fakeOdoo) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params map[string]interface{} `json:"params"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

		switch r.URL.Path {
		case "/web/session/authenticate":
			atomic.AddInt32(&f.authCount, 1)
			http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "sess-abc"})
			json.NewEncoder(w).Encode(map[string]interface{}{"result": map[string]interface{}{"uid": 1}})

		case "/web/dataset/call_kw":
			if atomic.LoadInt32(&f.failSessions) > 0 {
				atomic.AddInt32(&f.failSessions, -1)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]interface{}{"message": "Odoo Session Expired"},
				})
				return
			}

			model, _ := req.Params["model"].(string)
			method, _ := req.Params["method"].(string)
			f.calls = append(f.calls, odooCall{Model: model, Method: method})

			var result interface{}
			switch {
			case model == "res.users" && method == "search_read":
				result = f.users
			case model == "res.partner" && method == "search_read":
				result = f.partners
			case model == "res.partner" && method == "write":
				result = true
			case model == "slide.channel" && method == "search_read":
				result = []map[string]interface{}{
					{"id": 55, "name": "Excel Avanzado", "academic_hours": 24, "course_type": "online_ind"},
				}
			case model == "issued.certificates" && method == "create":
				result = 900
			case model == "issued.certificates" && method == "validate",
				model == "issued.certificates" && method == "action_generate_certificate":
				result = true
			case model == "issued.certificates" && method == "search_read":
				result = []map[string]interface{}{
					{"id": 900, "state": "valid", "code": "WE-900", "pdf_certificate_file": "/web/content/900"},
				}
			default:
				f.t.Fatalf("unexpected odoo call %s.%s", model, method)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"result": result})

		default:
			f.t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}
}

func newTestOdoo(t *testing.T, fake *fakeOdoo) (*OdooService, *httptest.Server) {
	fake.t = t
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	svc := NewOdooService(&config.OdooConfig{
		URL:            server.URL,
		DB:             "test",
		Login:          "svc@test",
		Password:       "secret",
		SessionTTL:     time.Hour,
		RequestTimeout: 5 * time.Second,
	})
	return svc, server
}

func registeredStudent() *fakeOdoo {
	return &fakeOdoo{
		users: []map[string]interface{}{
			{"id": 7, "name": "Ana Torres", "login": "ana@test.pe", "partner_id": []interface{}{42, "Ana Torres"}},
		},
		partners: []map[string]interface{}{
			{"id": 42, "name": "Ana Torres", "names": "Ana", "surnames": "Torres", "email": "ana@test.pe"},
		},
	}
}

func TestValidateStudent(t *testing.T) {
	fake := registeredStudent()
	svc, _ := newTestOdoo(t, fake)

	student, err := svc.ValidateStudent(context.Background(), "Ana@Test.pe ")
	require.NoError(t, err)

	assert.Equal(t, int64(7), student.UserID)
	assert.Equal(t, int64(42), student.PartnerID)
	assert.Equal(t, "Ana", student.Names)
	assert.Equal(t, "Torres", student.Surnames)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.authCount))
}

func TestValidateStudentNotRegistered(t *testing.T) {
	svc, _ := newTestOdoo(t, &fakeOdoo{})

	_, err := svc.ValidateStudent(context.Background(), "nadie@test.pe")
	assert.ErrorIs(t, err, util.ErrStudentNotRegistered)
}

func TestSessionIsReused(t *testing.T) {
	fake := registeredStudent()
	svc, _ := newTestOdoo(t, fake)

	_, err := svc.ValidateStudent(context.Background(), "ana@test.pe")
	require.NoError(t, err)
	_, err = svc.ValidateStudent(context.Background(), "ana@test.pe")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.authCount), "second call must reuse the session")
}

func TestSessionErrorTriggersSingleReauth(t *testing.T) {
	fake := registeredStudent()
	fake.failSessions = 1
	svc, _ := newTestOdoo(t, fake)

	student, err := svc.ValidateStudent(context.Background(), "ana@test.pe")
	require.NoError(t, err)
	assert.Equal(t, int64(42), student.PartnerID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.authCount), "one re-auth after the session error")
}

func TestPersistentSessionErrorGivesUp(t *testing.T) {
	fake := registeredStudent()
	fake.failSessions = 10
	svc, _ := newTestOdoo(t, fake)

	_, err := svc.ValidateStudent(context.Background(), "ana@test.pe")
	assert.ErrorIs(t, err, util.ErrOdooUnavailable)
}

func TestCertifyStudent(t *testing.T) {
	fake := registeredStudent()
	svc, server := newTestOdoo(t, fake)

	// A short deadline skips the PDF settling wait and falls back to the
	// direct download url.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cert, err := svc.CertifyStudent(ctx, OdooStudent{
		PartnerID: 42,
		Email:     "ana@test.pe",
		Names:     "Ana",
		Surnames:  "Torres",
	}, "Excel Avanzado", 85, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(900), cert.ID)
	assert.Contains(t, cert.PDFURL, server.URL)
	assert.Contains(t, cert.PDFURL, "issued.certificates/900")

	var methods []string
	for _, call := range fake.calls {
		if call.Model == "issued.certificates" || call.Model == "slide.channel" || (call.Model == "res.partner" && call.Method == "write") {
			methods = append(methods, call.Model+"."+call.Method)
		}
	}
	assert.Equal(t, []string{
		"slide.channel.search_read",
		"res.partner.write",
		"issued.certificates.create",
		"issued.certificates.validate",
		"issued.certificates.action_generate_certificate",
	}, methods)
}
