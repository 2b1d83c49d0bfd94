package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/config"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"

	"go.uber.org/zap"
)

// OdooStudent is the intranet identity a certificate gets issued against.
type OdooStudent struct {
	UserID    int64  `json:"user_id"`
	PartnerID int64  `json:"partner_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Names     string `json:"names"`
	Surnames  string `json:"surnames"`
}

type IssuedCertificate struct {
	ID     int64  `json:"certificate_id"`
	PDFURL string `json:"pdf_url"`
	Code   string `json:"code,omitempty"`
}

type odooSession struct {
	id        string
	expiresAt time.Time
}

func (s odooSession) valid() bool {
	return s.id != "" && time.Now().Before(s.expiresAt)
}

// OdooService speaks Odoo's JSON-RPC over HTTP. The session cookie lives in
// an explicit holder with an expiry; on a detected session error the client
// re-authenticates once and retries the call, instead of recursing.
type OdooService struct {
	cfg    *config.OdooConfig
	client *http.Client

	mu      sync.Mutex
	session odooSession
}

func NewOdooService(cfg *config.OdooConfig) *OdooService {
	return &OdooService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

var sessionCookieRe = regexp.MustCompile(`session_id=([^;]+)`)

type rpcRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

type rpcError struct {
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

type rpcResponse struct {
	Error  *rpcError       `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (s *OdooService) post(ctx context.Context, path string, params map[string]interface{}, sessionID string) (*rpcResponse, *http.Response, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: "call", Params: params})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("Cookie", "session_id="+sessionID)
	}

	httpResp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer httpResp.Body.Close()

	var parsed rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&parsed); err != nil {
		return nil, nil, err
	}
	return &parsed, httpResp, nil
}

func (s *OdooService) authenticate(ctx context.Context) (odooSession, error) {
	parsed, httpResp, err := s.post(ctx, "/web/session/authenticate", map[string]interface{}{
		"db":       s.cfg.DB,
		"login":    s.cfg.Login,
		"password": s.cfg.Password,
	}, "")
	if err != nil {
		return odooSession{}, err
	}
	if parsed.Error != nil {
		return odooSession{}, fmt.Errorf("odoo auth: %s", parsed.Error.Message)
	}

	cookies := httpResp.Header.Get("Set-Cookie")
	match := sessionCookieRe.FindStringSubmatch(cookies)
	if match == nil {
		return odooSession{}, fmt.Errorf("odoo auth: no session cookie in response")
	}

	return odooSession{id: match[1], expiresAt: time.Now().Add(s.cfg.SessionTTL)}, nil
}

func (s *OdooService) currentSession(ctx context.Context) (odooSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.valid() {
		return s.session, nil
	}

	session, err := s.authenticate(ctx)
	if err != nil {
		return odooSession{}, err
	}
	s.session = session
	return session, nil
}

func (s *OdooService) invalidateSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.id == id {
		s.session = odooSession{}
	}
}

func isSessionError(e *rpcError) bool {
	return strings.Contains(strings.ToLower(e.Message), "session")
}

// call invokes model.method through /web/dataset/call_kw. A session error
// invalidates the holder and retries exactly once with a fresh session.
func (s *OdooService) call(ctx context.Context, odooModel, method string, args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	for attempt := 0; attempt < 2; attempt++ {
		session, err := s.currentSession(ctx)
		if err != nil {
			return nil, err
		}

		parsed, _, err := s.post(ctx, "/web/dataset/call_kw", map[string]interface{}{
			"model":  odooModel,
			"method": method,
			"args":   args,
			"kwargs": kwargs,
		}, session.id)
		if err != nil {
			return nil, err
		}

		if parsed.Error != nil {
			if isSessionError(parsed.Error) {
				s.invalidateSession(session.id)
				if attempt == 0 {
					continue
				}
				// A fresh session was rejected too; the backend is not
				// usable right now.
				return nil, util.ErrOdooUnavailable
			}
			msg := parsed.Error.Data.Message
			if msg == "" {
				msg = parsed.Error.Message
			}
			return nil, fmt.Errorf("odoo %s.%s: %s", odooModel, method, msg)
		}

		return parsed.Result, nil
	}

	return nil, util.ErrOdooUnavailable
}

type odooUserRow struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Login     string        `json:"login"`
	PartnerID []interface{} `json:"partner_id"` // odoo renders m2o as [id, display]
}

type odooPartnerRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Names    string `json:"names"`
	Surnames string `json:"surnames"`
	Email    string `json:"email"`
}

// ValidateStudent resolves a respondent email to their intranet identity.
func (s *OdooService) ValidateStudent(ctx context.Context, email string) (*OdooStudent, error) {
	result, err := s.call(ctx, "res.users", "search_read", nil, map[string]interface{}{
		"domain": [][]interface{}{{"login", "=", strings.ToLower(strings.TrimSpace(email))}},
		"fields": []string{"id", "name", "login", "partner_id"},
		"limit":  1,
	})
	if err != nil {
		return nil, err
	}

	var users []odooUserRow
	if err := json.Unmarshal(result, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, util.ErrStudentNotRegistered
	}

	user := users[0]
	partnerID, ok := util.OptionID(user.PartnerID)
	if !ok {
		return nil, fmt.Errorf("odoo: user %d has no partner", user.ID)
	}

	result, err = s.call(ctx, "res.partner", "search_read", nil, map[string]interface{}{
		"domain": [][]interface{}{{"id", "=", partnerID}},
		"fields": []string{"id", "name", "names", "surnames", "email"},
		"limit":  1,
	})
	if err != nil {
		return nil, err
	}

	var partners []odooPartnerRow
	if err := json.Unmarshal(result, &partners); err != nil {
		return nil, err
	}
	if len(partners) == 0 {
		return nil, fmt.Errorf("odoo: partner %d not found", partnerID)
	}

	partner := partners[0]
	names := partner.Names
	if names == "" {
		if parts := strings.Fields(partner.Name); len(parts) > 0 {
			names = parts[0]
		}
	}

	return &OdooStudent{
		UserID:    user.ID,
		PartnerID: partner.ID,
		Email:     user.Login,
		FullName:  partner.Name,
		Names:     names,
		Surnames:  partner.Surnames,
	}, nil
}

type odooCourseRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AcademicHours int    `json:"academic_hours"`
	CourseType    string `json:"course_type"`
}

func (s *OdooService) getCourseInfo(ctx context.Context, courseName string) (*odooCourseRow, error) {
	result, err := s.call(ctx, "slide.channel", "search_read", nil, map[string]interface{}{
		"domain": [][]interface{}{{"name", "ilike", courseName}},
		"fields": []string{"id", "name", "academic_hours", "course_type"},
		"limit":  1,
	})
	if err != nil {
		return nil, err
	}

	var courses []odooCourseRow
	if err := json.Unmarshal(result, &courses); err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("odoo: course %q not found", courseName)
	}
	return &courses[0], nil
}

func (s *OdooService) activateStudent(ctx context.Context, partnerID int64, names string) error {
	_, err := s.call(ctx, "res.partner", "write", []interface{}{
		[]int64{partnerID},
		map[string]interface{}{"verified_data": true, "names": names},
	}, nil)
	return err
}

type certificateRow struct {
	ID                 int64       `json:"id"`
	State              string      `json:"state"`
	Code               string      `json:"code"`
	PDFCertificateFile interface{} `json:"pdf_certificate_file"`
}

func (s *OdooService) getCertificateData(ctx context.Context, certificateID int64) (*IssuedCertificate, error) {
	result, err := s.call(ctx, "issued.certificates", "search_read", nil, map[string]interface{}{
		"domain": [][]interface{}{{"id", "=", certificateID}},
		"fields": []string{},
	})
	if err != nil {
		return nil, err
	}

	var certs []certificateRow
	if err := json.Unmarshal(result, &certs); err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, util.ErrCertificateNotFound
	}

	cert := certs[0]
	pdfURL := ""
	if file, ok := cert.PDFCertificateFile.(string); ok && file != "" && file != "false" {
		if strings.HasPrefix(file, "http") {
			pdfURL = file
		} else {
			pdfURL = s.cfg.URL + file
		}
	}
	if pdfURL == "" {
		pdfURL = s.downloadURL(cert.ID)
	}

	return &IssuedCertificate{ID: cert.ID, PDFURL: pdfURL, Code: cert.Code}, nil
}

func (s *OdooService) downloadURL(certificateID int64) string {
	return fmt.Sprintf("%s/web/content/issued.certificates/%d/pdf_certificate_file?download=true", s.cfg.URL, certificateID)
}

// CertifyStudent runs the full issuance flow against Odoo: resolve the
// course, activate the student, create and validate the certificate record,
// trigger PDF generation, then fetch back the document location. Activation
// and validation failures are logged and skipped; Odoo still issues.
func (s *OdooService) CertifyStudent(ctx context.Context, student OdooStudent, courseName string, finalScore float64, completedAt time.Time) (*IssuedCertificate, error) {
	course, err := s.getCourseInfo(ctx, courseName)
	if err != nil {
		return nil, err
	}

	if err := s.activateStudent(ctx, student.PartnerID, student.Names); err != nil {
		logger.Log.Warn("odoo: student activation failed, continuing",
			zap.Int64("partnerId", student.PartnerID), zap.Error(err))
	}

	academicHours := course.AcademicHours
	if academicHours == 0 {
		academicHours = 24
	}
	courseType := course.CourseType
	if courseType == "" {
		courseType = "online_ind"
	}

	certData := map[string]interface{}{
		"slide_channel_id":       course.ID,
		"course_type":            courseType,
		"slide_channel_name":     course.Name,
		"academic_hours":         academicHours,
		"date_issue":             time.Now().Format("2006-01-02"),
		"course_completion_date": completedAt.Format("2006-01-02"),
		"final_score":            roundHalfUp(finalScore),
		"partner_id":             student.PartnerID,
		"student_names":          strings.ToUpper(student.Names),
		"student_surnames":       strings.ToUpper(student.Surnames),
	}

	result, err := s.call(ctx, "issued.certificates", "create", []interface{}{certData}, nil)
	if err != nil {
		return nil, err
	}

	var certificateID int64
	if err := json.Unmarshal(result, &certificateID); err != nil {
		return nil, fmt.Errorf("odoo: unexpected create result: %w", err)
	}

	if _, err := s.call(ctx, "issued.certificates", "validate", []interface{}{[]int64{certificateID}}, nil); err != nil {
		logger.Log.Warn("odoo: certificate validation failed, continuing",
			zap.Int64("certificateId", certificateID), zap.Error(err))
	}

	if _, err := s.call(ctx, "issued.certificates", "action_generate_certificate", []interface{}{[]int64{certificateID}}, nil); err != nil {
		logger.Log.Warn("odoo: pdf generation failed, continuing",
			zap.Int64("certificateId", certificateID), zap.Error(err))
	}

	// Odoo renders the PDF asynchronously; give it a moment before reading
	// the document location back.
	select {
	case <-time.After(4 * time.Second):
	case <-ctx.Done():
		return &IssuedCertificate{ID: certificateID, PDFURL: s.downloadURL(certificateID)}, nil
	}

	cert, err := s.getCertificateData(ctx, certificateID)
	if err != nil {
		logger.Log.Warn("odoo: could not fetch certificate data, using direct url",
			zap.Int64("certificateId", certificateID), zap.Error(err))
		return &IssuedCertificate{ID: certificateID, PDFURL: s.downloadURL(certificateID)}, nil
	}

	return cert, nil
}
