package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/pch/internal/monitor"
)

// SessionCookie names the cookie that ties a browser to its last report.
const SessionCookie = "pch_session"

// sessionTTL is how long an idle session keeps its report.
const sessionTTL = 24 * time.Hour

type session struct {
	report   *monitor.HealthReport
	lastSeen time.Time
}

// sessions maps browser session ids to their last report. Each browser
// sees only the report from its own last check.
type sessions struct {
	mu   sync.Mutex
	byID map[string]*session
	now  func() time.Time
}

func newSessions(now func() time.Time) *sessions {
	return &sessions{
		byID: make(map[string]*session),
		now:  now,
	}
}

// id returns the caller's session id, issuing a new cookie when the
// request has none or a malformed one.
func (s *sessions) id(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// lastReport returns the session's report, or nil.
func (s *sessions) lastReport(id string) *monitor.HealthReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil
	}
	sess.lastSeen = s.now()
	return sess.report
}

// setReport records report as the session's last and drops idle sessions.
func (s *sessions) setReport(id string, report *monitor.HealthReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, sess := range s.byID {
		if now.Sub(sess.lastSeen) > sessionTTL {
			delete(s.byID, k)
		}
	}
	s.byID[id] = &session{report: report, lastSeen: now}
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
