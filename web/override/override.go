// Package override serves an HTTP control panel for choosing which body is tracked.
package override

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.opencensus.io/trace"
	"go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"github.com/jenourish/bodytrack/components/posetracker"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/spatialmath"
	"github.com/jenourish/bodytrack/tracking"
)

// Controller is what the panel drives: a tracker that takes override requests and reports its
// candidate states.
type Controller interface {
	RequestTrackBody(slot int) error
	CandidateStates() []tracking.CandidateState
}

// CandidateStatus is one slot as reported by GET /candidates.
type CandidateStatus struct {
	Slot  int                     `json:"slot"`
	State tracking.CandidateState `json:"state"`
}

// JointPose is one joint as reported by GET /poses. Orientation is x, y, z, w and AxisAngle is
// the same rotation as th radians about a unit axis.
type JointPose struct {
	Parent      string           `json:"parent"`
	Position    [3]float64       `json:"position"`
	Orientation [4]float64       `json:"orientation"`
	AxisAngle   spatialmath.R4AA `json:"axis_angle"`
	Confidence  float64          `json:"confidence"`
	Time        time.Time        `json:"time"`
}

type server struct {
	controller Controller
	poses      posetracker.PoseTracker
	logger     logging.Logger
}

// NewHandler returns the panel's routes. poses may be nil, in which case GET /poses is not served.
func NewHandler(controller Controller, poses posetracker.PoseTracker, logger logging.Logger) http.Handler {
	s := &server{controller: controller, poses: poses, logger: logger}
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/"), s.index)
	mux.HandleFunc(pat.Get("/candidates"), s.candidates)
	mux.Handle(pat.Post("/candidates/:slot/track"), sameOrigin(http.HandlerFunc(s.track), logger))
	if poses != nil {
		mux.HandleFunc(pat.Get("/poses"), s.jointPoses)
	}
	// other origins may read the panel's state but not drive it
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}).Handler(mux)
}

// sameOrigin rejects requests a browser sent on behalf of a page from another origin. Requests
// without Origin or Referer headers, like those from curl, pass.
func sameOrigin(next http.Handler, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		source := r.Header.Get("Origin")
		if source == "" {
			source = r.Header.Get("Referer")
		}
		if source != "" {
			u, err := url.Parse(source)
			if err != nil || u.Host != r.Host {
				logger.Warnw("rejecting cross origin override request", "origin", source, "host", r.Host)
				http.Error(w, "cross origin requests may not change the tracked body", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) states(ctx context.Context) []CandidateStatus {
	states := s.controller.CandidateStates()
	out := make([]CandidateStatus, len(states))
	for i, state := range states {
		out[i] = CandidateStatus{Slot: i, State: state}
	}
	return out
}

func (s *server) candidates(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "override::server::candidates")
	defer span.End()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"candidates": s.states(ctx)})
}

func (s *server) track(w http.ResponseWriter, r *http.Request) {
	_, span := trace.StartSpan(r.Context(), "override::server::track")
	defer span.End()

	slot, err := strconv.Atoi(pat.Param(r, "slot"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("invalid slot %q", pat.Param(r, "slot")))
		return
	}
	if err := s.controller.RequestTrackBody(slot); err != nil {
		if errors.Is(err, tracking.ErrSlotOutOfRange) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Infow("override requested", "slot", slot, "remote", r.RemoteAddr)

	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]int{"slot": slot})
}

func (s *server) jointPoses(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "override::server::jointPoses")
	defer span.End()

	poses, err := s.poses.Poses(ctx, r.URL.Query()["body"], nil)
	if err != nil {
		if errors.Is(err, posetracker.ErrNoBody) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	out := make(map[string]JointPose, len(poses))
	for name, p := range poses {
		pt := p.Pose.Point()
		q := spatialmath.Quaternion(p.Pose.Orientation().Quaternion())
		x, y, z, w := q.XYZW()
		out[name] = JointPose{
			Parent:      p.Parent,
			Position:    [3]float64{pt.X, pt.Y, pt.Z},
			Orientation: [4]float64{x, y, z, w},
			AxisAngle:   *q.AxisAngles(),
			Confidence:  p.Confidence,
			Time:        p.Time,
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Body tracking</title><meta http-equiv="refresh" content="1"></head>
<body>
<h1>Bodies</h1>
<table>
<tr><th>Slot</th><th>State</th><th></th></tr>
{{range .}}<tr>
<td>{{.Slot}}</td><td>{{.State}}</td>
<td>{{if ne .State.String "cannot_be_tracked"}}<form method="post" action="/candidates/{{.Slot}}/track"><button>Track</button></form>{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "override::server::index")
	defer span.End()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.states(ctx)); err != nil {
		s.logger.Debugw("error rendering index", "error", err)
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debugw("error writing response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Serve runs handler on listener until ctx is done.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger logging.Logger) error {
	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler:           handler,
	}
	stopped := make(chan struct{})
	defer close(stopped)
	utils.PanicCapturingGo(func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		if err := httpServer.Shutdown(context.Background()); err != nil {
			logger.Errorw("error shutting down", "error", err)
		}
	})

	logger.Infow("serving override panel", "url", fmt.Sprintf("http://%s", listener.Addr().String()))
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
