// Package httpapi is the thin REST adapter spec.md §6 treats as an
// external collaborator: one handler per operation, translating HTTP
// requests into calls against the Supervisor's assembly accessors. It is
// context-only surface — the core runtime (pkg/supervisor and below)
// never imports it.
package httpapi

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/brewbot/controller/pkg/supervisor"
	"github.com/brewbot/controller/pkg/util"
	"github.com/sirupsen/logrus"
)

// routeURI matches /kettle/{key}/{temp|heat_plate|steering}[/{on|off|set}],
// the endpoint family spec.md §6 "HTTP surface" lists.
var routeURI = regexp.MustCompile(`^/kettle/([^/]+)/(temp|heat_plate|steering)(?:/(on|off|set))?$`)

// status is the {action, status, data|error} envelope spec.md §6
// mandates for every response.
type status struct {
	Action string `json:"action"`
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server is the REST adapter. It holds no state of its own: every
// request is served straight from the Supervisor's current session.
type Server struct {
	sup      *supervisor.Supervisor
	log      *logrus.Entry
	serveMux *http.ServeMux
}

// New builds a Server wired to sup.
func New(sup *supervisor.Supervisor, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		sup:      sup,
		log:      log.WithField("component", "httpapi"),
		serveMux: http.NewServeMux(),
	}
	s.serveMux.HandleFunc("/kettle/", s.handleKettle)
	return s
}

// ListenAndServe blocks, serving the REST surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("starting http api")
	return http.ListenAndServe(addr, s.serveMux)
}

func (s *Server) handleKettle(w http.ResponseWriter, r *http.Request) {
	m := routeURI.FindStringSubmatch(r.URL.Path)
	if m == nil {
		writeError(w, "unknown", "unknown route "+r.URL.Path)
		return
	}
	kettleKey, resource, sub := m[1], m[2], m[3]

	k, ok := s.sup.Kettle(kettleKey)
	if !ok {
		writeError(w, resource, "unknown assembly "+kettleKey)
		return
	}

	switch resource {
	case "temp":
		if sub == "set" {
			s.handleTempSet(w, r, k)
			return
		}
		writeSuccess(w, "temp", k.TempState())
	case "heat_plate":
		s.handleRelay(w, "heat_plate", sub, k.HeatPlateState, k.SetHeatPlate)
	case "steering":
		s.handleRelay(w, "steering", sub, k.SteeringState, k.SetSteering)
	default:
		writeError(w, resource, "unknown resource "+resource)
	}
}

// handleRelay serves both the read-state and on/off-command forms of a
// relay endpoint.
func (s *Server) handleRelay(
	w http.ResponseWriter,
	action, sub string,
	getState func() (map[string]float64, bool),
	setFn func(bool),
) {
	if sub == "" {
		state, ok := getState()
		if !ok {
			state = map[string]float64{}
		}
		writeSuccess(w, action, state)
		return
	}

	on, err := util.ParseOnOff(sub)
	if err != nil {
		writeError(w, action, err.Error())
		return
	}
	setFn(on)
	writeSuccess(w, action, map[string]string{"on": util.FormatOnOff(on)})
}

// kettleTempSetter is the subset of *assembly.Kettle handleTempSet needs,
// kept narrow so this package doesn't have to import pkg/assembly just
// for a type name.
type kettleTempSetter interface {
	SetHeatPlateSetpoint(*float64)
}

func (s *Server) handleTempSet(w http.ResponseWriter, r *http.Request, k kettleTempSetter) {
	raw := r.URL.Query().Get("r")
	target, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, "temp/set", "invalid or missing r query parameter")
		return
	}
	k.SetHeatPlateSetpoint(&target)
	writeSuccess(w, "temp/set", map[string]float64{"r": target})
}

func writeSuccess(w http.ResponseWriter, action string, data any) {
	writeJSON(w, http.StatusOK, status{Action: action, Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, action, msg string) {
	writeJSON(w, http.StatusBadRequest, status{Action: action, Status: "error", Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, body status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
