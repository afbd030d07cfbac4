package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jsphweid/noterelay/constants"
	"github.com/jsphweid/noterelay/logging"
	"github.com/jsphweid/noterelay/model"
	"github.com/jsphweid/noterelay/protocol"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

type Options struct {
	StaticDir      string
	AllowedOrigins []string
}

type Server struct {
	h        *protocol.Handshake
	opts     Options
	upgrader websocket.Upgrader
}

func New(h *protocol.Handshake, opts Options) *Server {
	s := &Server{h: h, opts: opts}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// non browser clients send no Origin at all
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	return s.originAllowed(origin)
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/midi_ready", s.HandleMidiReady).Methods("POST")
	router.HandleFunc("/python_port", s.HandlePythonPort).Methods("POST")
	router.HandleFunc("/ws", s.HandleWebsocket).Methods("GET")
	if s.opts.StaticDir != "" {
		router.PathPrefix("/").Handler(hideDotFiles(http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	return router
}

// hideDotFiles answers 404 for any path with a segment starting with a dot.
// The static dir defaults to the working directory, which also holds .env.
func hideDotFiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, seg := range strings.Split(r.URL.Path, "/") {
			if strings.HasPrefix(seg, ".") {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler is the router with CORS applied.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"X-Requested-With", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

func (s *Server) HandleMidiReady(w http.ResponseWriter, r *http.Request) {
	s.h.ContentReady()
	io.WriteString(w, constants.AckMidiReady)
}

func parsePort(r *http.Request) (int, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return 0, errors.Wrap(err, "could not read body")
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return 0, errors.Wrap(err, "could not parse form")
		}
		port, err := strconv.Atoi(strings.TrimSpace(values.Get("new_port")))
		if err != nil {
			return 0, errors.Wrap(err, "invalid new_port")
		}
		return port, nil
	}

	var input model.PortUpdateBody
	if err := json.Unmarshal(body, &input); err != nil {
		return 0, errors.Wrap(err, "could not unmarshal request body")
	}
	if input.NewPort == nil {
		return 0, errors.New("new_port is missing")
	}
	return int(*input.NewPort), nil
}

// HandlePythonPort always acknowledges, a bad body only gets logged.
func (s *Server) HandlePythonPort(w http.ResponseWriter, r *http.Request) {
	port, err := parsePort(r)
	switch {
	case err != nil:
		logging.WithError(err).Warn("ignoring port update")
	case port <= 0 || port > 65535:
		logging.WithField("port", port).Warn("ignoring out of range port update")
	default:
		s.h.PortChanged(port)
	}
	io.WriteString(w, constants.AckNewPort)
}

func (s *Server) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := newConn(ws)
	defer ws.Close()

	s.h.Connect(c)
	s.readLoop(c)
}

// readLoop handles frames one by one so a connection's events keep their order.
func (s *Server) readLoop(c *conn) {
	log := logging.WithField("client_id", c.ID())
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("client connection lost")
			} else {
				log.Info("client disconnected")
			}
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.WithError(err).Warn("malformed client frame")
			continue
		}
		if err := s.h.Dispatch(context.Background(), c, env); err != nil {
			log.WithError(err).WithField("event", env.Event).Warn("could not handle client event")
		}
	}
}
