// Package server exposes the WhatsApp webhook: the verification handshake,
// inbound message delivery and a health probe.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"freightquote/internal/chat"
	"freightquote/internal/whatsapp"
)

const maxBody = 1 << 20

// Handler runs the conversation for one inbound message.
type Handler interface {
	Handle(ctx context.Context, userID string, in chat.Input) ([]chat.Reply, error)
}

// Messenger sends replies back to the user.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendButtons(ctx context.Context, to, body string, buttons []whatsapp.Button) error
	SendImage(ctx context.Context, to, link, caption string) error
}

// Config holds the webhook secrets.
type Config struct {
	// VerifyToken must match hub.verify_token on the subscription handshake.
	VerifyToken string
	// AppSecret enables X-Hub-Signature-256 checks when set.
	AppSecret string
	// ProcessTimeout bounds handling and replying to one message.
	ProcessTimeout time.Duration
}

type Server struct {
	chat Handler
	out  Messenger
	log  zerolog.Logger
	cfg  Config
	wg   sync.WaitGroup
}

func New(h Handler, out Messenger, log zerolog.Logger, cfg Config) *Server {
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = 30 * time.Second
	}
	return &Server{chat: h, out: out, log: log, cfg: cfg}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", status).
			Dur("duration", d).
			Msg("request")
	}))
	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/webhook", s.handleVerify)
	r.Post("/webhook", s.handleWebhook)
	return r
}

// Wait blocks until every accepted message has been processed.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleVerify answers the subscription handshake by echoing hub.challenge.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || s.cfg.VerifyToken == "" || q.Get("hub.verify_token") != s.cfg.VerifyToken {
		writeErrorJSON(w, http.StatusForbidden, "verification_failed", "verification failed")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(q.Get("hub.challenge")))
}

// handleWebhook always acknowledges with 200; the message is processed in
// the background and failures are only logged.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer ack(w)
	log := hlog.FromRequest(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		log.Warn().Err(err).Msg("read webhook body")
		return
	}
	if s.cfg.AppSecret != "" && !whatsapp.VerifySignature(s.cfg.AppSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		log.Warn().Msg("webhook signature mismatch, dropped")
		return
	}
	msg, err := whatsapp.ParseWebhook(body)
	if errors.Is(err, whatsapp.ErrNoMessage) {
		log.Debug().Msg("webhook without message")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("invalid webhook payload")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.process(msg)
	}()
}

func (s *Server) process(msg *whatsapp.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProcessTimeout)
	defer cancel()
	log := s.log.With().Str("user", msg.From).Str("message_id", msg.ID).Logger()

	replies, err := s.chat.Handle(ctx, msg.From, chat.InputFrom(msg))
	if err != nil {
		log.Error().Err(err).Msg("handle message")
	}
	for _, rep := range replies {
		if err := s.send(ctx, msg.From, rep); err != nil {
			log.Error().Err(err).Msg("send reply")
		}
	}
}

func (s *Server) send(ctx context.Context, to string, rep chat.Reply) error {
	switch rep.Kind {
	case chat.ReplyButtons:
		return s.out.SendButtons(ctx, to, rep.Text, rep.Buttons)
	case chat.ReplyImage:
		return s.out.SendImage(ctx, to, rep.ImageURL, rep.Text)
	default:
		return s.out.SendText(ctx, to, rep.Text)
	}
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "received"})
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
			r.Header.Set("X-Request-ID", rid)
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}
