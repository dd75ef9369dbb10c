package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	werrors "git.home.luguber.info/inful/webfonts/internal/errors"
	"git.home.luguber.info/inful/webfonts/internal/logfields"
	"git.home.luguber.info/inful/webfonts/internal/webfonts"
)

// Message headers set on every published face.
const (
	HeaderRunID = "Webfonts-Run-Id"
	HeaderIndex = "Webfonts-Index"
	HeaderCount = "Webfonts-Count"
)

// publisher is the part of *nats.Conn the registrar uses.
type publisher interface {
	PublishMsg(m *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSRegistrar publishes one message per face to <subject>.<provider>.
type NATSRegistrar struct {
	conn    publisher
	subject string
	timeout time.Duration
}

// NewNATSRegistrar connects to the NATS server at url.
func NewNATSRegistrar(url, subject string, timeout time.Duration) (*NATSRegistrar, error) {
	conn, err := nats.Connect(url, nats.Name("webfonts"), nats.Timeout(timeout))
	if err != nil {
		return nil, werrors.SinkUnavailable("nats", err).WithContext("url", url)
	}
	slog.Info("NATS registrar connected", logfields.URL(url), logfields.Subject(subject))
	return newNATSRegistrar(conn, subject, timeout), nil
}

func newNATSRegistrar(conn publisher, subject string, timeout time.Duration) *NATSRegistrar {
	return &NATSRegistrar{conn: conn, subject: subject, timeout: timeout}
}

func (r *NATSRegistrar) Name() string { return "nats" }

// Register publishes faces in order and waits for the server to acknowledge
// the flush.
func (r *NATSRegistrar) Register(ctx context.Context, runID string, faces []webfonts.FontFace) (Result, error) {
	var res Result
	for i, face := range faces {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := json.Marshal(face)
		if err != nil {
			return res, fmt.Errorf("marshal font face: %w", err)
		}
		msg := nats.NewMsg(r.SubjectFor(face))
		msg.Data = data
		msg.Header.Set(HeaderRunID, runID)
		msg.Header.Set(HeaderIndex, strconv.Itoa(i))
		msg.Header.Set(HeaderCount, strconv.Itoa(len(faces)))
		if err := r.conn.PublishMsg(msg); err != nil {
			return res, werrors.RegistrationFailed(r.Name(), err).WithContext("subject", msg.Subject)
		}
		res.Accepted++
	}
	if err := r.conn.FlushTimeout(r.timeout); err != nil {
		return res, werrors.SinkUnavailable(r.Name(), err)
	}
	return res, nil
}

// SubjectFor returns the subject a face is published on.
func (r *NATSRegistrar) SubjectFor(face webfonts.FontFace) string {
	return r.subject + "." + subjectToken(face.StringValue("provider"))
}

// subjectToken makes s safe to use as a single NATS subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}

func (r *NATSRegistrar) Close() error {
	r.conn.Close()
	return nil
}
