// Package megamart adaptador HTTP de la API de MegaMart (lecturas de analítica y
// operaciones del asistente de venta). Todas las llamadas pasan por un circuit breaker;
// no hay reintentos.
package megamart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL servidor público de MegaMart.
	DefaultBaseURL = "https://api-megamart.onrender.com"
	// DefaultMaxBodyBytes tope del cuerpo de una respuesta (las colecciones completas).
	DefaultMaxBodyBytes = 32 << 20
)

// ErrBodyTooLarge la respuesta supera Config.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("respuesta demasiado grande")

// Observer recibe la duración y el resultado de cada llamada ("2xx", "4xx", "5xx", "error").
type Observer interface {
	ObserveUpstream(op, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, string, time.Duration) {}

// Config parámetros del cliente.
type Config struct {
	BaseURL string
	Timeout time.Duration // timeout de red por llamada (defecto 15s)
	// MaxBodyBytes tope del cuerpo leído; <= 0 usa DefaultMaxBodyBytes.
	MaxBodyBytes int64
	Breaker      BreakerConfig
}

// Client cliente de la API de MegaMart.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	breaker    *Breaker
	observer   Observer
	log        zerolog.Logger
	maxBody    int64
}

// Option configura el cliente.
type Option func(*Client)

// WithHTTPClient reemplaza el *http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registra métricas por llamada.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New construye el cliente. Error si la URL base no es válida.
func New(cfg Config, opts ...Option) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("megamart: URL base inválida %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: timeout},
		observer:   nopObserver{},
		log:        zerolog.Nop(),
		maxBody:    maxBody,
	}
	c.breaker = NewBreaker(cfg.Breaker, func(err error) bool {
		var e *Error
		if errors.As(err, &e) {
			return e.Retryable()
		}
		return true
	})
	for _, opt := range opts {
		opt(c)
	}
	c.breaker.OnTransition(func(from, to BreakerState) {
		c.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("megamart: cambio de estado del circuito")
	})
	return c, nil
}

// BreakerState estado actual del circuito (health check).
func (c *Client) BreakerState() BreakerState { return c.breaker.State() }

// endpoint arma la URL absoluta; los caracteres no ASCII del path salen codificados en %XX.
func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawPath = ""
	return u.String()
}

// do ejecuta la llamada a través del circuito y devuelve el cuerpo de una respuesta 2xx.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var body []byte
	err := c.breaker.Execute(func() error {
		var err error
		body, err = c.roundTrip(ctx, op, method, path, payload)
		return err
	})
	if errors.Is(err, ErrCircuitOpen) {
		c.observer.ObserveUpstream(op, "circuit_open", 0)
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("megamart: serializar %s: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.ObserveUpstream(op, "error", time.Since(start))
		if ctx.Err() != nil {
			err = fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		c.log.Debug().Err(err).Str("op", op).Msg("megamart: fallo de transporte")
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	// Un byte de más distingue un cuerpo truncado de uno que cabe justo.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	elapsed := time.Since(start)
	c.observer.ObserveUpstream(op, strconv.Itoa(resp.StatusCode/100)+"xx", elapsed)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("leer respuesta: %w", err)}
	}
	if int64(len(raw)) > c.maxBody {
		c.log.Warn().Str("op", op).Int64("limit", c.maxBody).Msg("megamart: respuesta supera el tope")
		return nil, &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("%w: más de %d bytes", ErrBodyTooLarge, c.maxBody)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("megamart: respuesta no exitosa")
		return nil, &Error{
			Kind:   KindStatus,
			Op:     op,
			Status: resp.StatusCode,
			Body:   truncate(string(raw)),
			Err:    fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}
	return raw, nil
}

// getJSON GET + decodificación JSON en out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	raw, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(op, raw, out)
}

func decode(op string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}
