package megamart

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind clasifica los fallos de una llamada a la API de MegaMart.
type Kind int

const (
	// KindTransport: fallo de red, timeout, cancelación o circuito abierto.
	KindTransport Kind = iota + 1
	// KindStatus: respuesta con código distinto de 2xx.
	KindStatus
	// KindDecode: cuerpo no JSON donde se esperaba JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// maxErrorBody caracteres del cuerpo que se conservan en un error de estado.
const maxErrorBody = 200

// Error fallo de una operación contra la API. El mensaje es legible para el cajero.
type Error struct {
	Kind   Kind
	Op     string // ej: "ventas.agregar-producto"
	Status int    // solo KindStatus
	Body   string // solo KindStatus, truncado
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		msg := fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
		if e.Body != "" {
			msg += " - " + e.Body
		}
		return msg
	case KindDecode:
		return fmt.Sprintf("respuesta inválida del servidor (%s): %v", e.Op, e.Err)
	default:
		if errors.Is(e.Err, ErrCircuitOpen) {
			return "servicio de MegaMart no disponible temporalmente"
		}
		return fmt.Sprintf("no se pudo conectar con el servidor (%s): %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable indica si el fallo es del lado del servidor o de la red (cuenta para el circuito).
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport || (e.Kind == KindStatus && e.Status >= 500)
}

// KindOf devuelve el tipo de fallo de err o 0 si no es un *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusOf devuelve el código HTTP de un fallo KindStatus o 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindStatus {
		return e.Status
	}
	return 0
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxErrorBody {
		return string(r[:maxErrorBody]) + "…"
	}
	return s
}
