package pos

// Step paso del asistente de venta. El flujo es lineal: Start → ItemEntry → Payment → Receipt.
type Step int

const (
	StepStart     Step = iota + 1 // 1: iniciar transacción (cliente + sucursal)
	StepItemEntry                 // 2: agregar productos y promociones
	StepPayment                   // 3: procesar pago
	StepReceipt                   // 4: venta completada
)

// String etiqueta del paso tal como la muestra el indicador de pasos.
func (s Step) String() string {
	switch s {
	case StepStart:
		return "Iniciar"
	case StepItemEntry:
		return "Productos"
	case StepPayment:
		return "Pago"
	case StepReceipt:
		return "Completado"
	default:
		return "Desconocido"
	}
}

// Progress porcentaje de avance de la barra de pasos (0, 33.33, 66.66, 99.99).
func (s Step) Progress() float64 {
	if s < StepStart || s > StepReceipt {
		return 0
	}
	return float64(s-1) * 33.33
}
