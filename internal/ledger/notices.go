package ledger

import (
	"errors"

	"homebudget/internal/core"
)

// Notice turns an operation error into the message shown to the user.
func Notice(err error) string {
	var ve *core.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoPriorMonth):
		return "Solo puedes duplicar facturas a partir de febrero (se usa el mes anterior dentro del año)."
	case errors.Is(err, ErrNoBillsToDuplicate):
		return "No hay facturas en el mes anterior para duplicar."
	case errors.Is(err, ErrDeclined):
		return "Operación cancelada."
	case errors.Is(err, ErrPersist):
		return "No se han podido guardar los datos. Los cambios siguen en esta sesión."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Selecciona o escribe una categoría."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Introduce un importe válido mayor que 0."
	case errors.As(err, &ve):
		return ve.Error()
	default:
		return err.Error()
	}
}
