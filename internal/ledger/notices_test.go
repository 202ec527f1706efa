package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"homebudget/internal/core"
)

func TestNotice(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no prior month", ErrNoPriorMonth, "Solo puedes duplicar facturas a partir de febrero (se usa el mes anterior dentro del año)."},
		{"no bills", ErrNoBillsToDuplicate, "No hay facturas en el mes anterior para duplicar."},
		{"declined", ErrDeclined, "Operación cancelada."},
		{"wrapped persist", fmt.Errorf("%w: %w", ErrPersist, errors.New("disk full")), "No se han podido guardar los datos. Los cambios siguen en esta sesión."},
		{"invalid amount", &core.ValidationError{Field: "amount", Message: "x", Err: core.ErrInvalidAmount}, "Introduce un importe válido mayor que 0."},
		{"other validation", &core.ValidationError{Field: "date", Message: "invalid date \"x\"", Err: core.ErrInvalidDate}, "date: invalid date \"x\""},
		{"unknown", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Notice(tt.err))
		})
	}
}
